package views

import (
	"fmt"
	"html/template"
	"math"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/benmeehan/fleet-mirror/internal/models"
)

const observedTimeLayout = "15:04:05"

// Counts aggregates the fleet by status.
type Counts struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Busy      int `json:"busy"`
	Offline   int `json:"offline"`
}

// Entry is one formatted row of the vehicle list.
type Entry struct {
	ID          string               `json:"id"`
	Status      models.VehicleStatus `json:"status"`
	StatusLabel string               `json:"status_label"`
	Speed       string               `json:"speed"`
	Heading     string               `json:"heading"`
	ObservedAt  string               `json:"observed_at"`
	Selected    bool                 `json:"selected"`
}

// SidebarModel is the rendered sidebar.
type SidebarModel struct {
	Counts   Counts        `json:"counts"`
	Entries  []Entry       `json:"entries"`
	Selected string        `json:"selected,omitempty"`
	HTML     template.HTML `json:"html"`
}

// Sidebar derives the summary list from the store contents and routes list
// clicks to the map.
type Sidebar struct {
	labels   Labels
	focus    func(id string) bool
	logger   zerolog.Logger
	bindings map[string]func() bool
	selected string
	last     []models.VehicleRecord
}

// NewSidebar creates a sidebar whose entries call focus when clicked.
func NewSidebar(labels Labels, focus func(id string) bool, logger zerolog.Logger) *Sidebar {
	return &Sidebar{
		labels:   labels,
		focus:    focus,
		logger:   logger,
		bindings: make(map[string]func() bool),
	}
}

// Render rebuilds counts, list and bindings from records. Calling it again
// with the same records yields the same model and the same bindings.
func (s *Sidebar) Render(records []models.VehicleRecord) SidebarModel {
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b models.VehicleRecord) int {
		return strings.Compare(a.ID, b.ID)
	})
	s.last = sorted

	model := SidebarModel{
		Counts:   CountByStatus(sorted),
		Entries:  make([]Entry, 0, len(sorted)),
		Selected: s.selected,
	}

	bindings := make(map[string]func() bool, len(sorted))
	for _, r := range sorted {
		model.Entries = append(model.Entries, s.entry(r))
		id := r.ID
		bindings[id] = func() bool { return s.focus(id) }
	}
	s.bindings = bindings

	html, err := render(sidebarTemplate, model)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to render sidebar")
	}
	model.HTML = html
	return model
}

// Select highlights id and re-renders the last records.
func (s *Sidebar) Select(id string) SidebarModel {
	s.selected = id
	return s.Render(s.last)
}

// Click runs the binding of a list entry. Unknown ids are ignored.
func (s *Sidebar) Click(id string) bool {
	bind, ok := s.bindings[id]
	if !ok {
		s.logger.Debug().Str("vehicle_id", id).Msg("Click on unknown sidebar entry")
		return false
	}
	return bind()
}

// Bindings returns the number of interactive entries.
func (s *Sidebar) Bindings() int {
	return len(s.bindings)
}

// Reset clears selection, bindings and the remembered records.
func (s *Sidebar) Reset() {
	s.selected = ""
	s.last = nil
	s.bindings = make(map[string]func() bool)
}

func (s *Sidebar) entry(r models.VehicleRecord) Entry {
	return Entry{
		ID:          r.ID,
		Status:      r.Status,
		StatusLabel: s.labels.Status(r.Status),
		Speed:       FormatSpeed(r.Speed),
		Heading:     FormatHeading(r.Heading),
		ObservedAt:  r.LastObservedAt.Format(observedTimeLayout),
		Selected:    r.ID == s.selected,
	}
}

// CountByStatus returns per-status counts and the total.
func CountByStatus(records []models.VehicleRecord) Counts {
	c := Counts{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case models.StatusAvailable:
			c.Available++
		case models.StatusBusy:
			c.Busy++
		case models.StatusOffline:
			c.Offline++
		}
	}
	return c
}

// FormatSpeed renders km/h with one decimal.
func FormatSpeed(speed float64) string {
	return fmt.Sprintf("%.1f km/h", speed)
}

// FormatHeading renders the heading rounded to a whole degree.
func FormatHeading(heading float64) string {
	return fmt.Sprintf("%d°", int(math.Round(heading)))
}
