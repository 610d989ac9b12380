package services

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/benmeehan/fleet-mirror/internal/dispatcher"
	"github.com/benmeehan/fleet-mirror/internal/models"
	"github.com/benmeehan/fleet-mirror/internal/scene"
	"github.com/benmeehan/fleet-mirror/internal/state_managers"
	"github.com/benmeehan/fleet-mirror/internal/views"
	http_utils "github.com/benmeehan/fleet-mirror/pkg/httpUtils"
)

const shutdownTimeout = 5 * time.Second

type statusResponse struct {
	Label  string                  `json:"label"`
	Status models.ConnectionStatus `json:"status"`
}

type simulationRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Fleet</title>
</head>
<body>
<header><span id="status">{{.Label}}</span></header>
<aside id="sidebar">{{.Sidebar}}</aside>
<script>
document.getElementById("sidebar").addEventListener("click", function (e) {
  var item = e.target.closest("[data-vehicle-id]");
  if (item) {
    fetch("/api/vehicles/" + encodeURIComponent(item.dataset.vehicleId) + "/focus", {method: "POST"});
  }
});
setInterval(function () {
  fetch("/api/status").then(function (r) { return r.json(); }).then(function (b) {
    document.getElementById("status").textContent = b.data.label;
  });
  fetch("/api/sidebar").then(function (r) { return r.json(); }).then(function (b) {
    document.getElementById("sidebar").innerHTML = b.data.html;
  });
}, 1000);
</script>
</body>
</html>`))

// ShellService is the HTTP page shell. It keeps the last status and sidebar
// it was given and turns user actions into dispatcher events.
type ShellService struct {
	// Configuration fields
	listenAddr     string
	allowedOrigins []string

	// Dependencies
	poster   dispatcher.Poster
	scene    *scene.Scene
	store    *state_managers.VehicleStore
	toggle   *state_managers.SimulationToggle
	gatherer prometheus.Gatherer
	validate *validator.Validate
	logger   zerolog.Logger

	mu      sync.RWMutex
	status  statusResponse
	sidebar views.SidebarModel

	// Internal state management
	server  *http.Server
	wg      sync.WaitGroup
	running bool
}

var _ views.PageSink = (*ShellService)(nil)

// NewShellService creates the shell. Nothing listens until Start.
func NewShellService(listenAddr string, allowedOrigins []string, poster dispatcher.Poster, sc *scene.Scene,
	store *state_managers.VehicleStore, toggle *state_managers.SimulationToggle, gatherer prometheus.Gatherer, logger zerolog.Logger) *ShellService {
	return &ShellService{
		listenAddr:     listenAddr,
		allowedOrigins: allowedOrigins,
		poster:         poster,
		scene:          sc,
		store:          store,
		toggle:         toggle,
		gatherer:       gatherer,
		validate:       validator.New(),
		logger:         logger,
	}
}

// SetStatus implements views.PageSink.
func (s *ShellService) SetStatus(label string, status models.ConnectionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = statusResponse{Label: label, Status: status}
}

// SetSidebar implements views.PageSink.
func (s *ShellService) SetSidebar(model views.SidebarModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sidebar = model
}

// Routes builds the router.
func (s *ShellService) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.Heartbeat("/ping"))

	mux.Get("/", s.page)
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	mux.Route("/api", func(r chi.Router) {
		r.Get("/status", s.getStatus)
		r.Get("/sidebar", s.getSidebar)
		r.Get("/scene", s.getScene)
		r.Get("/vehicles", s.getVehicles)
		r.Post("/vehicles/{id}/focus", s.focusVehicle)
		r.Post("/markers/{id}/click", s.clickMarker)
		r.Get("/simulation", s.getSimulation)
		r.Post("/simulation", s.setSimulation)
		r.Post("/reset", s.reset)
	})
	return mux
}

// Start listens on the configured address.
func (s *ShellService) Start() error {
	if s.running {
		s.logger.Warn().Msg("ShellService is already running")
		return errors.New("shell service is already running")
	}

	s.server = &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.running = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Str("addr", s.listenAddr).Msg("Shell server failed")
		}
	}()

	s.logger.Info().Str("addr", s.listenAddr).Msg("ShellService started")
	return nil
}

// Stop shuts the server down gracefully.
func (s *ShellService) Stop() error {
	if !s.running {
		s.logger.Warn().Msg("ShellService is not running")
		return errors.New("shell service is not running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.wg.Wait()

	s.running = false
	s.logger.Info().Msg("ShellService stopped")
	return err
}

func (s *ShellService) page(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	data := struct {
		Label   string
		Sidebar template.HTML
	}{s.status.Label, s.sidebar.HTML}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render page")
	}
}

func (s *ShellService) getStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	status := s.status
	s.mu.RUnlock()
	_ = http_utils.Success(w, status)
}

func (s *ShellService) getSidebar(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	sidebar := s.sidebar
	s.mu.RUnlock()
	_ = http_utils.Success(w, sidebar)
}

func (s *ShellService) getScene(w http.ResponseWriter, _ *http.Request) {
	_ = http_utils.Success(w, s.scene.Snapshot())
}

func (s *ShellService) getVehicles(w http.ResponseWriter, _ *http.Request) {
	records := s.store.All()
	slices.SortFunc(records, func(a, b models.VehicleRecord) int {
		return strings.Compare(a.ID, b.ID)
	})
	_ = http_utils.Success(w, records)
}

func (s *ShellService) focusVehicle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.store.Get(id); !ok {
		_ = http_utils.Fail(w, http.StatusNotFound, "unknown vehicle")
		return
	}
	s.post(w, dispatcher.FocusRequested{VehicleID: id}, "focus requested")
}

func (s *ShellService) clickMarker(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.store.Get(id); !ok {
		_ = http_utils.Fail(w, http.StatusNotFound, "unknown vehicle")
		return
	}
	s.post(w, dispatcher.MarkerClicked{VehicleID: id}, "marker clicked")
}

func (s *ShellService) getSimulation(w http.ResponseWriter, _ *http.Request) {
	_ = http_utils.Success(w, map[string]bool{"enabled": s.toggle.Enabled()})
}

func (s *ShellService) setSimulation(w http.ResponseWriter, r *http.Request) {
	var req simulationRequest
	if err := http_utils.ReadJSON(r, &req); err != nil {
		_ = http_utils.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		_ = http_utils.Fail(w, http.StatusBadRequest, "enabled is required")
		return
	}
	s.post(w, dispatcher.SimulationToggled{Enabled: *req.Enabled}, "simulation toggle requested")
}

func (s *ShellService) reset(w http.ResponseWriter, _ *http.Request) {
	s.post(w, dispatcher.ResetRequested{}, "reset requested")
}

func (s *ShellService) post(w http.ResponseWriter, ev dispatcher.Event, message string) {
	if !s.poster.Post(ev) {
		_ = http_utils.Fail(w, http.StatusServiceUnavailable, "mirror is not running")
		return
	}
	s.logger.Debug().Str("event", dispatcher.Name(ev)).Msg("Posted user action")
	_ = http_utils.Accepted(w, message, nil)
}
