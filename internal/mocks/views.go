package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/benmeehan/fleet-mirror/internal/models"
	"github.com/benmeehan/fleet-mirror/internal/views"
)

// MockPageSink is a mock implementation of the views.PageSink interface
type MockPageSink struct {
	mock.Mock
}

func (m *MockPageSink) SetStatus(label string, status models.ConnectionStatus) {
	m.Called(label, status)
}

func (m *MockPageSink) SetSidebar(model views.SidebarModel) {
	m.Called(model)
}

// MockSubstrate is a mock implementation of the views.Substrate interface
type MockSubstrate struct {
	mock.Mock
}

func (m *MockSubstrate) AddMarker(id string, style views.MarkerStyle, pos models.LatLng, popup string) {
	m.Called(id, style, pos, popup)
}

func (m *MockSubstrate) MoveMarker(id string, pos models.LatLng) {
	m.Called(id, pos)
}

func (m *MockSubstrate) SetPopup(id string, popup string) {
	m.Called(id, popup)
}

func (m *MockSubstrate) SetStyle(id string, style views.MarkerStyle) {
	m.Called(id, style)
}

func (m *MockSubstrate) RemoveMarker(id string) {
	m.Called(id)
}

func (m *MockSubstrate) SetUserMarker(pos models.LatLng, popup string) {
	m.Called(pos, popup)
}

func (m *MockSubstrate) RemoveUserMarker() {
	m.Called()
}

func (m *MockSubstrate) SetView(center models.LatLng, zoom int) {
	m.Called(center, zoom)
}

func (m *MockSubstrate) OpenPopup(id string) {
	m.Called(id)
}
