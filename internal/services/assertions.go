package services

import "github.com/benmeehan/fleet-mirror/internal/registry"

var (
	_ registry.Service = (*MirrorService)(nil)
	_ registry.Service = (*GeolocationService)(nil)
	_ registry.Service = (*ShellService)(nil)
	_ registry.Service = (*SummaryPublisher)(nil)
)
