// Package provider reads CPU, memory and volume counters from the host.
package provider

import (
	"context"

	"ressample/pkg/models"
)

// HostMetrics is a refreshable view of host counters. Refresh calls update the
// cached values in place; accessors return the values of the last successful refresh.
type HostMetrics interface {
	RefreshCPU(ctx context.Context) error
	RefreshMemory(ctx context.Context) error
	RefreshVolumes(ctx context.Context) error

	// CPUUsages returns utilization per logical CPU, in percent.
	CPUUsages() []float64
	AvailableMemory() uint64
	TotalMemory() uint64
	Volumes() []models.Volume
}
