package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"ressample/pkg/log"
	"ressample/pkg/models"
)

// Gopsutil entry points, swapped in tests.
var (
	cpuPercent     = cpu.PercentWithContext
	virtualMemory  = mem.VirtualMemoryWithContext
	diskPartitions = disk.PartitionsWithContext
	diskUsage      = disk.UsageWithContext
)

// System implements HostMetrics on top of gopsutil.
type System struct {
	mu        sync.RWMutex
	cpus      []float64
	available uint64
	total     uint64
	volumes   []models.Volume
}

// NewSystem creates a provider and performs an initial refresh of every counter.
// Per-CPU percentages are measured between refreshes, so the first CPU reading
// covers the time since process start.
// The provider is always returned; the error joins the counters that could not be
// read, which stay zero (or, for volumes, empty) until a later refresh succeeds.
func NewSystem(ctx context.Context) (*System, error) {
	s := &System{}

	err := errors.Join(
		s.RefreshCPU(ctx),
		s.RefreshMemory(ctx),
		s.RefreshVolumes(ctx),
	)
	return s, err
}

// RefreshCPU samples per-CPU utilization since the previous call.
func (s *System) RefreshCPU(ctx context.Context) error {
	percents, err := cpuPercent(ctx, 0, true)
	if err != nil {
		return fmt.Errorf("refresh cpu: %w", err)
	}

	s.mu.Lock()
	s.cpus = percents
	s.mu.Unlock()
	return nil
}

// RefreshMemory reads total and available memory.
func (s *System) RefreshMemory(ctx context.Context) error {
	vm, err := virtualMemory(ctx)
	if err != nil {
		return fmt.Errorf("refresh memory: %w", err)
	}

	s.mu.Lock()
	s.total = vm.Total
	s.available = vm.Available
	s.mu.Unlock()
	return nil
}

// RefreshVolumes re-reads the mount table and the usage of every mounted volume.
// A volume whose usage cannot be read is left out of this refresh.
func (s *System) RefreshVolumes(ctx context.Context) error {
	partitions, err := diskPartitions(ctx, false)
	if err != nil {
		return fmt.Errorf("refresh volumes: %w", err)
	}

	volumes := make([]models.Volume, 0, len(partitions))
	seen := make(map[string]struct{}, len(partitions))
	for _, part := range partitions {
		if _, dup := seen[part.Mountpoint]; dup {
			continue
		}
		seen[part.Mountpoint] = struct{}{}

		usage, err := diskUsage(ctx, part.Mountpoint)
		if err != nil {
			log.Debug().Str("mount_point", part.Mountpoint).Err(err).Msg("Skipping volume without usage")
			continue
		}

		volumes = append(volumes, models.Volume{
			MountPoint: part.Mountpoint,
			Device:     part.Device,
			FSType:     part.Fstype,
			Total:      usage.Total,
			Available:  usage.Free,
		})
	}

	s.mu.Lock()
	s.volumes = volumes
	s.mu.Unlock()
	return nil
}

// CPUUsages returns a copy of the last per-CPU reading.
func (s *System) CPUUsages() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.cpus...)
}

// AvailableMemory returns available memory in bytes.
func (s *System) AvailableMemory() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.available
}

// TotalMemory returns total memory in bytes.
func (s *System) TotalMemory() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Volumes returns a copy of the last volume list.
func (s *System) Volumes() []models.Volume {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Volume(nil), s.volumes...)
}
