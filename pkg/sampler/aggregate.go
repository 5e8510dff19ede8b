package sampler

import (
	"time"

	"ressample/pkg/models"
	"ressample/pkg/provider"
)

// MeanCPU returns the arithmetic mean of per-CPU utilization.
// With no CPUs reported the mean is 0.
func MeanCPU(usages []float64) float64 {
	if len(usages) == 0 {
		return 0
	}

	var sum float64
	for _, u := range usages {
		sum += u
	}
	return sum / float64(len(usages))
}

// DiskUsage sums used and total bytes over the tracked volumes only.
func DiskUsage(volumes []models.Volume, tracked models.TrackedVolumes) (used, total uint64) {
	for _, v := range volumes {
		if !tracked.Contains(v.MountPoint) {
			continue
		}
		used += v.Used()
		total += v.Total
	}
	return used, total
}

// Aggregate builds a snapshot from the provider's current values. The timestamp
// is taken from clock after every figure has been computed.
func Aggregate(p provider.HostMetrics, tracked models.TrackedVolumes, clock func() time.Time) models.Snapshot {
	memTotal := p.TotalMemory()
	memAvailable := p.AvailableMemory()

	var memUsed uint64
	if memAvailable < memTotal {
		memUsed = memTotal - memAvailable
	}

	diskUsed, diskTotal := DiskUsage(p.Volumes(), tracked)

	snap := models.Snapshot{
		CPUUsed:   MeanCPU(p.CPUUsages()),
		MemUsed:   memUsed,
		MemTotal:  memTotal,
		DiskUsed:  diskUsed,
		DiskTotal: diskTotal,
	}
	snap.Timestamp = models.EpochSeconds(clock().UTC())
	return snap
}
