package models

import "time"

// Snapshot is one timestamped resource usage observation.
type Snapshot struct {
	CPUUsed   float64 `json:"cpu_used"`   // Mean utilization across logical CPUs, percent
	MemUsed   uint64  `json:"mem_used"`   // Bytes
	MemTotal  uint64  `json:"mem_total"`  // Bytes
	DiskUsed  uint64  `json:"disk_used"`  // Bytes, tracked volumes only
	DiskTotal uint64  `json:"disk_total"` // Bytes, tracked volumes only
	Timestamp float64 `json:"timestamp"`  // Seconds since the unix epoch, UTC
}

// Time converts the fractional timestamp back into a time.Time.
func (s Snapshot) Time() time.Time {
	sec := int64(s.Timestamp)
	nsec := int64((s.Timestamp - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}

// EpochSeconds returns t as fractional seconds since the unix epoch.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
