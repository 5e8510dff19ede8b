package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ressample/pkg/models"
	"ressample/pkg/resolver"
	"ressample/pkg/sampler"
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string        `json:"status"`
	Version string        `json:"version"`
	Stats   sampler.Stats `json:"stats"`
}

// WarningInfo is one untracked path.
type WarningInfo struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// VolumesResponse is returned by GET /volumes.
type VolumesResponse struct {
	Tracked  []string         `json:"tracked"`
	Matches  []resolver.Match `json:"matches"`
	Warnings []WarningInfo    `json:"warnings"`
}

// getHealth handles the GET /health endpoint.
func (s *StatusServer) getHealth(ctx echo.Context) error {
	resp := HealthResponse{
		Status:  "ok",
		Version: s.version,
	}
	if s.stats != nil {
		resp.Stats = s.stats.Stats()
	}
	return ctx.JSON(http.StatusOK, resp)
}

// getSnapshot handles the GET /snapshot endpoint.
func (s *StatusServer) getSnapshot(ctx echo.Context) error {
	var (
		snap models.Snapshot
		ok   bool
	)
	if s.latest != nil {
		snap, ok = s.latest.Get()
	}

	if !ok {
		return ctx.JSON(http.StatusNotFound, map[string]string{
			"error": "No snapshot recorded yet",
		})
	}
	return ctx.JSON(http.StatusOK, snap)
}

// getVolumes handles the GET /volumes endpoint.
func (s *StatusServer) getVolumes(ctx echo.Context) error {
	resp := VolumesResponse{
		Tracked:  s.resolution.Tracked.IDs(),
		Matches:  s.resolution.Matches,
		Warnings: make([]WarningInfo, 0, len(s.resolution.Warnings)),
	}
	if resp.Matches == nil {
		resp.Matches = []resolver.Match{}
	}

	for _, w := range s.resolution.Warnings {
		resp.Warnings = append(resp.Warnings, WarningInfo{Path: w.Path, Message: w.Message()})
	}

	return ctx.JSON(http.StatusOK, resp)
}
