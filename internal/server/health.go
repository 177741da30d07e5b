package server

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/sentinel-quant/internal/httputil"
)

// Version is reported by /health.
const Version = "1.0.0"

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status        string  `json:"status"`
	Service       string  `json:"service"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := s.systemStats()
	httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		Service:       "sentinel-quant",
		Version:       Version,
		UptimeSeconds: time.Since(s.started).Seconds(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
	}, s.log)
}

// systemStats samples CPU over 100ms so a health probe stays fast.
func (s *Server) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(cpuPercent) == 0 {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuPercent[0], 0
	}

	return cpuPercent[0], memStat.UsedPercent
}
