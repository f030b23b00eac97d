package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/pumplab/pumpselect/internal/modules/catalog"
)

// SystemHandlers provides system-level HTTP handlers: health, status,
// database stats.
type SystemHandlers struct {
	log            zerolog.Logger
	dataDir        string
	catalogService *catalog.Service
	startedAt      time.Time
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(log zerolog.Logger, dataDir string, catalogService *catalog.Service) *SystemHandlers {
	return &SystemHandlers{
		log:            log.With().Str("handler", "system").Logger(),
		dataDir:        dataDir,
		catalogService: catalogService,
		startedAt:      time.Now(),
	}
}

// SystemStatusResponse is the GET /api/system/status payload
type SystemStatusResponse struct {
	Status            string  `json:"status"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryPercent     float64 `json:"memory_percent"`
	CatalogModels     int     `json:"catalog_models"`
	CatalogGeneration uint64  `json:"catalog_generation"`
}

// DBInfo describes one database file on disk
type DBInfo struct {
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	SizeMB float64 `json:"size_mb"`
}

// DatabaseStatsResponse is the GET /api/system/databases payload
type DatabaseStatsResponse struct {
	Databases   []DBInfo `json:"databases"`
	TotalSizeMB float64  `json:"total_size_mb"`
	LastChecked string   `json:"last_checked"`
}

// HandleHealth handles GET /api/health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := h.getSystemStats()

	models, gen, err := h.catalogService.Snapshot()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load catalog for status")
		http.Error(w, "Failed to read system status", http.StatusInternalServerError)
		return
	}

	response := SystemStatusResponse{
		Status:            "ok",
		UptimeSeconds:     time.Since(h.startedAt).Seconds(),
		CPUPercent:        cpuPct,
		MemoryPercent:     memPct,
		CatalogModels:     len(models),
		CatalogGeneration: gen,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleDatabaseStats handles GET /api/system/databases
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	databases := []DBInfo{}
	totalSizeMB := 0.0

	for _, name := range []string{"catalog.db", "cache.db"} {
		path := filepath.Join(h.dataDir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		sizeMB := float64(info.Size()) / 1024 / 1024
		totalSizeMB += sizeMB
		databases = append(databases, DBInfo{Name: name, Path: path, SizeMB: sizeMB})
	}

	response := DatabaseStatsResponse{
		Databases:   databases,
		TotalSizeMB: totalSizeMB,
		LastChecked: time.Now().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// getSystemStats returns CPU and RAM usage percentages. The CPU sample uses
// a 100ms window so the status endpoint stays responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
