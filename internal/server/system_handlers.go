// Package server provides the HTTP server and routing for Beacon.
package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/beacon/internal/database"
	"github.com/aristath/beacon/internal/scheduler"
)

// SystemHandlers handles system-wide monitoring and operations endpoints.
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	startupTime time.Time
	databases   map[string]*database.DB
	scheduler   *scheduler.Scheduler
	jobs        map[string]scheduler.Job
}

// NewSystemHandlers creates a new system handlers instance.
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	databases map[string]*database.DB,
	sched *scheduler.Scheduler,
	jobs []scheduler.Job,
) *SystemHandlers {
	jobsByName := make(map[string]scheduler.Job, len(jobs))
	for _, job := range jobs {
		jobsByName[job.Name()] = job
	}

	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		dataDir:     dataDir,
		startupTime: time.Now(),
		databases:   databases,
		scheduler:   sched,
		jobs:        jobsByName,
	}
}

// SystemStatusResponse represents the system status response
type SystemStatusResponse struct {
	Status         string  `json:"status"`
	UptimeHours    float64 `json:"uptime_hours"`
	WatchlistCount int     `json:"watchlist_count"`
	CPUPercent     float64 `json:"cpu_percent"`
	RAMPercent     float64 `json:"ram_percent"`
	Jobs           int     `json:"jobs"`
}

// DatabaseStatsResponse represents database statistics
type DatabaseStatsResponse struct {
	Databases   []DBInfo `json:"databases"`
	TotalSizeMB float64  `json:"total_size_mb"`
	LastChecked string   `json:"last_checked"`
}

// DBInfo represents information about a single database
type DBInfo struct {
	Name      string  `json:"name"`
	Path      string  `json:"path"`
	SizeMB    float64 `json:"size_mb"`
	WALSizeMB float64 `json:"wal_size_mb"`
	FreePages int64   `json:"free_pages"`
}

// DiskUsageResponse represents disk usage statistics
type DiskUsageResponse struct {
	DataDirMB   float64 `json:"data_dir_mb"`
	AvailableMB float64 `json:"available_mb,omitempty"`
	UsedPercent float64 `json:"used_percent,omitempty"`
}

// HandleSystemStatus returns overall process and data health
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	watchlistCount := 0
	if configDB, ok := h.databases["config"]; ok {
		err := configDB.QueryRow("SELECT COUNT(*) FROM watchlist").Scan(&watchlistCount)
		if err != nil && err != sql.ErrNoRows {
			h.log.Error().Err(err).Msg("Failed to count watchlist entries")
		}
	}

	cpuPercent, ramPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:         "healthy",
		UptimeHours:    time.Since(h.startupTime).Hours(),
		WatchlistCount: watchlistCount,
		CPUPercent:     cpuPercent,
		RAMPercent:     ramPercent,
		Jobs:           len(h.jobs),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleDatabaseStats returns database statistics
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting database stats")

	names := make([]string, 0, len(h.databases))
	for name := range h.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	infos := make([]DBInfo, 0, len(names))
	totalSizeMB := 0.0

	for _, name := range names {
		db := h.databases[name]
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to get database stats")
			continue
		}

		sizeMB := float64(stats.SizeBytes) / 1024 / 1024
		totalSizeMB += sizeMB

		infos = append(infos, DBInfo{
			Name:      name,
			Path:      db.Path(),
			SizeMB:    sizeMB,
			WALSizeMB: float64(stats.WALSizeBytes) / 1024 / 1024,
			FreePages: stats.FreelistCount,
		})
	}

	response := DatabaseStatsResponse{
		Databases:   infos,
		TotalSizeMB: totalSizeMB,
		LastChecked: time.Now().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleDiskUsage returns disk usage statistics
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting disk usage")

	response := DiskUsageResponse{
		DataDirMB: h.getDirSize(h.dataDir),
	}

	if usage, err := disk.Usage(h.dataDir); err == nil {
		response.AvailableMB = float64(usage.Free) / 1024 / 1024
		response.UsedPercent = usage.UsedPercent
	} else {
		h.log.Warn().Err(err).Msg("Failed to get disk usage")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleTriggerJob runs a registered background job immediately.
// POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	job, ok := h.jobs[name]
	if !ok {
		names := make([]string, 0, len(h.jobs))
		for jobName := range h.jobs {
			names = append(names, jobName)
		}
		sort.Strings(names)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "error",
			"message": "unknown job: " + name,
			"jobs":    names,
		})
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job trigger")

	// Jobs can take minutes; run in the background and return immediately.
	go func() {
		if err := h.scheduler.RunNow(job); err != nil {
			h.log.Error().Err(err).Str("job", name).Msg("Manually triggered job failed")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "accepted",
		"message": "Job " + name + " started",
	})
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})

	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// getSystemStats calculates CPU and RAM usage percentages. The CPU
// sample window is kept short so the status endpoint stays responsive.
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
