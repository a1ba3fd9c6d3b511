package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/beacon/internal/database"
)

// MaintenanceJob keeps the local databases healthy: integrity checks,
// WAL checkpoints, and size reporting. Scheduled daily.
type MaintenanceJob struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewMaintenanceJob creates a new database maintenance job.
func NewMaintenanceJob(databases map[string]*database.DB, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		databases: databases,
		log:       log.With().Str("job", "db_maintenance").Logger(),
	}
}

// Run checks and checkpoints every database. All databases are visited
// even when one fails; the first error is returned.
func (j *MaintenanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var firstErr error
	for name, db := range j.databases {
		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", name).Msg("Health check failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("health check failed for %s: %w", name, err)
			}
			continue
		}

		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Str("database", name).Msg("WAL checkpoint failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if stats, err := db.GetStats(); err == nil {
			j.log.Info().
				Str("database", name).
				Int64("size_bytes", stats.SizeBytes).
				Int64("wal_bytes", stats.WALSizeBytes).
				Int64("free_pages", stats.FreelistCount).
				Msg("Database maintenance completed")
		}
	}

	return firstErr
}

// Name returns the job name for scheduling and logging.
func (j *MaintenanceJob) Name() string {
	return "db_maintenance"
}
