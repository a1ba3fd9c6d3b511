package reliability

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// BackupJob uploads a fresh backup to R2 and rotates old ones.
// It should be scheduled to run daily, outside market hours.
type BackupJob struct {
	service       *R2BackupService
	retentionDays int
	log           zerolog.Logger
}

// NewBackupJob creates a new R2 backup job.
func NewBackupJob(service *R2BackupService, retentionDays int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service:       service,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "r2_backup").Logger(),
	}
}

// Run creates and uploads a backup, then rotates old ones. A rotation
// failure is logged but does not fail the job: the backup is already safe.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := j.service.CreateAndUploadBackup(ctx); err != nil {
		j.log.Error().Err(err).Msg("Backup failed")
		return err
	}

	if err := j.service.RotateOldBackups(ctx, j.retentionDays); err != nil {
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *BackupJob) Name() string {
	return "r2_backup"
}
