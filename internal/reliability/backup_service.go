package reliability

import (
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/beacon/internal/database"
)

// BackupService creates consistent snapshots of the local databases.
type BackupService struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewBackupService creates a backup service over the given databases.
func NewBackupService(databases map[string]*database.DB, log zerolog.Logger) *BackupService {
	return &BackupService{
		databases: databases,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// GetDatabaseNames returns the database names in stable order. The
// client_data cache is excluded when includeCache is false: it is fully
// reproducible from the provider.
func (s *BackupService) GetDatabaseNames(includeCache bool) []string {
	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		if name == "client_data" && !includeCache {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BackupDatabase writes a consistent snapshot of one database to
// destPath using VACUUM INTO, which is safe against concurrent writers
// in WAL mode.
func (s *BackupService) BackupDatabase(name, destPath string) error {
	db, ok := s.databases[name]
	if !ok {
		return fmt.Errorf("unknown database: %s", name)
	}

	// VACUUM INTO refuses to overwrite an existing file.
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear backup destination: %w", err)
	}

	if _, err := db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("failed to snapshot %s: %w", name, err)
	}

	s.log.Debug().Str("database", name).Str("dest", destPath).Msg("Database snapshot created")
	return nil
}
