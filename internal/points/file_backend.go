package points

import (
	json "github.com/goccy/go-json"
	"os"
	"pointsd/internal/models"
	"pointsd/internal/points/interfaces"
	"pointsd/internal/providers"
	"pointsd/internal/services"
	"pointsd/internal/structures"
)

// FileBackend persists the ledger as a zstd-compressed JSON document. Writes
// go through a temp file with fsync and rename so a crash mid-write leaves
// the previous ledger intact.
type FileBackend struct {
	path       string
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileBackend(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger) services.LedgerBackend {
	return &FileBackend{
		path:       conf.Persistence.FilePath,
		compressor: compressor,
		logger:     logger,
	}
}

func (f *FileBackend) Save(users map[string]*models.LedgerEntry) error {
	ledger := models.Ledger{
		Version: models.LedgerFormatVersion,
		Users:   users,
	}

	jsonData, err := json.Marshal(ledger)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := f.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, f.path)
}

func (f *FileBackend) Load() (map[string]*models.LedgerEntry, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]*models.LedgerEntry), nil
		}
		return nil, err
	}

	decoded, err := f.compressor.Decompress(data)
	if err != nil {
		// Legacy files were written as plain JSON.
		decoded = data
	}

	// Current format: versioned envelope.
	var ledger models.Ledger
	if err := json.Unmarshal(decoded, &ledger); err == nil && ledger.Users != nil {
		return normalizeUsers(ledger.Users), nil
	}

	// Legacy format: bare user map at the top level.
	f.logger.Warnf(providers.TypeApp, "Inconsistent ledger file found, try to migrate from old data format")
	var users map[string]*models.LedgerEntry
	if err := json.Unmarshal(decoded, &users); err != nil {
		f.logger.Warnf(providers.TypeApp, "Migration failed")
		return nil, err
	}
	f.logger.Warnf(providers.TypeApp, "Migration from legacy format successful")
	return normalizeUsers(users), nil
}

// normalizeUsers drops null entries and backfills nil daily maps so callers
// never see a partially-formed record.
func normalizeUsers(users map[string]*models.LedgerEntry) map[string]*models.LedgerEntry {
	result := make(map[string]*models.LedgerEntry, len(users))
	for userID, entry := range users {
		if userID == "" || entry == nil {
			continue
		}
		if entry.Daily == nil {
			entry.Daily = make(map[string]int)
		}
		result[userID] = entry
	}
	return result
}
