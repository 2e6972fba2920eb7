package backend

import (
	"context"
	"slices"

	"dompet/internal/ledger"
	"dompet/internal/services"
	"dompet/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds everything the ledger needs from the outside world.
// Alerts and Sheets are nil when the feature is disabled.
type BackendResult struct {
	Persister ledger.Persister
	Alerts    services.AlertPublisher
	Sheets    sheets.Backup
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// File specific
	DataFile string

	// Budget alerts, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets backup, optional
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of persister
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	FileBackend   BackendType = "file"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	return slices.Contains(GetBackendTypes(), bt)
}
