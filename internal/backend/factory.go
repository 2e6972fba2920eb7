package backend

import (
	"context"
	"errors"
	"fmt"

	"dompet/internal/amqp"
	"dompet/internal/log"
	gsheet "dompet/internal/sheets/google"
	"dompet/internal/storage"
	"dompet/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend opens the persister and the optional alert and backup
// clients. Optional clients that fail to start are logged and left out.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var closers []func() error
	result := &BackendResult{}

	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		result.Persister = repo
		closers = append(closers, repo.Close)
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case FileBackend:
		repo, err := storage.NewFileRepository(config.DataFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file repository: %w", err)
		}
		result.Persister = repo
		f.logger.InfoContext(ctx, "Initialized file backend", "path", config.DataFile)
	case MemoryBackend:
		result.Persister = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend, data will not survive a restart")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without budget alerts", log.FieldError, err)
		} else {
			result.Alerts = client
			closers = append(closers, client.Close)
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	if config.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromConfig(ctx, gsheet.Options{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		}, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize Google Sheets client, backup to sheets disabled", log.FieldError, err)
		} else {
			result.Sheets = client
		}
	}

	result.Cleanup = func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	f.logger.InfoContext(ctx, "Backend ready",
		log.FieldBackend, config.Type.String(),
		"alerts_enabled", result.Alerts != nil,
		"sheets_enabled", result.Sheets != nil)
	return result, nil
}
