package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/paisatrack/paisatrack/internal/aiclassify"
	"github.com/paisatrack/paisatrack/internal/fileparse"
	"github.com/paisatrack/paisatrack/internal/importer"
	"github.com/paisatrack/paisatrack/internal/llm"
	"github.com/paisatrack/paisatrack/internal/storage"
)

// openDatabase opens the configured database without touching the schema.
func openDatabase() (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "paisatrack", "paisatrack.db")
	}
	return storage.NewSQLiteStorage(dbPath)
}

// openStorage opens (and migrates) the configured database.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := openDatabase()
	if err != nil {
		return nil, err
	}

	if _, err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// buildService wires the import service from configuration.
func buildService(store *storage.SQLiteStorage, pdfPassword string) (*importer.Service, error) {
	client, err := llm.NewClient(llm.Config{
		Provider:    viper.GetString("ai.provider"),
		APIKey:      viper.GetString("ai.api_key"),
		BaseURL:     viper.GetString("ai.base_url"),
		Model:       viper.GetString("ai.model"),
		Temperature: viper.GetFloat64("ai.temperature"),
		MaxTokens:   viper.GetInt("ai.max_tokens"),
		RateLimit:   viper.GetInt("ai.rate_limit"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	stageCfg := aiclassify.DefaultConfig()
	stageCfg.Model = viper.GetString("ai.model")
	if v := viper.GetInt("ai.batch_size"); v > 0 {
		stageCfg.BatchSize = v
	}
	if v := viper.GetInt("ai.concurrency"); v > 0 {
		stageCfg.Concurrency = v
	}
	if v := viper.GetInt("ai.retries"); v > 0 {
		stageCfg.Retries = v
	}
	if v := viper.GetDuration("ai.timeout"); v > 0 {
		stageCfg.Timeout = v
	}

	var opts []fileparse.Option
	if pdfPassword != "" {
		opts = append(opts, fileparse.WithPDFPassword(pdfPassword))
	}

	return importer.NewService(
		store,
		fileparse.NewParser(opts...),
		aiclassify.NewStage(client, stageCfg),
	), nil
}

// formatAge renders a compact relative timestamp for listings.
func formatAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
