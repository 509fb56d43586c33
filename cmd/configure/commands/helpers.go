package commands

import (
	"fmt"
	"os"

	"github.com/chroniclehq/feedgen/internal/config"
	"github.com/chroniclehq/feedgen/internal/database"
)

// openDatabase loads configuration and connects to the database. The caller
// owns the returned connection.
func openDatabase() (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func closeDatabase(db *database.DB) {
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
}
