package cache

import (
	"fmt"
	"log/slog"
)

// ClearCmd represents the cache clear subcommand
type ClearCmd struct {
	Expired bool `help:"Only remove entries whose TTL has passed"`
}

func (c *ClearCmd) Run() error {
	cacheInstance, err := GetGlobalCache()
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	slog.Info("Clearing cache", "database", cacheInstance.Path(), "expired_only", c.Expired)

	var rows int64
	if c.Expired {
		rows, err = cacheInstance.ClearExpired(GoogleBooksTable)
	} else {
		rows, err = cacheInstance.ClearAll(GoogleBooksTable)
	}
	if err != nil {
		return err
	}

	slog.Info("Cache cleared", "table", GoogleBooksTable, "rows_deleted", rows)
	return nil
}
