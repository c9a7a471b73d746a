// Package cmd provides common initialization for command-line applications.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taskpilot/taskpilot/pkg/persistence"
	"github.com/taskpilot/taskpilot/pkg/persistence/file"
	"github.com/taskpilot/taskpilot/pkg/persistence/postgresql"
	"github.com/taskpilot/taskpilot/pkg/persistence/redis"
)

var supportedPersistenceProviders = []string{"file", "postgres", "postgresql", "redis", "rediss"}

// NewPersistence picks a persistence provider from the database URL scheme.
// Unknown schemes fall back to file persistence rooted at the given path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(err)
		}

		return p
	case "redis", "rediss":
		p, err := redis.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(err)
		}

		return p
	default:
		return file.NewPersistence(databaseURL)
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
