// Package catalog provides the item persistence contract and its two
// interchangeable backends: a single JSON document and a sqlite
// database. Both expose identical semantics through Repository.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kilupskalvis/catalogd/internal/config"
	"github.com/kilupskalvis/catalogd/internal/models"
)

// Sentinel errors for expected conditions.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Repository defines the contract for item persistence. Items are
// append-only: ids are assigned at creation, never reused, and never
// reassigned.
type Repository interface {
	// Create assigns a new unique id, persists the record, and returns
	// it. Safe under concurrent callers on the same backend.
	Create(ctx context.Context, name, category, imageName string) (*models.Item, error)

	// ListAll returns all items in creation order.
	ListAll(ctx context.Context) ([]models.Item, error)

	// GetByOrdinal returns the item with the given 1-based id.
	// Returns ErrNotFound for ids outside the stored range.
	GetByOrdinal(ctx context.Context, id int64) (*models.Item, error)

	// SearchByName returns items whose name contains the keyword as a
	// case-sensitive substring. A blank keyword is ErrInvalidArgument;
	// no match is an empty slice, not an error.
	SearchByName(ctx context.Context, keyword string) ([]models.Item, error)

	// ListCategories returns the known categories in first-use order.
	ListCategories(ctx context.Context) ([]models.Category, error)

	// Close releases resources.
	Close() error
}

// Open constructs the repository backend selected by the
// configuration.
func Open(cfg *config.Config, logger *slog.Logger) (Repository, error) {
	switch strings.ToLower(cfg.Backend) {
	case config.BackendDocument:
		return NewDocumentRepository(cfg.DocumentPath(), logger), nil
	case config.BackendSQLite:
		return NewSQLiteRepository(cfg.DatabasePath())
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// validateKeyword enforces the shared search contract.
func validateKeyword(keyword string) error {
	if strings.TrimSpace(keyword) == "" {
		return fmt.Errorf("%w: keyword must not be blank", ErrInvalidArgument)
	}
	return nil
}
