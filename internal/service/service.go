// Package service implements the catalog use cases on top of the blob
// store and the item repository. The service itself is stateless; all
// state lives in its collaborators.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kilupskalvis/catalogd/internal/blobstore"
	"github.com/kilupskalvis/catalogd/internal/catalog"
	"github.com/kilupskalvis/catalogd/internal/models"
)

// Catalog orchestrates blob storage and item persistence.
type Catalog struct {
	repo   catalog.Repository
	blobs  blobstore.BlobStore
	logger *slog.Logger
}

// New creates a catalog service.
func New(repo catalog.Repository, blobs blobstore.BlobStore, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{repo: repo, blobs: blobs, logger: logger}
}

// SubmitItem validates the input, stores the image, and creates the
// item record. The blob is written before the record commit so that a
// listed record always has a resolvable fingerprint; invalid input is
// rejected before any side effect.
func (c *Catalog) SubmitItem(ctx context.Context, name, category string, image io.Reader) (*models.Item, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name must not be blank", catalog.ErrInvalidArgument)
	}
	if image == nil {
		return nil, fmt.Errorf("%w: image is required", catalog.ErrInvalidArgument)
	}

	fingerprint, err := c.blobs.Put(ctx, image)
	if err != nil {
		if errors.Is(err, blobstore.ErrInvalidName) {
			return nil, fmt.Errorf("%w: image must not be empty", catalog.ErrInvalidArgument)
		}
		return nil, fmt.Errorf("store image: %w", err)
	}

	item, err := c.repo.Create(ctx, name, category, fingerprint)
	if err != nil {
		return nil, err
	}

	c.logger.Info("item created", "id", item.ID, "name", item.Name, "image", item.Image)
	return item, nil
}

// ListItems returns all items in creation order.
func (c *Catalog) ListItems(ctx context.Context) ([]models.Item, error) {
	return c.repo.ListAll(ctx)
}

// GetItem returns the item with the given 1-based id.
func (c *Catalog) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	return c.repo.GetByOrdinal(ctx, id)
}

// ListCategories returns the known categories in first-use order.
func (c *Catalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	return c.repo.ListCategories(ctx)
}

// Search returns items whose name contains the keyword.
func (c *Catalog) Search(ctx context.Context, keyword string) ([]models.Item, error) {
	return c.repo.SearchByName(ctx, keyword)
}

// FetchImage opens the named image. A malformed name is an
// InvalidArgument; a missing blob falls back to the default
// placeholder rather than erroring.
func (c *Catalog) FetchImage(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := blobstore.ValidateName(name); err != nil {
		return nil, fmt.Errorf("%w: %q is not an image name", catalog.ErrInvalidArgument, name)
	}

	reader, err := c.blobs.Get(ctx, name)
	if errors.Is(err, blobstore.ErrBlobNotFound) {
		c.logger.Debug("image not found, serving default", "name", name)
		return c.blobs.Get(ctx, blobstore.DefaultName)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch image %s: %w", name, err)
	}
	return reader, nil
}
