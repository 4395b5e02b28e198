package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kilupskalvis/catalogd/internal/models"
)

// documentItem is the persisted shape of one record. The id is not
// stored; it is the record's 1-based position in the list.
type documentItem struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Image    string `json:"image"`
}

// document is the persisted shape of the whole catalog.
type document struct {
	Items []documentItem `json:"items"`
}

// DocumentRepository stores the catalog as one JSON document on disk.
// Every mutation is a read-modify-write of the whole file, so the
// mutex is held across the full cycle; without it two concurrent
// creates would silently lose one write.
type DocumentRepository struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewDocumentRepository creates a document-backed repository at the
// given file path. The file is created on first write.
func NewDocumentRepository(path string, logger *slog.Logger) *DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentRepository{path: path, logger: logger}
}

// Create appends a record and atomically rewrites the document.
func (r *DocumentRepository) Create(_ context.Context, name, category, imageName string) (*models.Item, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name must not be blank", ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	doc.Items = append(doc.Items, documentItem{
		Name:     name,
		Category: category,
		Image:    imageName,
	})

	if err := r.write(doc); err != nil {
		return nil, err
	}

	return &models.Item{
		ID:       int64(len(doc.Items)),
		Name:     name,
		Category: category,
		Image:    imageName,
	}, nil
}

// ListAll returns all items in insertion order.
func (r *DocumentRepository) ListAll(_ context.Context) ([]models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	items := make([]models.Item, len(doc.Items))
	for i, rec := range doc.Items {
		items[i] = models.Item{
			ID:       int64(i + 1),
			Name:     rec.Name,
			Category: rec.Category,
			Image:    rec.Image,
		}
	}
	return items, nil
}

// GetByOrdinal returns the (id-1)-th stored record.
func (r *DocumentRepository) GetByOrdinal(_ context.Context, id int64) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	if id < 1 || id > int64(len(doc.Items)) {
		return nil, fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	rec := doc.Items[id-1]
	return &models.Item{
		ID:       id,
		Name:     rec.Name,
		Category: rec.Category,
		Image:    rec.Image,
	}, nil
}

// SearchByName returns items whose name contains the keyword.
func (r *DocumentRepository) SearchByName(_ context.Context, keyword string) ([]models.Item, error) {
	if err := validateKeyword(keyword); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	items := []models.Item{}
	for i, rec := range doc.Items {
		if strings.Contains(rec.Name, keyword) {
			items = append(items, models.Item{
				ID:       int64(i + 1),
				Name:     rec.Name,
				Category: rec.Category,
				Image:    rec.Image,
			})
		}
	}
	return items, nil
}

// ListCategories returns the distinct non-empty category labels in
// first-use order. The document form stores categories inline, so ids
// are synthesized from that order.
func (r *DocumentRepository) ListCategories(_ context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	categories := []models.Category{}
	for _, rec := range doc.Items {
		if rec.Category == "" || seen[rec.Category] {
			continue
		}
		seen[rec.Category] = true
		categories = append(categories, models.Category{
			ID:   int64(len(categories) + 1),
			Name: rec.Category,
		})
	}
	return categories, nil
}

// Close is a no-op; the document is opened per operation.
func (r *DocumentRepository) Close() error {
	return nil
}

// load reads the current document. A missing file is an empty catalog;
// an unparseable file is also treated as empty. That recovery masks
// genuine corruption, so it is logged, but it never surfaces as an
// error to callers. Any other read failure is a real storage error and
// propagates — treating it as empty would let a Create rewrite the
// whole catalog as a one-item document. Callers must hold r.mu.
func (r *DocumentRepository) load() (document, error) {
	var doc document

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return doc, fmt.Errorf("read document: %w", err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		r.logger.Warn("document corrupt, treating as empty catalog", "path", r.path, "error", err)
		return document{}, nil
	}
	return doc, nil
}

// write rewrites the whole document through a temp file and rename, so
// a crash mid-write never leaves a truncated document behind. Callers
// must hold r.mu.
func (r *DocumentRepository) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmpFile, err := os.CreateTemp(dir, ".items-*")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp document: %w", err)
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}
