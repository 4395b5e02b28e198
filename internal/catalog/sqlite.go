package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kilupskalvis/catalogd/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteRepository stores items as rows across normalized tables.
// Category names are deduplicated into a categories table with a
// unique constraint; reads join the tables to materialize the
// category name.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the catalog database at the
// given path and applies the schema.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=case_sensitive_like(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err := r.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// initialize creates the database schema.
func (r *SQLiteRepository) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		category_id INTEGER REFERENCES categories(id),
		image_name TEXT NOT NULL
	);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Create inserts the item and its category in one transaction. The
// category row is resolved with INSERT OR IGNORE against the unique
// name constraint, so concurrent creates of the same new category
// converge on a single row instead of racing a check-then-insert.
func (r *SQLiteRepository) Create(ctx context.Context, name, category, imageName string) (*models.Item, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name must not be blank", ErrInvalidArgument)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var categoryID sql.NullInt64
	if category != "" {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO categories (name) VALUES (?)`, category); err != nil {
			return nil, fmt.Errorf("upsert category: %w", err)
		}
		if err := tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = ?`, category).Scan(&categoryID.Int64); err != nil {
			return nil, fmt.Errorf("resolve category: %w", err)
		}
		categoryID.Valid = true
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO items (name, category_id, image_name) VALUES (?, ?, ?)`,
		name, categoryID, imageName)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("item id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &models.Item{
		ID:       id,
		Name:     name,
		Category: category,
		Image:    imageName,
	}, nil
}

// ListAll returns all items in id order with the category name joined
// in.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]models.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT items.id, items.name, COALESCE(categories.name, ''), items.image_name
		FROM items
		LEFT JOIN categories ON categories.id = items.category_id
		ORDER BY items.id`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// GetByOrdinal returns the item with the given primary key.
func (r *SQLiteRepository) GetByOrdinal(ctx context.Context, id int64) (*models.Item, error) {
	if id < 1 {
		return nil, fmt.Errorf("%w: item %d", ErrNotFound, id)
	}

	var item models.Item
	err := r.db.QueryRowContext(ctx, `
		SELECT items.id, items.name, COALESCE(categories.name, ''), items.image_name
		FROM items
		LEFT JOIN categories ON categories.id = items.category_id
		WHERE items.id = ?`, id).
		Scan(&item.ID, &item.Name, &item.Category, &item.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	return &item, nil
}

// likeEscaper neutralizes LIKE pattern metacharacters so the keyword
// matches literally, as the document backend does.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchByName returns items whose name contains the keyword as a
// literal substring. The case_sensitive_like pragma in the DSN keeps
// LIKE case-sensitive and the ESCAPE clause keeps `%` and `_` inert,
// in line with the document backend.
func (r *SQLiteRepository) SearchByName(ctx context.Context, keyword string) ([]models.Item, error) {
	if err := validateKeyword(keyword); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT items.id, items.name, COALESCE(categories.name, ''), items.image_name
		FROM items
		LEFT JOIN categories ON categories.id = items.category_id
		WHERE items.name LIKE '%' || ? || '%' ESCAPE '\'
		ORDER BY items.id`, likeEscaper.Replace(keyword))
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListCategories returns all category rows in creation order.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func scanItems(rows *sql.Rows) ([]models.Item, error) {
	items := []models.Item{}
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.Image); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}
