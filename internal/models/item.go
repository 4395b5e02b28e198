// Package models defines the catalog data model shared by all
// persistence backends.
package models

// Item represents one catalog entry. ID is assigned by the repository
// at creation time: the 1-based position in the document backend, the
// generated primary key in the sqlite backend. IDs are never reused.
type Item struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Image    string `json:"image"`
}

// Category represents a normalized category row in the sqlite backend.
// Categories are created on first use of a new name and never deleted.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
