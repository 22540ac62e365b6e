package model

import "time"

// Page is a persisted row in the pages table. ParentID is nil for root-level
// pages. Content is opaque markup owned by the editor; the backend never
// parses it.
type Page struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	ParentID   *string   `db:"parent_id" json:"parent_id"`
	Title      string    `db:"title" json:"title"`
	Content    string    `db:"content" json:"content"`
	Icon       string    `db:"icon" json:"icon"`
	Position   int       `db:"position" json:"position"`
	IsArchived bool      `db:"is_archived" json:"is_archived"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// PageTreeItem is the in-memory node built from a flat page listing. It is
// rebuilt from scratch on every reload and never persisted.
type PageTreeItem struct {
	Page
	Children []*PageTreeItem `json:"children"`
}

type CreatePageRequest struct {
	ParentID *string `json:"parent_id"`
	Title    string  `json:"title"`
}

type SavePageRequest struct {
	PageID  string `json:"page_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Icon    string `json:"icon"`
}
