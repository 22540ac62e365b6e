package repository

import (
	"context"

	"pagenest/internal/page/model"
	"pagenest/pkg/logger"

	"github.com/jmoiron/sqlx"
)

const pageColumns = `id, user_id, parent_id, title, content, icon, position, is_archived, created_at, updated_at`

type PageRepository struct {
	DB *sqlx.DB
}

func NewPageRepository(db *sqlx.DB) *PageRepository {
	return &PageRepository{DB: db}
}

// ListByUser returns the user's non-archived pages ordered by position.
// This is the listing every tree rebuild starts from.
func (r *PageRepository) ListByUser(ctx context.Context, userID string) ([]model.Page, error) {
	pages := []model.Page{}
	err := r.DB.SelectContext(ctx, &pages,
		`SELECT `+pageColumns+` FROM pages WHERE user_id = $1 AND is_archived = FALSE ORDER BY position ASC`,
		userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list pages for user %s: %v", userID, err)
		return nil, err
	}
	return pages, nil
}

// GetByID fetches a single page. sql.ErrNoRows passes through to the caller.
func (r *PageRepository) GetByID(ctx context.Context, pageID string) (model.Page, error) {
	var p model.Page
	err := r.DB.GetContext(ctx, &p,
		`SELECT `+pageColumns+` FROM pages WHERE id = $1`, pageID)
	return p, err
}

// FirstByCreated returns the user's earliest-created non-archived page, the
// landing page the bootstrap flow resolves to.
func (r *PageRepository) FirstByCreated(ctx context.Context, userID string) (model.Page, error) {
	var p model.Page
	err := r.DB.GetContext(ctx, &p,
		`SELECT `+pageColumns+` FROM pages WHERE user_id = $1 AND is_archived = FALSE ORDER BY created_at ASC LIMIT 1`,
		userID)
	return p, err
}

// Create inserts a page and reads the stored row back. Position is assigned
// at the end of the sibling list.
func (r *PageRepository) Create(ctx context.Context, pageID, userID string, parentID *string, title, content, icon string) (model.Page, error) {
	var p model.Page
	err := r.DB.GetContext(ctx, &p, `
		INSERT INTO pages (id, user_id, parent_id, title, content, icon, position, is_archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM pages WHERE user_id = $2 AND parent_id IS NOT DISTINCT FROM $3),
			FALSE, NOW(), NOW())
		RETURNING `+pageColumns,
		pageID, userID, parentID, title, content, icon)
	if err != nil {
		logger.Sugar.Errorf("Failed to create page %s: %v", pageID, err)
	}
	return p, err
}

// UpdateDraft persists the autosave buffer, all three fields in one write.
func (r *PageRepository) UpdateDraft(ctx context.Context, pageID, title, content, icon string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE pages SET title = $1, content = $2, icon = $3, updated_at = NOW() WHERE id = $4`,
		title, content, icon, pageID)
	if err != nil {
		logger.Sugar.Errorf("Failed to update page %s: %v", pageID, err)
	}
	return err
}

// Delete removes the row outright. Listing filters on is_archived, but the
// delete action has always been a hard delete; see Archive for the soft path.
func (r *PageRepository) Delete(ctx context.Context, pageID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM pages WHERE id = $1`, pageID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete page %s: %v", pageID, err)
	}
	return err
}

// Archive soft-deletes a page so every listing skips it. No route drives this
// yet; the delete endpoint hard-deletes instead.
func (r *PageRepository) Archive(ctx context.Context, pageID string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE pages SET is_archived = TRUE, updated_at = NOW() WHERE id = $1`, pageID)
	if err != nil {
		logger.Sugar.Errorf("Failed to archive page %s: %v", pageID, err)
	}
	return err
}
