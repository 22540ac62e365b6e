package service

import (
	"context"
	"database/sql"
	"errors"

	"pagenest/internal/page/model"
	"pagenest/internal/page/repository"
	"pagenest/internal/page/tree"
	"pagenest/socket"

	"github.com/google/uuid"
)

const (
	defaultTitle   = "Untitled"
	welcomeTitle   = "Getting Started"
	welcomeContent = "<h1>Welcome to Pagenest!</h1><p>Start writing your first page...</p>"
)

// ErrRedirectHome covers both a missing page and one owned by another user.
// The two are deliberately indistinguishable to the caller, whose only
// recourse is the application root.
var ErrRedirectHome = errors.New("page not found or not owned by caller")

type PageService struct {
	Repo *repository.PageRepository
	Hub  *socket.Hub
}

func NewPageService(repo *repository.PageRepository, hub *socket.Hub) *PageService {
	return &PageService{Repo: repo, Hub: hub}
}

// Create inserts a page with default title and empty content under the given
// parent (nil for root level) and notifies the owner's open sessions.
func (s *PageService) Create(ctx context.Context, userID string, req model.CreatePageRequest) (model.Page, error) {
	title := req.Title
	if title == "" {
		title = defaultTitle
	}
	p, err := s.Repo.Create(ctx, uuid.NewString(), userID, req.ParentID, title, "", "")
	if err != nil {
		return model.Page{}, err
	}
	s.Hub.Notify(socket.ActionInsert, userID, p.ID)
	return p, nil
}

// Get loads a page the caller owns. Missing rows and foreign rows both map
// to ErrRedirectHome.
func (s *PageService) Get(ctx context.Context, userID, pageID string) (model.Page, error) {
	p, err := s.Repo.GetByID(ctx, pageID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Page{}, ErrRedirectHome
	}
	if err != nil {
		return model.Page{}, err
	}
	if p.UserID != userID {
		return model.Page{}, ErrRedirectHome
	}
	return p, nil
}

// List returns the caller's non-archived pages in position order.
func (s *PageService) List(ctx context.Context, userID string) ([]model.Page, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Forest returns the caller's pages as a freshly built tree.
func (s *PageService) Forest(ctx context.Context, userID string) ([]*model.PageTreeItem, error) {
	pages, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return tree.Build(pages), nil
}

// Save persists the full draft (title, content, icon) after an ownership
// check and notifies the owner's sessions. Last write wins; there is no
// conflict detection against concurrent saves.
func (s *PageService) Save(ctx context.Context, userID string, req model.SavePageRequest) error {
	if _, err := s.Get(ctx, userID, req.PageID); err != nil {
		return err
	}
	if err := s.Repo.UpdateDraft(ctx, req.PageID, req.Title, req.Content, req.Icon); err != nil {
		return err
	}
	s.Hub.Notify(socket.ActionUpdate, userID, req.PageID)
	return nil
}

// Delete removes the page row outright. Listings filter on is_archived, so a
// soft-delete path exists in the repository, but the delete action has always
// hard-deleted; the mismatch is intentional until the archive flow gets a
// surface.
func (s *PageService) Delete(ctx context.Context, userID, pageID string) error {
	if _, err := s.Get(ctx, userID, pageID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, pageID); err != nil {
		return err
	}
	s.Hub.Notify(socket.ActionDelete, userID, pageID)
	return nil
}

// Bootstrap resolves the landing page: the user's earliest-created page, or a
// freshly created "Getting Started" page for a brand-new user.
//
// The check and the insert are not mutually exclusive: two unsynchronized
// bootstraps can both observe zero pages and each create a default page.
// Known race, reproduced in tests rather than fixed here.
func (s *PageService) Bootstrap(ctx context.Context, userID string) (model.Page, error) {
	p, err := s.Repo.FirstByCreated(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Page{}, err
	}

	p, err = s.Repo.Create(ctx, uuid.NewString(), userID, nil, welcomeTitle, welcomeContent, "")
	if err != nil {
		return model.Page{}, err
	}
	s.Hub.Notify(socket.ActionInsert, userID, p.ID)
	return p, nil
}
