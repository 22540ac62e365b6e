package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"pagenest/internal/page/model"
	"pagenest/internal/page/service"
	"pagenest/middleware"
	"pagenest/pkg/logger"
)

type PageHandler struct {
	Service *service.PageService
}

func NewPageHandler(svc *service.PageService) *PageHandler {
	return &PageHandler{Service: svc}
}

func (h *PageHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := middleware.UserID(r)

	var req model.CreatePageRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // Ignore error, defaults apply

	p, err := h.Service.Create(r.Context(), userID, req)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to create page: %v", err)
		http.Error(w, "Failed to create page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

func (h *PageHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pageID := r.URL.Query().Get("pageId")
	if pageID == "" {
		http.Error(w, "Missing pageId parameter", http.StatusBadRequest)
		return
	}

	userID := middleware.UserID(r)

	p, err := h.Service.Get(r.Context(), userID, pageID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

func (h *PageHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := middleware.UserID(r)

	forest, err := h.Service.Forest(r.Context(), userID)
	if err != nil {
		logger.Sugar.Errorf("Error building page tree: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(forest)
}

// Home resolves the landing page for the signed-in user, creating the default
// first page when none exists yet.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := middleware.UserID(r)

	p, err := h.Service.Bootstrap(r.Context(), userID)
	if err != nil {
		logger.Sugar.Errorf("Handler: Bootstrap failed for user %s: %v", userID, err)
		http.Error(w, "Failed to resolve landing page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

func (h *PageHandler) SavePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.SavePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PageID == "" {
		http.Error(w, "Missing page_id", http.StatusBadRequest)
		return
	}

	userID := middleware.UserID(r)

	if err := h.Service.Save(r.Context(), userID, req); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Page saved successfully"))
}

func (h *PageHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pageID := r.URL.Query().Get("pageId")
	if pageID == "" {
		http.Error(w, "Missing pageId parameter", http.StatusBadRequest)
		return
	}

	userID := middleware.UserID(r)

	if err := h.Service.Delete(r.Context(), userID, pageID); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Page deleted successfully"))
}

// respondError maps a missing or foreign page to a redirect-to-root answer;
// everything else is a plain server error.
func (h *PageHandler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrRedirectHome) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"redirect": "/"})
		return
	}
	logger.Sugar.Errorf("Handler: %v", err)
	http.Error(w, "Database error", http.StatusInternalServerError)
}
