package router

import (
	"net/http"

	pageHandler "pagenest/internal/page"
	"pagenest/internal/page/repository"
	"pagenest/internal/page/service"
	"pagenest/middleware"
	"pagenest/pkg/config"
	"pagenest/socket"

	"github.com/jmoiron/sqlx"
)

func Setup(db *sqlx.DB, hub *socket.Hub, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	pageRepo := repository.NewPageRepository(db)
	pageService := service.NewPageService(pageRepo, hub)
	h := pageHandler.NewPageHandler(pageService)
	auth := middleware.Auth(cfg.JWT.Secret)

	// WebSocket: realtime change feed plus the session's edit/tree state.
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		socket.ServeWs(hub, pageService, cfg.Autosave.Delay, w, r, userID)
	})
	mux.Handle("/ws", auth(wsHandler))

	// REST API
	mux.Handle("/api/pages/create", auth(http.HandlerFunc(h.CreatePage)))
	mux.Handle("/api/pages/save", auth(http.HandlerFunc(h.SavePage)))
	mux.Handle("/api/pages/delete", auth(http.HandlerFunc(h.DeletePage)))
	mux.Handle("/api/pages/tree", auth(http.HandlerFunc(h.GetTree)))
	mux.Handle("/api/pages/home", auth(http.HandlerFunc(h.Home)))
	mux.Handle("/api/pages", auth(http.HandlerFunc(h.GetPage)))

	return middleware.CORS(cfg.CORS.AllowedOrigins)(mux)
}
