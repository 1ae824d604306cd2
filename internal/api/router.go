package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/erazemk/kitreq/internal/live"
	"github.com/erazemk/kitreq/internal/model"
	"github.com/erazemk/kitreq/internal/settings"
	"github.com/erazemk/kitreq/internal/undo"
)

// Config holds what the API needs from the process.
type Config struct {
	DB        *sql.DB
	JWTSecret string
	Settings  *settings.Cache
	Hub       *live.Hub
	Undo      *undo.Buffer
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: cfg.DB, JWTSecret: cfg.JWTSecret}
	usersHandler := &UsersHandler{DB: cfg.DB}
	inventoryHandler := &InventoryHandler{DB: cfg.DB, Hub: cfg.Hub, Undo: cfg.Undo}
	requestsHandler := &RequestsHandler{DB: cfg.DB, Hub: cfg.Hub, Undo: cfg.Undo}
	surveysHandler := &SurveysHandler{DB: cfg.DB, Settings: cfg.Settings}
	settingsHandler := &SettingsHandler{Settings: cfg.Settings}
	adminHandler := &AdminHandler{DB: cfg.DB, Hub: cfg.Hub, Undo: cfg.Undo}
	undoHandler := &UndoHandler{Undo: cfg.Undo}
	liveHandler := &LiveHandler{Hub: cfg.Hub}

	cfg.Settings.OnChange(func(model.Settings) {
		cfg.Hub.Publish(context.Background(), live.Settings)
	})

	authMW := AuthMiddleware(cfg.JWTSecret, cfg.DB)
	optionalAuth := OptionalAuth(cfg.JWTSecret, cfg.DB)
	viewer := func(h http.HandlerFunc) http.Handler {
		return optionalAuth(RequireViewer(cfg.Settings)(h))
	}
	staff := func(h http.HandlerFunc) http.Handler {
		return authMW(RequireRole(model.RoleStaff)(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authMW(RequireRole(model.RoleAdmin)(h))
	}

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/settings", settingsHandler.Get)
	mux.HandleFunc("POST /api/requests", requestsHandler.Create)
	mux.HandleFunc("POST /api/surveys", surveysHandler.Create)
	mux.Handle("POST /api/undo/{token}", optionalAuth(http.HandlerFunc(undoHandler.Run)))

	// Any signed-in user.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Inventory: read (viewer, or anyone when login is off), write (staff+).
	mux.Handle("GET /api/inventory", viewer(inventoryHandler.List))
	mux.Handle("GET /api/inventory/summary", viewer(inventoryHandler.Summary))
	mux.Handle("GET /api/inventory/export", viewer(inventoryHandler.Export))
	mux.Handle("GET /api/inventory/{id}", viewer(inventoryHandler.Get))
	mux.Handle("POST /api/inventory", staff(inventoryHandler.Create))
	mux.Handle("PUT /api/inventory/{id}", staff(inventoryHandler.Update))
	mux.Handle("DELETE /api/inventory/{id}", staff(inventoryHandler.Delete))
	mux.Handle("POST /api/inventory/{id}/received", staff(inventoryHandler.Received))
	mux.Handle("POST /api/inventory/{id}/assign", staff(inventoryHandler.Assign))
	mux.Handle("POST /api/inventory/{id}/return", staff(inventoryHandler.Return))
	mux.Handle("POST /api/inventory/{id}/missing", staff(inventoryHandler.Missing))

	// Pending requests.
	mux.Handle("GET /api/requests", viewer(requestsHandler.List))
	mux.Handle("POST /api/requests/{id}/approve", staff(requestsHandler.Approve))
	mux.Handle("DELETE /api/requests/{id}", staff(requestsHandler.Deny))

	// Live feed.
	mux.Handle("GET /api/live", viewer(liveHandler.Subscribe))

	// Admin panel.
	mux.Handle("PUT /api/settings", admin(settingsHandler.Update))
	mux.Handle("POST /api/admin/reset", admin(adminHandler.Reset))
	mux.Handle("PUT /api/admin/master-password", admin(adminHandler.SetMasterPassword))
	mux.Handle("POST /api/admin/seed", admin(adminHandler.Seed))
	mux.Handle("GET /api/surveys", admin(surveysHandler.List))
	mux.Handle("GET /api/surveys/export", admin(surveysHandler.Export))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	return RecoveryMiddleware(mux)
}
