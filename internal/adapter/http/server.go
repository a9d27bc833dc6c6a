package adapthttp

import (
	"log/slog"
	"net/http"

	"espresso/internal/app"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	machine     *app.MachineService
	production  *app.ProductionService
	authSvc     *app.AuthService
	oidcConfig  OIDCConfig
	logger      *slog.Logger
	disableAuth bool
}

// New creates a Server wired to the given application services.
func New(ms *app.MachineService, ps *app.ProductionService, as *app.AuthService, oidcConfig OIDCConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		machine:    ms,
		production: ps,
		authSvc:    as,
		oidcConfig: oidcConfig,
		logger:     logger,
	}
}

// WithoutAuth disables authentication checks (for tests).
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/auth/config", s.handleConfig)
	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/setup", s.handleSetupOperator)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	protected := http.NewServeMux()
	protected.HandleFunc("/machine/status", s.handleMachineStatus)
	protected.HandleFunc("/machine/espresso", s.handleBrew(app.SizeSingle))
	protected.HandleFunc("/machine/double-espresso", s.handleBrew(app.SizeDouble))
	protected.HandleFunc("/machine/descale", s.handleDescale)
	protected.HandleFunc("/machine/water", s.handleAddWater)
	protected.HandleFunc("/machine/beans", s.handleAddBeans)
	protected.HandleFunc("/machine/events", s.handleMachineEvents)
	protected.HandleFunc("/production/daily", s.handleProductionDaily)

	guarded := s.authMiddleware(protected)
	api.Handle("/machine/", guarded)
	api.Handle("/production/", guarded)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	return requestIDMiddleware(s.loggingMiddleware(withNoCache(root)))
}
