// Package httpapi exposes the service layer as named JSON operations over
// HTTP and hosts the request-level auth gateway.
package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/velotrans/tms/internal/logging"
	"github.com/velotrans/tms/internal/server/auth"
	"github.com/velotrans/tms/internal/server/models"
	"github.com/velotrans/tms/internal/server/repositories/shipments"
	"github.com/velotrans/tms/internal/server/services"
)

// AuthService is the slice of the auth service the API consumes.
type AuthService interface {
	Register(ctx context.Context, email, password, role string) (*services.Credentials, error)
	Login(ctx context.Context, email, password string) (*services.Credentials, error)
	Refresh(ctx context.Context, refreshToken string) (*services.Credentials, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID string) error
	Me(ctx context.Context, userID string) (*models.User, error)
	VerifyAccessToken(token string) *auth.Claims
}

// ShipmentService is the slice of the shipment service the API consumes.
type ShipmentService interface {
	List(ctx context.Context, claims *auth.Claims, f shipments.Filter) ([]*models.Shipment, int64, error)
	Get(ctx context.Context, claims *auth.Claims, id string) (*models.Shipment, error)
	Stats(ctx context.Context, claims *auth.Claims) (map[models.ShipmentStatus]int64, error)
	Create(ctx context.Context, claims *auth.Claims, in services.ShipmentInput) (*models.Shipment, error)
	Update(ctx context.Context, claims *auth.Claims, id string, patch services.ShipmentPatch) (*models.Shipment, error)
}

type Server struct {
	address    string
	logger     logging.Logger
	auth       AuthService
	shipments  ShipmentService
	db         *sql.DB
	production bool
}

func NewServer(address string, logger logging.Logger, authSvc AuthService, shipmentSvc ShipmentService, db *sql.DB, production bool) *Server {
	return &Server{
		address:    address,
		logger:     logger.With("module", "http_server"),
		auth:       authSvc,
		shipments:  shipmentSvc,
		db:         db,
		production: production,
	}
}

// Router assembles the chi router. Every /api route passes through the auth
// gateway; authorization itself happens per operation in the services.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/logout", s.handleLogout)
		r.Post("/logout-all", s.handleLogoutAll)
		r.Get("/me", s.handleMe)

		r.Route("/shipments", func(r chi.Router) {
			r.Get("/", s.handleListShipments)
			r.Post("/", s.handleCreateShipment)
			r.Get("/stats", s.handleShipmentStats)
			r.Get("/{id}", s.handleGetShipment)
			r.Patch("/{id}", s.handleUpdateShipment)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.address, Handler: s.Router()}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "stopping http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "starting http server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
