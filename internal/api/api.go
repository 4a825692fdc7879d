package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	"credvault/internal/api/gateway"
	requestlog "credvault/internal/api/middleware/logger"
	"credvault/internal/domain/credential"
	"credvault/internal/domain/session"
)

// NewRouter builds the chi mux with every gateway operation registered
// through huma.Register.
func NewRouter(
	sessions session.Servicer,
	credentials credential.Servicer,
	log *slog.Logger,
) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("CredVault Gateway API", "1.0.0")
	humaAPI := humachi.New(mux, config)

	mws := huma.Middlewares{requestlog.New(log).Middleware()}

	handler := gateway.NewHandler(sessions, credentials, log, mws)
	handler.SetupRoutes(humaAPI)

	return mux
}
