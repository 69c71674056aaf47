package providers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/khatmahq/khatma-server/internal/api"
	"github.com/khatmahq/khatma-server/internal/config"
	"github.com/khatmahq/khatma-server/internal/logger"
	"github.com/khatmahq/khatma-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := api.Services{
		Auth:     do.MustInvoke[*service.AuthService](i),
		Session:  do.MustInvoke[*service.SessionService](i),
		User:     do.MustInvoke[*service.UserService](i),
		Journey:  do.MustInvoke[*service.JourneyService](i),
		Reading:  do.MustInvoke[*service.ReadingService](i),
		Progress: do.MustInvoke[*service.ProgressService](i),
		Stats:    do.MustInvoke[*service.StatsService](i),
		Invite:   do.MustInvoke[*service.InviteService](i),
	}

	server := api.NewServer(storeHandle.Store, services, cfg.Server.CORSOrigins, log.Logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: httpServer}, nil
}
