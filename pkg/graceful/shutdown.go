package graceful

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corebank-service/corebank_service/pkg/logger"
)

// Shutdowner is implemented by components that need an orderly stop.
type Shutdowner interface {
	Shutdown(timeout time.Duration) error
}

// ShutdownManager drains the HTTP server and closes shared resources on
// SIGINT/SIGTERM.
type ShutdownManager struct {
	server      *http.Server
	db          *sql.DB
	shutdowners []Shutdowner
	logger      *logger.Logger
}

func NewShutdownManager(server *http.Server, db *sql.DB, logger *logger.Logger) *ShutdownManager {
	return &ShutdownManager{
		server:      server,
		db:          db,
		shutdowners: make([]Shutdowner, 0),
		logger:      logger,
	}
}

// Register adds a component to stop before the server drains.
func (sm *ShutdownManager) Register(s Shutdowner) {
	sm.shutdowners = append(sm.shutdowners, s)
}

// WaitForShutdown blocks until a termination signal arrives, then stops
// registered components, the HTTP server, and the database pool.
func (sm *ShutdownManager) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sm.logger.Info("Shutting down gracefully...")

	timeout := 30 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, s := range sm.shutdowners {
		if err := s.Shutdown(timeout); err != nil {
			sm.logger.Warn("Component shutdown error", "error", err)
		}
	}

	if err := sm.server.Shutdown(ctx); err != nil {
		sm.logger.Error("Server forced shutdown", "error", err)
	}

	if err := sm.db.Close(); err != nil {
		sm.logger.Warn("Database close error", "error", err)
	}

	sm.logger.Info("Shutdown complete")
}
