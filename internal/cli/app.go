// Package cli implements the interactive shell of the receipt manager.
// It is a thin surface over the services; all engine behavior lives there.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/dmribeiro/recibox/internal/config"
	"github.com/dmribeiro/recibox/internal/logging"
	"github.com/dmribeiro/recibox/internal/remote"
	"github.com/dmribeiro/recibox/internal/repositories"
	"github.com/dmribeiro/recibox/internal/repositories/contracts"
	"github.com/dmribeiro/recibox/internal/services"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config     *config.Config
	db         *sql.DB
	documents  services.DocumentService
	auth       services.AuthService
	contracts  contracts.Repository
	reconciler *services.Reconciler
	primary    *remote.Primary
	logger     logging.Logger
	reader     *bufio.Reader
	Mode       Mode
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	db, repos, err := repositories.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	tokenProvider := services.NewTokenProvider(repos.Metadata)
	primary := remote.NewPrimary(c.PrimaryBaseURL, c.RemoteTimeout, tokenProvider, logger)
	secondary := remote.NewSecondary(c.SecondaryBaseURL, c.RemoteTimeout, logger)

	auth := services.NewAuthService(primary, repos.Metadata, logger)

	genOpts := services.GeneratorOptions{
		DefaultPaymentMethod: c.DefaultPaymentMethod,
		LookaheadDays:        c.LookaheadDays,
	}
	reconciler := services.NewReconciler(repos.Documents, repos.Contracts, primary, secondary, genOpts, logger)
	documents := services.NewDocumentService(db, repos.Documents, repos.Tombstones, primary, secondary, auth, logger)

	return &App{
		config:     c,
		db:         db,
		documents:  documents,
		auth:       auth,
		contracts:  repos.Contracts,
		reconciler: reconciler,
		primary:    primary,
		logger:     logger,
		reader:     bufio.NewReader(os.Stdin),
		Mode:       ModeOffline,
	}, nil
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Info(ctx, "connectivity changed", "mode", mode)
	}
}

// Run starts the shell. The local cache is served right away; the first
// reconciliation pass runs in the background so startup never blocks on the
// network.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	go func() {
		if _, err := a.reconciler.Run(ctx); err != nil {
			a.logger.Error(ctx, "initial reconciliation failed", "error", err)
		}
	}()
	go a.StartOnlineStatusWatcher(ctx, a.config.ProbeInterval)

	a.Root(ctx)
}

// StartOnlineStatusWatcher periodically probes the primary store and flips
// the online/offline mode indicator.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			online := a.primary.ProbeAvailability(probeCtx)
			cancel()

			if online {
				a.setMode(ctx, ModeOnline)
			} else {
				a.setMode(ctx, ModeOffline)
			}

		case <-ctx.Done():
			return
		}
	}
}
