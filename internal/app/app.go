package app

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/synthetix-ai/drafter/internal/composer"
	"github.com/synthetix-ai/drafter/internal/composer/composerimpl"
	"github.com/synthetix-ai/drafter/internal/drafts"
	"github.com/synthetix-ai/drafter/internal/drafts/draftsimpl"
	_ "github.com/synthetix-ai/drafter/internal/migrations"
	"github.com/synthetix-ai/drafter/internal/notifier"
	"github.com/synthetix-ai/drafter/internal/notifier/notifierimpl"
	"github.com/synthetix-ai/drafter/internal/provider"
	"github.com/synthetix-ai/drafter/internal/provider/gemini"
	"github.com/synthetix-ai/drafter/internal/provider/openrouter"
	"github.com/synthetix-ai/drafter/internal/provider/puter"
	repositories "github.com/synthetix-ai/drafter/internal/repositories/fx"
	"github.com/synthetix-ai/drafter/internal/server"
	"github.com/synthetix-ai/drafter/pkg/config"
	"github.com/synthetix-ai/drafter/pkg/logger"
	"github.com/synthetix-ai/drafter/pkg/pgx"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
	),
	fx.Provide(
		fx.Annotate(
			puter.New,
			fx.As(new(provider.SessionClient)),
		),
		fx.Annotate(
			gemini.New,
			fx.As(new(provider.TextGenerator)),
			fx.ResultTags(`name:"gemini"`),
		),
		fx.Annotate(
			openrouter.New,
			fx.As(new(provider.TextGenerator)),
			fx.ResultTags(`name:"openrouter"`),
		),
		fx.Annotate(
			draftsimpl.New,
			fx.As(new(drafts.Manager)),
		),
		fx.Annotate(
			notifierimpl.New,
			fx.As(new(notifier.Client)),
		),
		fx.Annotate(
			composerimpl.New,
			fx.As(new(composer.Client)),
		),
		server.New,
	),
	repositories.Module,
	fx.Invoke(migrateUp),
	fx.Invoke(run),
)

func migrateUp(c *config.Config) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := sql.Open("postgres",
		fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
			c.Postgres.Name, c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode,
		),
	)
	if err != nil {
		return err
	}
	defer db.Close()

	// Migrations are registered by the internal/migrations package init.
	return goose.Up(db, ".")
}

func run(lc fx.Lifecycle, log logger.Logger, srv *server.Server, cmp composer.Client) {
	appCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.Serve(appCtx); err != nil {
					log.Error("Server failed", "error", err)
				}
			}()

			if err := cmp.ScheduleHistoryCleanup(appCtx); err != nil {
				log.Error("Failed to schedule history cleanup", "error", err)
			}

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			cmp.Close()
			return nil
		},
	})
}
