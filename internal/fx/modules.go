package fx

import (
	"clash-hub/internal/api"
	"clash-hub/internal/config"
	"clash-hub/internal/database"
	"clash-hub/internal/logger"
	"clash-hub/internal/prefs"
	"clash-hub/internal/repository"
	"clash-hub/internal/server"
	"clash-hub/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideRoyaleAPI(c *api.Client) service.RoyaleAPI {
	return c
}

func ProvideRelayer(c *api.Client) server.Relayer {
	return c
}

func ProvidePrefsStorage(r *repository.PrefsRepository) prefs.Storage {
	return r
}

func ProvideSounder(log zerolog.Logger) prefs.Sounder {
	return prefs.LogSounder{Logger: log}
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewClanRepository),
	fx.Provide(repository.NewBattleRepository),
	fx.Provide(repository.NewPrefsRepository),
	// api client
	fx.Provide(api.NewClient),
	fx.Provide(ProvideRoyaleAPI),
	fx.Provide(ProvideRelayer),
	// prefs
	fx.Provide(ProvidePrefsStorage),
	fx.Provide(ProvideSounder),
	fx.Provide(prefs.NewStore),
	// svc
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewBattleService),
	fx.Provide(service.NewClanService),
	// server
	fx.Provide(server.New),
)
