package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numguess/internal/config"
	"github.com/robalobadob/numguess/internal/db"
	"github.com/robalobadob/numguess/internal/httpserver"
	"github.com/robalobadob/numguess/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer sqlDB.Close()
	if err := db.Migrate(sqlDB); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	var sessions store.Store
	if cfg.RedisAddr != "" {
		rs, err := store.NewRedisStore(store.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SessionTTL,
		}, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
		}
		defer rs.Close()
		sessions = rs
		log.Info().Str("addr", cfg.RedisAddr).Msg("session store: redis")
	} else {
		sessions = store.NewMemoryStore(cfg.SessionTTL)
		log.Info().Dur("ttl", cfg.SessionTTL).Msg("session store: memory")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpserver.New(cfg, sessions, sqlDB)
	log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("starting numguess server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Error().Err(err).Msg("server exited")
		return
	}
	log.Info().Msg("server stopped")
}
