package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/toronto-opendata/auth-service/internal/api"
	"github.com/toronto-opendata/auth-service/internal/core/domain"
	"github.com/toronto-opendata/auth-service/internal/core/service"
	"github.com/toronto-opendata/auth-service/internal/infrastructure/config"
	mongostore "github.com/toronto-opendata/auth-service/internal/infrastructure/db/mongo"
	redisstore "github.com/toronto-opendata/auth-service/internal/infrastructure/db/redis"
	"github.com/toronto-opendata/auth-service/internal/infrastructure/queue"
	"github.com/toronto-opendata/auth-service/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{})
		l := logger.Get()
		l.Fatal().Err(err).Msg("configuration load failed")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// A missing or weak signing secret must stop the process here, never
	// surface per request.
	tokens, err := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token service misconfigured")
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	userRepo := mongostore.NewUserRepository(db)
	roleRepo := mongostore.NewRoleRepository(db)
	permRepo := mongostore.NewPermissionRepository(db)
	for _, repo := range []interface {
		EnsureIndexes(context.Context) error
	}{userRepo, roleRepo, permRepo} {
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("index creation failed")
		}
	}

	if err := seedRoles(ctx, roleRepo, log); err != nil {
		log.Fatal().Err(err).Msg("role seeding failed")
	}

	auditRepo := mongostore.NewAuditRepository(db)
	auditService := service.NewAuditService(auditRepo, log)
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, auditService, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(db, rdb, tokens, dispatcher, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting auth service")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

// seedRoles makes sure the built-in USER and ADMIN roles exist so the
// registration default always resolves.
func seedRoles(ctx context.Context, roles *mongostore.RoleRepository, log zerolog.Logger) error {
	now := time.Now().UTC()
	for _, name := range []string{domain.DefaultRoleName, "ADMIN"} {
		if _, err := roles.FindByName(ctx, name); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrRoleNotFound) {
			return err
		}

		role := &domain.Role{
			Name:          name,
			Description:   "built-in " + name + " role",
			PermissionIDs: []string{},
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if _, err := roles.Create(ctx, role); err != nil {
			// A concurrent replica may have seeded it first.
			if errors.Is(err, domain.ErrDuplicateRole) {
				continue
			}
			return err
		}
		log.Info().Str("role", name).Msg("seeded built-in role")
	}
	return nil
}
