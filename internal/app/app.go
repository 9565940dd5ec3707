package app

import (
	"context"
	"fmt"
	"log/slog"

	"authz/internal/config"
	"authz/internal/lib/jwt"
	"authz/internal/services/tokens"
	"authz/internal/storage/mongodb"
	"authz/internal/storage/postgres"
	"authz/internal/storage/sqlite"
)

// Storage is the union of what the token service needs from a backend plus
// the provisioning helper the tooling uses. All three backends satisfy it.
type Storage interface {
	tokens.RefreshTokenStore
	tokens.UserProvider
	SaveUser(ctx context.Context, email, role, userType string) (string, error)
}

type App struct {
	Tokens  *tokens.Service
	Storage Storage

	closeFn func(ctx context.Context) error
}

// New wires the configured storage backend, the signing engine and the token
// service together.
func New(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	var (
		store   Storage
		closeFn func(ctx context.Context) error
	)

	switch cfg.Storage.Type {
	case "sqlite":
		s, err := sqlite.New(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		store = s
		closeFn = func(context.Context) error { return s.Close() }
	case "postgres":
		s, err := postgres.New(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		store = s
		closeFn = func(context.Context) error { return s.Close() }
	case "mongo":
		s, err := mongodb.New(ctx, cfg.Storage.Mongo.URI, cfg.Storage.Mongo.Database)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		store = s
		closeFn = s.Close
	default:
		return nil, fmt.Errorf("%s: unknown storage type %q", op, cfg.Storage.Type)
	}

	signer, err := jwt.NewSigner(cfg.Tokens.Secret, cfg.Tokens.Issuer, cfg.Tokens.Audience)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	issuer := tokens.NewAccessIssuer(signer, cfg.Tokens.AccessTokenTTL)
	service := tokens.New(logger, signer, issuer, store, store, cfg.Tokens.RefreshEnvelopeTTL)

	return &App{
		Tokens:  service,
		Storage: store,
		closeFn: closeFn,
	}, nil
}

func (a *App) Close(ctx context.Context) error {
	if a.closeFn == nil {
		return nil
	}
	return a.closeFn(ctx)
}
