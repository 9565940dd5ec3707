package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"authz/internal/app"
	"authz/internal/config"
	"authz/internal/lib/handlers/slogpretty"
)

const (
	envLocal = "local"
	envProd  = "prod"
)

func main() {
	var (
		configPath string
		op         string
		owner      string
		ttlDays    int
		credential string
		recordID   string
		email      string
		role       string
		userType   string
	)

	flag.StringVar(&configPath, "config", "", "path to config file (or use CONFIG_PATH env)")
	flag.StringVar(&op, "op", "", "operation: issue | exchange | revoke | seed-user")
	flag.StringVar(&owner, "owner", "", "owner user id (issue, revoke)")
	flag.IntVar(&ttlDays, "ttl-days", 0, "refresh token lifetime in days (issue; 0 = config default)")
	flag.StringVar(&credential, "token", "", "refresh credential string (exchange)")
	flag.StringVar(&recordID, "id", "", "refresh record id (revoke)")
	flag.StringVar(&email, "email", "", "user email (seed-user)")
	flag.StringVar(&role, "role", "USER", "user role (seed-user)")
	flag.StringVar(&userType, "type", "USER", "user type (seed-user)")
	flag.Parse()

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	cfg := config.LoadConfig(configPath)
	logger := setupLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	application, err := app.New(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to initialize", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = application.Close(ctx) }()

	if ttlDays == 0 {
		ttlDays = cfg.Tokens.RefreshTokenTTLDays
	}

	switch op {
	case "issue":
		requireFlag(owner, "-owner")
		credential, err := application.Tokens.IssueRefresh(ctx, owner, ttlDays)
		exitOnErr(err)
		fmt.Println(credential)

	case "exchange":
		requireFlag(credential, "-token")
		accessToken, user, err := application.Tokens.ExchangeRefresh(ctx, credential)
		exitOnErr(err)
		fmt.Printf("user: %s <%s> role=%s type=%s\n", user.ID, user.Email, user.Role, user.Type)
		fmt.Println(accessToken)

	case "revoke":
		requireFlag(recordID, "-id")
		requireFlag(owner, "-owner")
		exitOnErr(application.Tokens.RevokeRefresh(ctx, recordID, owner))
		fmt.Println("revoked")

	case "seed-user":
		requireFlag(email, "-email")
		id, err := application.Storage.SaveUser(ctx, email, role, userType)
		exitOnErr(err)
		fmt.Println(id)

	default:
		fmt.Fprintln(os.Stderr, "unknown -op; expected issue, exchange, revoke or seed-user")
		os.Exit(2)
	}
}

func requireFlag(value, name string) {
	if value == "" {
		fmt.Fprintf(os.Stderr, "%s is required\n", name)
		os.Exit(2)
	}
}

func exitOnErr(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		panic("unknown environment: " + env)
	}
	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}
	h := opts.NewPrettyHandler(os.Stderr)

	return slog.New(h)
}
