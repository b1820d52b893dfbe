// Command seed creates a subject directly in the credential store. It is the only way to
// create administrator and center_manager accounts.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/academy-auth/internal/auth"
	"github.com/spec-kit/academy-auth/internal/config"
	"github.com/spec-kit/academy-auth/internal/domain"
	"github.com/spec-kit/academy-auth/internal/observability"
	"github.com/spec-kit/academy-auth/internal/persistence"
	"github.com/spec-kit/academy-auth/internal/repository"
	"github.com/spec-kit/academy-auth/internal/service"
)

type seedOptions struct {
	Email  string
	Secret string
	Roles  []domain.Role
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Getenv)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(context.Background(), cfg, opts, logger); err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
}

func parseFlags(args []string, getenv func(string) string) (seedOptions, error) {
	var (
		opts  seedOptions
		roles []string
	)
	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVar(&opts.Email, "email", "", "email of the subject to create")
	flagSet.StringVar(&opts.Secret, "secret", "", "initial secret (default: $SEED_SECRET)")
	flagSet.StringSliceVar(&roles, "roles", []string{string(domain.RoleAdministrator)}, "comma separated roles")

	if err := flagSet.Parse(args); err != nil {
		return opts, err
	}
	if opts.Secret == "" {
		opts.Secret = getenv("SEED_SECRET")
	}
	if strings.TrimSpace(opts.Email) == "" {
		return opts, errors.New("--email is required")
	}
	if opts.Secret == "" {
		return opts, errors.New("--secret or SEED_SECRET is required")
	}
	for _, r := range roles {
		role := domain.Role(strings.TrimSpace(r))
		if !role.Valid() {
			return opts, fmt.Errorf("unknown role %q", r)
		}
		opts.Roles = append(opts.Roles, role)
	}
	return opts, nil
}

func run(ctx context.Context, cfg *config.Config, opts seedOptions, logger *zap.Logger) error {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
		return err
	}

	svc, err := service.NewAuthService(*cfg, service.AuthDependencies{
		SubjectRepo: repository.NewSubjectRepository(pg.PoolHandle()),
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	subject, err := svc.CreateSubject(ctx, opts.Email, opts.Secret, opts.Roles)
	if errors.Is(err, auth.ErrConflict) {
		logger.Info("subject already exists", zap.String("email", domain.NormalizeEmail(opts.Email)))
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("subject created",
		zap.String("subject_id", subject.ID),
		zap.String("email", subject.Email),
		zap.Any("roles", subject.Roles))
	return nil
}
