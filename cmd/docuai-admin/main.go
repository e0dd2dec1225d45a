package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"docuai/internal/repository"
	"docuai/internal/seed"
	"docuai/internal/service"
	"docuai/pkg/config"
	"docuai/pkg/logger"
	"docuai/pkg/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newRootCommand().ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// env is the shared state every subcommand opens before running.
type env struct {
	cfg    *config.Config
	db     *pgxpool.Pool
	logger *zap.Logger
}

func open(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(cfg.Logger.Level); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.Get()

	db, err := postgres.NewPool(ctx, &cfg.Database, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, logger: log}, nil
}

func (e *env) adminService() *service.AdminService {
	return service.NewAdminService(
		repository.NewTemplateRepository(e.db, e.logger),
		repository.NewDesignTemplateRepository(e.db, e.logger),
		repository.NewBrandSettingsRepository(e.db, e.logger),
		repository.NewUserRepository(e.db, e.logger),
		repository.NewDocumentRepository(e.db, e.logger),
		repository.NewUsageRepository(e.db, e.logger),
		e.logger,
	)
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "docuai-admin",
		Short:         "Operational tasks for the DocuAI service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSeedCommand())
	cmd.AddCommand(newPromoteCommand())
	cmd.AddCommand(newSweepCommand())
	return cmd
}

// withEnv opens config, logger and database around fn.
func withEnv(fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer e.db.Close()
		return fn(cmd, args, e)
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			return postgres.Migrate(cmd.Context(), e.db, e.logger)
		}),
	}
}

func newSeedCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Upsert templates, design presets and branding from a YAML file",
		Long: `Upsert the template catalog, design presets and tenant branding.

Entries are matched by name, so the same file can be applied repeatedly.
See seed.example.yaml for the format.`,
		Args: cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			f, err := seed.Load(args[0])
			if err != nil {
				return err
			}
			if migrate {
				if err := postgres.Migrate(cmd.Context(), e.db, e.logger); err != nil {
					return err
				}
			}

			res, err := seed.Apply(cmd.Context(), e.adminService(), f, e.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "templates: %d created, %d updated\ndesigns: %d created, %d updated\nbranding: %t\n",
				res.TemplatesCreated, res.TemplatesUpdated, res.DesignsCreated, res.DesignsUpdated, res.Branding)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before seeding")
	return cmd
}

func newPromoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <email>",
		Short: "Grant the ADMIN role to an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			u, err := e.adminService().PromoteByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", u.Email, u.ID, u.Role)
			return nil
		}),
	}
}

func newSweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Fail documents stuck in PROCESSING longer than GENERATION_STUCK_AFTER",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			docs := repository.NewDocumentRepository(e.db, e.logger)
			d := service.NewDispatcher(nil, nil, docs, service.DispatcherOptions{
				StuckAfter: e.cfg.Generation.StuckAfter,
			}, e.logger)

			n, err := d.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d stuck documents marked FAILED\n", n)
			return nil
		}),
	}
}
