package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse/internal/adapter/console"
	"github.com/rl1809/warehouse/internal/app"
	"github.com/rl1809/warehouse/internal/config"
)

const shutdownTimeout = 5 * time.Second

type rootFlags struct {
	driver string
	dsn    string
	user   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "warehouse",
		Short:         "Warehouse inventory and supplier management",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd.Context(), flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.driver, "driver", "", "database driver (mysql or sqlite), overrides WAREHOUSE_DB_DRIVER")
	root.PersistentFlags().StringVar(&flags.dsn, "dsn", "", "database DSN, overrides WAREHOUSE_DB_DSN")
	root.PersistentFlags().StringVar(&flags.user, "user", "", "admin username for non-interactive commands (default WAREHOUSE_ADMIN_USER)")

	root.AddCommand(
		newConsoleCmd(flags),
		newReportCmd(flags),
		newSchemaCmd(flags),
		newSeedCmd(flags),
	)
	return root
}

func newConsoleCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Start the interactive admin console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd.Context(), flags)
		},
	}
}

func newReportCmd(flags *rootFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:       "report <inventory|low-stock|suppliers|categories>",
		Short:     "Print a report",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"inventory", "low-stock", "suppliers", "categories"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := console.ParseReportKind(args[0])
			if err != nil {
				return err
			}
			f, err := console.ParseFormat(format)
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), flags, func(ctx context.Context, c *app.Container, svc *app.Services) error {
				return console.WriteReport(ctx, cmd.OutOrStdout(), svc.Reports, kind, f)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(console.FormatTable), "output format: table, csv or json")
	return cmd
}

func newSchemaCmd(flags *rootFlags) *cobra.Command {
	schema := &cobra.Command{
		Use:   "schema",
		Short: "Manage the database schema",
	}
	schema.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the suppliers and items tables if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), flags, func(ctx context.Context, c *app.Container, svc *app.Services) error {
				if err := c.Store().Bootstrap(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schema ready (%s)\n", c.Store().Driver())
				return nil
			})
		},
	})
	return schema
}

func newSeedCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a small demo dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), flags, func(ctx context.Context, c *app.Container, svc *app.Services) error {
				start := time.Now()
				result, err := app.Seed(ctx, svc)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "============ SEED RESULTS ============")
				fmt.Fprintf(out, "Suppliers:   %d\n", result.Suppliers)
				fmt.Fprintf(out, "Items added: %d\n", result.Added)
				fmt.Fprintf(out, "Failed:      %d\n", result.Failed)
				fmt.Fprintf(out, "Duration:    %v\n", time.Since(start).Round(time.Millisecond))
				fmt.Fprintln(out, "======================================")
				if result.Failed > 0 {
					return fmt.Errorf("%d demo items were not added", result.Failed)
				}
				return nil
			})
		},
	}
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if flags.driver != "" {
		cfg.Store.Driver = flags.driver
	}
	if flags.dsn != "" {
		cfg.Store.DSN = flags.dsn
	}
	if flags.user == "" {
		flags.user = cfg.AdminUser
	}
	return cfg, nil
}

// withServices builds the container, authenticates the admin and runs fn with
// a session-scoped service set.
func withServices(ctx context.Context, flags *rootFlags, fn func(context.Context, *app.Container, *app.Services) error) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	c, err := app.NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		c.Shutdown(shutdownCtx)
	}()

	sessionID := uuid.NewString()
	svc := c.NewServices(c.Logger().With(zap.String("session.id", sessionID)))

	password, err := adminPassword()
	if err != nil {
		return err
	}
	if err := svc.Auth.Login(flags.user, password); err != nil {
		return err
	}
	return fn(ctx, c, svc)
}

func adminPassword() (string, error) {
	if password := os.Getenv("WAREHOUSE_ADMIN_PASSWORD"); password != "" {
		return password, nil
	}
	p, err := console.NewReadlinePrompter()
	if err != nil {
		return "", err
	}
	defer p.Close()
	return p.Password("Password: ")
}

func runConsole(ctx context.Context, flags *rootFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	c, err := app.NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		c.Shutdown(shutdownCtx)
	}()

	prompter, err := console.NewReadlinePrompter()
	if err != nil {
		return err
	}
	defer prompter.Close()

	sessionID := uuid.NewString()
	logger := c.Logger().With(zap.String("session.id", sessionID))
	svc := c.NewServices(logger)

	con := console.New(console.Deps{
		Auth:      svc.Auth,
		Inventory: svc.Inventory,
		Suppliers: svc.Suppliers,
		Reports:   svc.Reports,
		Logger:    logger,
		Tracer:    c.Tracer(),
		SessionID: sessionID,
		Timeout:   cfg.OpTimeout,
	}, prompter, os.Stdout)

	logger.Info("console session started")
	err = con.Run(ctx)
	logger.Info("console session ended")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
