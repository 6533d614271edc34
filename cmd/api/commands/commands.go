package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shoplist/core/internal/domain/entities"
	"github.com/shoplist/core/internal/infrastructure/config"
	"github.com/shoplist/core/internal/infrastructure/logger"
	"github.com/shoplist/core/internal/infrastructure/server"
	"github.com/shoplist/core/internal/infrastructure/storage"
)

// Version is stamped at build time with -ldflags
var Version = "dev"

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the shopping list API server",
		Long:  "Start the shopping list API server with the configured storage backend, routes and middleware",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

// NewStoreCommand creates the JSON document store command
func NewStoreCommand() *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "JSON document store commands",
	}

	storeCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the JSON document with an empty item list if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != config.StorageJSON {
				return fmt.Errorf("store init requires the json storage driver, got %q", cfg.Storage.Driver)
			}

			st, err := storage.Open(cmd.Context(), cfg, logger.NewNop())
			if err != nil {
				return err
			}
			defer st.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Document ready at %s\n", st.Documents.Path())
			return nil
		},
	})

	return storeCmd
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version) for the postgres and sqlite storage drivers",
	}

	for _, direction := range []string{"up", "down"} {
		direction := direction
		migrateCmd.AddCommand(&cobra.Command{
			Use:   direction,
			Short: fmt.Sprintf("Run all %s migrations", direction),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}

				changed, err := storage.Migrate(cfg, direction)
				if err != nil {
					return err
				}

				if changed {
					fmt.Fprintf(cmd.OutOrStdout(), "Migration %s completed successfully\n", direction)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "No migrations to run")
				}
				return nil
			},
		})
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			version, dirty, err := storage.MigrationVersion(cfg)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Dirty: %t\n", dirty)
			return nil
		},
	})

	return migrateCmd
}

// NewItemsCommand creates the items command
func NewItemsCommand() *cobra.Command {
	itemsCmd := &cobra.Command{
		Use:   "items",
		Short: "Shopping item commands",
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Print every item from the configured storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			st, err := storage.Open(cmd.Context(), cfg, logger.NewNop())
			if err != nil {
				return err
			}
			defer st.Close()

			items, err := st.Items.List(cmd.Context())
			if err != nil {
				return err
			}

			return writeItems(cmd.OutOrStdout(), format, items)
		},
	}
	exportCmd.Flags().String("format", "json", "Output format (json, yaml)")

	itemsCmd.AddCommand(exportCmd)
	return itemsCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Shopping List API %s\n", Version)
		},
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func writeItems(w io.Writer, format string, items []*entities.Item) error {
	doc := entities.Document{Items: items}
	if doc.Items == nil {
		doc.Items = []*entities.Item{}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]interface{}{"items": doc.Items}); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	st, err := storage.Open(ctx, cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Errorw("Failed to open storage")
		return err
	}
	defer st.Close()

	srv, err := server.New(cfg, st.Items, appLogger)
	if err != nil {
		appLogger.WithError(err).Errorw("Failed to initialize server")
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		appLogger.Infow("Starting shopping list API server",
			"address", cfg.Server.GetAddr(),
			"environment", cfg.App.Environment,
			"storage", cfg.Storage.Driver,
		)
		errCh <- srv.Start(cfg.Server.GetAddr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.WithError(err).Errorw("Server failed")
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Errorw("Graceful shutdown failed")
		return err
	}

	appLogger.Infow("Server stopped")
	return nil
}
