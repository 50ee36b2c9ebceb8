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

	"github.com/productivitybrain/core/internal/app"
	"github.com/productivitybrain/core/internal/application/services"
	"github.com/productivitybrain/core/internal/application/summary"
	"github.com/productivitybrain/core/internal/application/ui"
	"github.com/productivitybrain/core/internal/infrastructure/config"
	"github.com/productivitybrain/core/internal/infrastructure/database"
	"github.com/productivitybrain/core/internal/infrastructure/logger"
)

// Build information, set with -ldflags
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "development"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Productivity Brain API server",
		Long:  "Start the HTTP API for the dispatch host together with the external change watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, false)
			if err != nil {
				return err
			}
			defer closeApp(a)

			a.Logger.Infow("Starting Productivity Brain API server",
				"port", a.Config.Server.Port,
				"environment", a.Config.App.Environment,
				"auth", a.Auth.Enabled(),
			)
			return a.Serve(ctx)
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage the key/value table migrations of the sqlite and postgres drivers (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(db *database.DB) error {
				if err := db.MigrateUp(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migration up completed successfully")
				return nil
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(db *database.DB) error {
				if err := db.MigrateDown(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migration down completed successfully")
				return nil
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(db *database.DB) error {
				status, err := db.MigrationVersion()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d\n", status.Version)
				fmt.Fprintf(cmd.OutOrStdout(), "Dirty: %t\n", status.Dirty)
				return nil
			})
		},
	})

	return migrateCmd
}

// NewToolsCommand creates the tools command for calling tools locally
func NewToolsCommand() *cobra.Command {
	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "List and call tools",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer closeApp(a)

			for _, t := range a.Tools.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", t.Name, t.Description)
			}
			return nil
		},
	}

	callCmd := &cobra.Command{
		Use:   "call <name>",
		Short: "Call a tool with JSON arguments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("args")
			format, _ := cmd.Flags().GetString("format")

			a, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer closeApp(a)

			out, err := a.Tools.Invoke(cmd.Context(), args[0], json.RawMessage(raw))
			if err != nil {
				return err
			}
			return writeValue(cmd.OutOrStdout(), format, out)
		},
	}
	callCmd.Flags().String("args", "{}", "Tool arguments as a JSON object")
	callCmd.Flags().String("format", FormatJSON, "Output format (json, yaml)")

	toolsCmd.AddCommand(listCmd, callCmd)
	return toolsCmd
}

// NewComponentsCommand creates the components command for rendering locally
func NewComponentsCommand() *cobra.Command {
	componentsCmd := &cobra.Command{
		Use:   "components",
		Short: "List and render components",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered components",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer closeApp(a)

			for _, c := range a.Components.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", c.Name, c.Description)
				for _, action := range c.Actions {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-18s %s\n", action.Name, action.Description)
				}
			}
			return nil
		},
	}

	renderCmd := &cobra.Command{
		Use:   "render <name>",
		Short: "Render a component with JSON props",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, _ := cmd.Flags().GetString("props")
			format, _ := cmd.Flags().GetString("format")

			a, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer closeApp(a)

			node, err := a.Components.Render(cmd.Context(), args[0], json.RawMessage(props))
			if err != nil {
				return err
			}
			if format == FormatText {
				return ui.RenderText(cmd.OutOrStdout(), node)
			}
			return writeValue(cmd.OutOrStdout(), format, node)
		},
	}
	renderCmd.Flags().String("props", "{}", "Component props as a JSON object")
	renderCmd.Flags().String("format", FormatText, "Output format (json, yaml, text)")

	componentsCmd.AddCommand(listCmd, renderCmd)
	return componentsCmd
}

// NewContextCommand creates the context command
func NewContextCommand() *cobra.Command {
	contextCmd := &cobra.Command{
		Use:   "context",
		Short: "Print the context summary sent with every dispatch request",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			a, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer closeApp(a)

			entries := summary.Collect(cmd.Context(), a.Store)
			if format == FormatText {
				for _, e := range entries {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", e.Key, e.Value)
				}
				return nil
			}
			return writeValue(cmd.OutOrStdout(), format, entries)
		},
	}
	contextCmd.Flags().String("format", FormatText, "Output format (json, yaml, text)")
	return contextCmd
}

// NewTokenCommand creates the token command
func NewTokenCommand() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the dispatch host",
		Long:  "Mint a bearer token signed with DISPATCH_API_KEY. Fails when the key is not set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")

			cfg, log, err := loadConfig(true)
			if err != nil {
				return err
			}
			defer log.Close()

			token, expires, err := services.NewAuthService(cfg.Dispatch, log).IssueToken(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expires.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}
	tokenCmd.Flags().String("subject", "dispatch-host", "Token subject")
	return tokenCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Productivity Brain version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Productivity Brain Core %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Build Date: %s\n", BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "Git Commit: %s\n", GitCommit)
		},
	}
}

// loadConfig reads configuration and builds the logger. CLI commands other
// than serve keep stdout for their own output.
func loadConfig(quiet bool) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if quiet && cfg.Logger.Output != "file" {
		cfg.Logger.Output = "stderr"
		if cfg.Logger.Level == "debug" || cfg.Logger.Level == "info" {
			cfg.Logger.Level = "warn"
		}
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

func bootstrap(ctx context.Context, quiet bool) (*app.App, error) {
	cfg, log, err := loadConfig(quiet)
	if err != nil {
		return nil, err
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return a, nil
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		a.Logger.Warnw("Failed to close application", "error", err)
	}
	a.Logger.Close()
}

func withDatabase(fn func(db *database.DB) error) error {
	cfg, log, err := loadConfig(true)
	if err != nil {
		return err
	}
	defer log.Close()

	db, err := app.OpenDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db)
}

func writeValue(w io.Writer, format string, v any) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return fmt.Errorf("unsupported format %q", format)
}
