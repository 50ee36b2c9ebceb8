package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/productivitybrain/core/cmd/api/commands"
)

// @title Productivity Brain API
// @version 1.0
// @description Tools and components served to the dispatch host

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the dispatch token.

func main() {
	rootCmd := &cobra.Command{
		Use:           "brain",
		Short:         "Productivity Brain API Server",
		Long:          `Productivity Brain keeps tasks, calendar events, notes, goals, habits and focus sessions, and serves them to a dispatch host as named tools and renderable components.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewToolsCommand())
	rootCmd.AddCommand(commands.NewComponentsCommand())
	rootCmd.AddCommand(commands.NewContextCommand())
	rootCmd.AddCommand(commands.NewTokenCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
