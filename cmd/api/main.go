package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/shoplist/core/cmd/api/commands"
)

// @title Shopping List API
// @version 1.0
// @description CRUD API over a list of shopping items

// @host localhost:5001
// @BasePath /api

func main() {
	rootCmd := &cobra.Command{
		Use:           "shoplist",
		Short:         "Shopping List API Server",
		Long:          `Shopping List is a small REST API that keeps shopping items in a JSON document, SQLite or PostgreSQL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a config file (yaml, json, toml)")

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewStoreCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewItemsCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
