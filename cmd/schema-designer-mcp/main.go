/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"schema-designer-mcp/internal/config"
	"schema-designer-mcp/internal/connections"
	"schema-designer-mcp/internal/crypto"
	"schema-designer-mcp/internal/logging"
	"schema-designer-mcp/internal/mcp"
	"schema-designer-mcp/internal/session"
	"schema-designer-mcp/internal/telemetry"
	"schema-designer-mcp/internal/tools"
)

var (
	configFile      string
	dataDir         string
	connectionsFile string
	secretFile      string
	watchConfig     bool
)

var rootCmd = &cobra.Command{
	Use:   "schema-designer-mcp",
	Short: "Schema Designer MCP Server - Database schema editing tools for AI agents",
	Long: `schema-designer-mcp exposes a database schema designer and its Data API
Builder configuration as MCP tools over stdio.

Agents open a designer for a saved connection, read bounded views of the
schema, and apply ordered edit batches guarded by optimistic concurrency
version tokens, so they can cooperate safely with a human editing the same
diagram.`,
	RunE: runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"Local state directory (default: ~/.schema-designer-mcp)")
	rootCmd.PersistentFlags().StringVar(&connectionsFile, "connections-file", "",
		"Saved connections YAML file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&secretFile, "secret-file", "",
		"Encryption key file for connection credentials (overrides config)")
	rootCmd.Flags().BoolVar(&watchConfig, "watch-config", false,
		"Reload the configuration file when it changes on disk")

	rootCmd.AddCommand(connectionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func cliFlags() config.CLIFlags {
	return config.CLIFlags{
		DataDir:         dataDir,
		ConnectionsFile: connectionsFile,
		SecretFile:      secretFile,
	}
}

// openConnectionStore loads the encryption key and the saved-connections
// store described by the configuration, creating both on first use.
func openConnectionStore(cfg *config.Config) (*connections.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	key, err := crypto.LoadOrCreateKey(cfg.SecretFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load encryption key: %w", err)
	}
	store, err := connections.NewStore(cfg.ConnectionsFile, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load connections: %w", err)
	}
	return store, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := config.LoadConfig(configFile, cliFlags())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if watchConfig && configFile != "" {
		reloadable := config.NewReloadableConfig(cfg, configFile, cliFlags())
		if err := config.Watch(ctx, reloadable); err != nil {
			logging.Warn("config watcher unavailable", "error", err.Error())
		}
	}

	connStore, err := openConnectionStore(cfg)
	if err != nil {
		return err
	}

	var sink telemetry.Sink = telemetry.Nop{}
	if cfg.Telemetry.Enabled {
		store, err := telemetry.NewStore(cfg.DataDir)
		if err != nil {
			// The server is still useful without local telemetry
			logging.Warn("telemetry store unavailable", "error", err.Error())
		} else {
			sink = store
			defer func() {
				if err := store.Close(); err != nil {
					logging.Warn("failed to close telemetry store", "error", err.Error())
				}
			}()
		}
	}

	deps := tools.Deps{
		Registry:    session.NewRegistry(),
		Connections: connStore,
		Telemetry:   sink,
	}

	toolRegistry := tools.NewRegistry()
	toolRegistry.Register("list_database_connections", tools.ListDatabaseConnectionsTool(deps))
	toolRegistry.Register("open_schema_designer", tools.OpenSchemaDesignerTool(deps))
	toolRegistry.Register("get_schema_designer_state", tools.GetSchemaDesignerStateTool(deps))
	toolRegistry.Register("apply_schema_designer_edits", tools.ApplySchemaDesignerEditsTool(deps))
	toolRegistry.Register("get_dab_config", tools.GetDabConfigTool(deps))
	toolRegistry.Register("apply_dab_config_changes", tools.ApplyDabConfigChangesTool(deps))

	logging.Info("server starting",
		"tools", len(toolRegistry.List()),
		"connections", connStore.Count())

	server := mcp.NewServer(toolRegistry)
	if err := server.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return err
	}
	return nil
}
