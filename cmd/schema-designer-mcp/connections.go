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
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"schema-designer-mcp/internal/config"
	"schema-designer-mcp/internal/connections"
)

var (
	connName     string
	connServer   string
	connDatabase string
	connUser     string
)

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "Manage saved database connections",
}

var connectionsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a new database connection",
	RunE:  addConnectionCommand,
}

var connectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved database connections",
	RunE:  listConnectionsCommand,
}

var connectionsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a saved database connection by id",
	Args:  cobra.ExactArgs(1),
	RunE:  removeConnectionCommand,
}

func init() {
	connectionsAddCmd.Flags().StringVar(&connName, "name", "", "Display name for the connection")
	connectionsAddCmd.Flags().StringVar(&connServer, "server", "", "Database server host")
	connectionsAddCmd.Flags().StringVar(&connDatabase, "database", "", "Database name")
	connectionsAddCmd.Flags().StringVar(&connUser, "user", "", "Login user")

	connectionsCmd.AddCommand(connectionsAddCmd)
	connectionsCmd.AddCommand(connectionsListCmd)
	connectionsCmd.AddCommand(connectionsRemoveCmd)
}

func loadStore() (*connections.Store, error) {
	cfg, err := config.LoadConfig(configFile, cliFlags())
	if err != nil {
		return nil, err
	}
	return openConnectionStore(cfg)
}

func promptLine(label string) (string, error) {
	fmt.Printf("%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// promptPassword reads a password without echo, with confirmation
func promptPassword() (string, error) {
	fmt.Print("Enter password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := string(passwordBytes)
	if password == "" {
		return "", fmt.Errorf("password is required")
	}

	fmt.Print("Confirm password: ")
	confirmBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password confirmation: %w", err)
	}
	if password != string(confirmBytes) {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}

func addConnectionCommand(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	store, err := loadStore()
	if err != nil {
		return err
	}

	for _, field := range []struct {
		value *string
		label string
	}{
		{&connName, "Connection name"},
		{&connServer, "Server"},
		{&connDatabase, "Database"},
		{&connUser, "User"},
	} {
		if *field.value == "" {
			input, err := promptLine(field.label)
			if err != nil {
				return err
			}
			if input == "" {
				return fmt.Errorf("%s is required", strings.ToLower(field.label))
			}
			*field.value = input
		}
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}

	id, err := store.Add(connName, connServer, connDatabase, connUser, password)
	if err != nil {
		return fmt.Errorf("failed to save connection: %w", err)
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("Connection saved successfully!")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("\nID:       %s\n", id)
	fmt.Printf("Name:     %s\n", connName)
	fmt.Printf("Server:   %s\n", connServer)
	fmt.Printf("Database: %s\n", connDatabase)
	fmt.Printf("User:     %s\n", connUser)
	fmt.Println(strings.Repeat("=", 70) + "\n")
	return nil
}

func listConnectionsCommand(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	store, err := loadStore()
	if err != nil {
		return err
	}

	saved := store.List()
	if len(saved) == 0 {
		fmt.Println("No saved connections.")
		return nil
	}

	fmt.Printf("%-38s %-20s %-24s %s\n", "ID", "NAME", "SERVER", "DATABASE")
	for _, conn := range saved {
		fmt.Printf("%-38s %-20s %-24s %s\n", conn.ID, conn.Name, conn.Server, conn.Database)
	}
	return nil
}

func removeConnectionCommand(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	store, err := loadStore()
	if err != nil {
		return err
	}

	if err := store.Remove(args[0]); err != nil {
		return fmt.Errorf("failed to remove connection: %w", err)
	}
	fmt.Printf("Removed connection %s\n", args[0])
	return nil
}
