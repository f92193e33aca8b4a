package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"storefront/cmd/storefront/ui"
	"storefront/internal/admin"
	"storefront/internal/auth"
	"storefront/internal/config"
)

// adminCmd groups admin-only views
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin dashboard (ADMIN role required)",
}

var adminSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show inventory figures and low-stock products",
	RunE:  runAdminSummary,
}

// configCmd manages the config file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the config file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE:  runConfigInit,
}

var configForce bool

func init() {
	adminCmd.AddCommand(adminSummaryCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configShowCmd, configInitCmd)
}

func runAdminSummary(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Bootstrap(ctx); err != nil {
		return err
	}
	sum, err := a.AdminSummary()
	switch {
	case errors.Is(err, auth.ErrLoginRequired):
		return fmt.Errorf("not logged in: run 'storefront login' first")
	case errors.Is(err, auth.ErrForbidden):
		return fmt.Errorf("access denied: admin role required")
	case err != nil:
		return err
	}
	if _, msg, failed := a.State().Catalog.List.Err(); failed {
		return fmt.Errorf("%s", msg)
	}

	styles := ui.NewStyles(ui.ThemeNamed(a.Config().UI.Theme))
	low := admin.LowStock(a.State().Catalog.Products())
	fmt.Fprint(cmd.OutOrStdout(), ui.SummaryView(sum, low, styles))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if !configForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	cfg := config.DefaultConfig()
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
