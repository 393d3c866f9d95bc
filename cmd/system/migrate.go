package system

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/clinicbook/config"
	"github.com/Alijeyrad/clinicbook/pkg/authorize"
	"github.com/Alijeyrad/clinicbook/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and write the default RBAC policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			if timeout <= 0 {
				timeout = time.Minute
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			fmt.Println("Running migrations for the booking database.")
			pool, err := database.NewPool(ctx, database.FromCentralConfig(cfg.Database))
			if err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}
			defer pool.Close()

			if err := database.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			if path := cfg.Authorization.PolicyPath; path != "" {
				fmt.Println("Writing default RBAC policies.")
				if err := writePolicies(ctx, cfg.Authorization); err != nil {
					return fmt.Errorf("failed to write policies: %w", err)
				}
			}

			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	return cmd
}

// writePolicies merges the default policies into the configured policy file,
// creating it when missing. Rows already in the file are kept.
func writePolicies(ctx context.Context, c config.AuthorizationConfig) error {
	path := c.PolicyPath
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return err
		}
	}

	enforcer, err := authorize.NewEnforcer(authorize.FromCentralConfig(c))
	if err != nil {
		return err
	}
	auth, err := authorize.NewAuthorization(enforcer)
	if err != nil {
		return err
	}

	slog.Info("Seeding Casbin policies...", "path", path)
	if err := authorize.SeedDefaultPolicies(ctx, auth); err != nil {
		return err
	}
	return authorize.SavePolicies(auth)
}
