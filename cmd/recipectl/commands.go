package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"recipeapi/internal/config"
	"recipeapi/internal/db"
	"recipeapi/internal/dbwait"
	"recipeapi/internal/logger"
	"recipeapi/internal/repository"
	"recipeapi/internal/service"
)

// app carries what every subcommand needs. openDB blocks until the
// database is reachable.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	out    io.Writer
	openDB func() *gorm.DB
}

func newApp() *app {
	cfg := config.Load()
	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Format:      cfg.LogFormat,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	return &app{
		cfg: cfg,
		log: log,
		out: os.Stdout,
		openDB: func() *gorm.DB {
			return db.WaitForMySQL(cfg.MySQLDSN, dbwait.New(cfg.DBWaitInterval, log))
		},
	}
}

func rootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "recipectl",
		Short:         "Recipe API administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		waitForDBCmd(a),
		migrateCmd(a),
		createSuperuserCmd(a),
		seedCmd(a),
	)
	return cmd
}

func waitForDBCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "wait-for-db",
		Short: "Block until the database accepts connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.openDB()
			return nil
		},
	}
}

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.Migrate(a.openDB()); err != nil {
				return err
			}
			a.log.Info("migrations applied")
			return nil
		},
	}
}

func createSuperuserCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create-superuser",
		Short: "Create a staff user with superuser rights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users := service.NewUserService(repository.NewUserRepository(a.openDB()), nil)
			user, err := users.CreateSuperuser(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("create superuser: %w", err)
			}
			fmt.Fprintf(a.out, "Superuser %s created (id %d)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Superuser email address")
	cmd.Flags().StringVar(&password, "password", "", "Superuser password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
