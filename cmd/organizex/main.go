package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeffanddom/organizex/internal/config"
	"github.com/jeffanddom/organizex/internal/database"
	"github.com/jeffanddom/organizex/internal/migrate"
	"github.com/jeffanddom/organizex/internal/quest"
	"github.com/jeffanddom/organizex/internal/server"
)

var (
	version = "0.1.0"
	cfg     *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "organizex",
		Short:         "OrganizeX - gamified file organization",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			var err error
			cfg, err = config.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().String("config", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().Bool("json", false, "Always write JSON output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(scanCmd(), duplicatesCmd(), organizeCmd(), deleteCmd())
	rootCmd.AddCommand(questsCmd(), rewardsCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the OrganizeX API server",
		Long: `Start the OrganizeX JSON API server with automatic database migration.

The server will:
1. Connect to the database and run any pending migrations
2. Seed the reward catalogs and generate the current quests
3. Expire and regenerate quests on the sweep schedule
4. Handle graceful shutdown on SIGINT/SIGTERM`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("OrganizeX v%s\n", version)
			fmt.Println("====================")

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Println("✓ Database ready")

			sweeper, err := quest.NewSweeper(a.quests, cfg.Quests.SweepSchedule, a.logger)
			if err != nil {
				return err
			}
			sweeper.Start()
			defer sweeper.Stop()
			fmt.Printf("✓ Quest sweeper scheduled (%s)\n", cfg.Quests.SweepSchedule)

			srv := server.New(a.db, a.coordinator, a.quests, a.rewards, server.Config{
				ListenAddr: cfg.Server.ListenAddr,
			}, a.logger)

			serverErrors := make(chan error, 1)
			go func() {
				fmt.Printf("\n🚀 OrganizeX listening on %s\n", cfg.Server.ListenAddr)
				fmt.Println("Press Ctrl+C to stop")
				serverErrors <- srv.Start()
			}()

			select {
			case err := <-serverErrors:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			case <-cmd.Context().Done():
				fmt.Println("\nShutting down gracefully...")

				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
				}
				fmt.Println("✓ Server stopped")
				return nil
			}
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			db, err := openDatabase(logger)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Println("✓ Database migrations complete")
			return nil
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			db, err := database.FromURL(cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			return migrate.MigrateDown(db.DB(), db.Dialect(), logger)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dialect, err := database.DialectOf(cfg.Database.URL)
			if err != nil {
				return err
			}
			return printMigrations(dialect)
		},
	}

	cmd.AddCommand(upCmd, downCmd, listCmd)
	return cmd
}

func printMigrations(dialect database.Dialect) error {
	migrations, err := migrate.ListMigrations(dialect)
	if err != nil {
		return err
	}

	fmt.Printf("Available %s migrations:\n", dialect)
	for _, m := range migrations {
		fmt.Printf("  - %s\n", m)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("OrganizeX v%s\n", version)
		},
	}
}
