package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/ballot-core/auth"
	"github.com/danielhkuo/ballot-core/cliparse"
	"github.com/danielhkuo/ballot-core/db"
	"github.com/danielhkuo/ballot-core/middleware"
	"github.com/danielhkuo/ballot-core/models"
	"github.com/danielhkuo/ballot-core/router"
)

func main() {
	root := &cobra.Command{
		Use:           "ballot-core",
		Short:         "Election and ballot API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newIssueTokenCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve [flags]",
		Short: "Start the HTTP API",
		// Flags belong to cliparse so env and CLI share one precedence order
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cliparse.ParseFlags(args)
			if err != nil {
				return fmt.Errorf("parse flags: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg cliparse.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, dialect, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer dbConn.Close()

	if err := db.CreateSchema(dbConn); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	gate, err := auth.NewGate(cfg.TokenSecret, cfg.TokenIssuer, cfg.IdentityCacheSize)
	if err != nil {
		return fmt.Errorf("access gate: %w", err)
	}

	mux := router.NewRouter(dbConn, dialect, gate, cfg)

	server := &http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// Wait for Ctrl-C, SIGTERM or a listener failure
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		slog.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	slog.Info("Server closed")
	return nil
}

func newIssueTokenCmd() *cobra.Command {
	var (
		id       string
		username string
		role     string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Mint a bearer token for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := cliparse.LoadTokenSettings()
			if err != nil {
				return err
			}
			gate, err := auth.NewGate(ts.Secret, ts.Issuer, 1)
			if err != nil {
				return err
			}

			if username == "" {
				username = id
			}
			token, err := gate.Issue(models.Voter{ID: id, Username: username, Role: role}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Voter ID (token subject)")
	cmd.Flags().StringVar(&username, "username", "", "Display name (defaults to the ID)")
	cmd.Flags().StringVar(&role, "role", models.RoleVoter, "Role: voter or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	cmd.MarkFlagRequired("id")

	return cmd
}
