package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"martshift/internal/config"
	"martshift/internal/handler"
	"martshift/internal/i18n"
	"martshift/internal/model"
	"martshift/internal/service"
	"martshift/internal/store"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "martshift",
		Short: "Convenience-store staff scheduling service",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")

	rootCmd.AddCommand(serveCmd(), addUserCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg.Env)
			if err != nil {
				return err
			}
			defer logger.Sync()

			i18n.Init(cfg.DefaultLocale)

			db, err := store.NewMongoDB(cfg.MongoURI, cfg.MongoDB)
			if err != nil {
				return err
			}
			defer db.Close(context.Background())
			logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDB))

			ctx := cmd.Context()

			// Stores
			userStore, err := store.NewUserStore(ctx, db)
			if err != nil {
				return err
			}
			scheduleStore, err := store.NewScheduleStore(ctx, db)
			if err != nil {
				return err
			}
			subStore, err := store.NewSubstituteStore(ctx, db)
			if err != nil {
				return err
			}
			productStore, err := store.NewProductStore(ctx, db)
			if err != nil {
				return err
			}

			// Services
			authSvc := service.NewAuthService(userStore, cfg.SessionTTL.Std())
			scheduleSvc := service.NewScheduleService(scheduleStore)
			subSvc := service.NewSubstituteService(subStore, scheduleStore)
			productSvc := service.NewProductService(productStore)

			// Routes
			mw := handler.NewMiddleware(authSvc, logger)
			mux := http.NewServeMux()
			handler.NewAuthHandler(authSvc, logger).RegisterRoutes(mux)
			handler.NewScheduleHandler(scheduleSvc, mw, logger).RegisterRoutes(mux)
			handler.NewSubstituteHandler(subSvc, mw, logger).RegisterRoutes(mux)
			handler.NewProductHandler(productSvc, mw, logger).RegisterRoutes(mux)

			// Health checks
			mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})

			srv := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      mw.Logging(mux),
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server started", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-quit:
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func addUserCmd() *cobra.Command {
	var username, email, password, role string

	cmd := &cobra.Command{
		Use:   "add-user",
		Short: "Create an account directly (used to bootstrap the first administrator)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			db, err := store.NewMongoDB(cfg.MongoURI, cfg.MongoDB)
			if err != nil {
				return err
			}
			defer db.Close(context.Background())

			userStore, err := store.NewUserStore(cmd.Context(), db)
			if err != nil {
				return err
			}

			authSvc := service.NewAuthService(userStore, cfg.SessionTTL.Std())
			user, err := authSvc.Register(cmd.Context(), username, email, password, model.Role(role))
			if err != nil {
				return err
			}

			fmt.Printf("created %s user %s (%s)\n", user.Role, user.Username, user.ID.Hex())
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().StringVar(&role, "role", string(model.RoleStaff), "Role (staff or owner)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
