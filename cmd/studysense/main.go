package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log/slog"

	"github.com/hrygo/studysense/internal/profile"
	"github.com/hrygo/studysense/plugin/textextract"
	"github.com/hrygo/studysense/server/ai"
	"github.com/hrygo/studysense/server/content"
	"github.com/hrygo/studysense/server/library"
	"github.com/hrygo/studysense/server/quiz"
	apiv1 "github.com/hrygo/studysense/server/router/api/v1"
	"github.com/hrygo/studysense/store"
	"github.com/hrygo/studysense/store/db"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "studysense",
	Short: "studysense turns study documents into grounded quizzes",
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Data:    viper.GetString("data"),
			Driver:  viper.GetString("driver"),
			DSN:     viper.GetString("dsn"),
			Version: version,
		}
		if err := instanceProfile.Validate(); err != nil {
			return fmt.Errorf("failed to validate profile: %w", err)
		}
		return serve(instanceProfile)
	},
}

func serve(instanceProfile *profile.Profile) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	driver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return fmt.Errorf("failed to create db driver: %w", err)
	}
	storeInstance := store.New(driver, instanceProfile)
	defer storeInstance.Close()

	extractor := textextract.NewClient(&textextract.Config{
		TikaServerURL: instanceProfile.TikaServerURL,
		Timeout:       instanceProfile.TextExtractTimeout,
	})
	libraryService := library.NewService(storeInstance, extractor)

	provider, err := ai.NewProvider(ai.ConfigFromProfile(instanceProfile))
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	quizService := quiz.NewService(storeInstance, ai.NewLLMGenerator(provider), content.NewSampler(time.Now().UnixNano()))

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	apiService := apiv1.NewAPIV1Service(instanceProfile, storeInstance, libraryService, quizService)
	apiService.RegisterRoutes(e)

	address := fmt.Sprintf("%s:%d", instanceProfile.Addr, instanceProfile.Port)
	go func() {
		slog.Info("server started",
			"version", version,
			"address", address,
			"mode", instanceProfile.Mode,
			"ai_enabled", instanceProfile.IsAIEnabled())
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down server gracefully", "error", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().String("mode", "dev", `mode of the server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of the server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("studysense")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("failed to run server", "error", err)
		os.Exit(1)
	}
}
