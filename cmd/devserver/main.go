// Deepfake Detection dev server
//
// Serves the current working directory over HTTP so the browser preview can
// be loaded locally:
// - Static files with a fixed extension to content-type table
// - Opens the default browser on the index page once the port is bound
// - Prometheus metrics & structured logging (zap)
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/Maxence-Van-Laere/deepfake-detection/internal/config"
	"github.com/Maxence-Van-Laere/deepfake-detection/internal/fileserver"
	"github.com/Maxence-Van-Laere/deepfake-detection/internal/launcher"
	"github.com/Maxence-Van-Laere/deepfake-detection/internal/logging"
	"github.com/Maxence-Van-Laere/deepfake-detection/internal/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Can't use structured logging yet
		panic("configuration error: " + err.Error())
	}

	// Initialize structured logging
	if err := logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		OutputPath: cfg.LogFile,
	}); err != nil {
		panic("logging init error: " + err.Error())
	}
	defer logging.Sync()

	srv, err := fileserver.New(fileserver.Config{
		Root: cfg.RootDir,
		Port: cfg.Port,
	})
	if err != nil {
		logging.Fatal("server init failed", zap.Error(err))
	}

	ln, err := srv.Listen()
	if err != nil {
		logging.Fatal("bind failed", zap.Int("port", cfg.Port), zap.Error(err))
	}

	printBanner(cfg)
	logging.Info("serving",
		zap.String("root", cfg.RootDir),
		zap.String("url", cfg.URL()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	if cfg.OpenBrowser {
		launcher.New().Open(cfg.URL())
	}

	// Optional metrics listener
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logging.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
			if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info("shutting down...", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logging.Fatal("server error", zap.Error(err))
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("shutdown error", zap.Error(err))
	}
	if metricsServer != nil {
		metricsServer.Shutdown(ctx)
	}
	logging.Info("server stopped")
}

func printBanner(cfg *config.Config) {
	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.Faint)

	title.Println("╔═══════════════════════════════════════╗")
	title.Println("║   Deepfake Detection dev server       ║")
	title.Println("╚═══════════════════════════════════════╝")
	label.Print("  Root: ")
	color.White("%s", cfg.RootDir)
	label.Print("  URL:  ")
	color.Green("%s", cfg.URL())
	if cfg.MetricsAddr != "" {
		label.Print("  Metrics: ")
		color.White("%s", cfg.MetricsAddr)
	}
	if !cfg.OpenBrowser {
		color.Yellow("  Browser launch disabled (OPEN_BROWSER=false)")
	}
	fmt.Println()
}
