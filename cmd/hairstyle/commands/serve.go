package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/hairstyle-kit/internal/cache"
	"github.com/shouni/hairstyle-kit/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the browser form and JSON API",
	Long: `Start the web front-end.

Routes:
  GET  /                 try-on form
  GET  /api/catalog      hairstyles, colours and face shape advice
  POST /api/generate     multipart form, returns data URIs
  GET  /api/state        current session state
  GET  /api/images/{id}  download a generated image

Example:
  hairstyle serve --addr :8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		gen, err := newGenerator(cfg)
		if err != nil {
			return err
		}
		if cfg.GeminiAPIKey == "" {
			slog.Warn("GEMINI_API_KEY が未設定です。生成リクエストは設定エラーになります")
		}

		images := cache.NewImageCache(cfg.ImageCacheTTL, cfg.ImageCacheMaxMB)
		srv, err := web.NewServer(gen, images, web.Options{
			MaxUploadBytes: cfg.MaxUploadBytes,
			Logger:         slog.Default(),
		})
		if err != nil {
			return err
		}
		handler, err := srv.Handler()
		if err != nil {
			return err
		}

		addr := cfg.WebAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}

		return serve(cmd.Context(), srv, handler, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address (default from WEB_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, srv *web.Server, handler http.Handler, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}

	go srv.RunJanitor(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("web started", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	slog.Info("shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}
