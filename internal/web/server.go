// Package web はブラウザ向けの試着フォームと JSON API を提供します。
package web

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/shouni/hairstyle-kit/internal/cache"
	"github.com/shouni/hairstyle-kit/internal/studio"
	"github.com/shouni/hairstyle-kit/pkg/generator"
)

//go:embed static/*
var staticFS embed.FS

const sessionCookieName = "hairstyle_session"

type Options struct {
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// Server はセッションごとに studio.Studio を持ち、生成 API を提供します。
type Server struct {
	gen            generator.ImageGenerator
	images         *cache.ImageCache
	maxUploadBytes int64
	logger         *slog.Logger

	mu       sync.Mutex
	sessions map[string]*studio.Studio
}

func NewServer(gen generator.ImageGenerator, images *cache.ImageCache, opts Options) (*Server, error) {
	if gen == nil {
		return nil, errors.New("gen (ImageGenerator) is required")
	}
	if images == nil {
		return nil, errors.New("images (ImageCache) is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 25 << 20
	}

	return &Server{
		gen:            gen,
		images:         images,
		maxUploadBytes: maxUpload,
		logger:         logger,
		sessions:       make(map[string]*studio.Studio),
	}, nil
}

// Handler はルーティング済みの http.Handler を返します。
func (s *Server) Handler() (http.Handler, error) {
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/catalog", s.handleCatalog).Methods(http.MethodGet)
	r.HandleFunc("/api/generate", s.handleGenerate).Methods(http.MethodPost)
	r.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/api/images/{id}", s.handleImage).Methods(http.MethodGet)
	r.PathPrefix("/").Handler(http.FileServer(http.FS(staticSub))).Methods(http.MethodGet)

	return withLogging(r, s.logger), nil
}

// RunJanitor は ctx が終わるまで interval ごとに期限切れ画像を削除します。
func (s *Server) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.images.Purge(); n > 0 {
				s.logger.Debug("期限切れの画像を削除しました", "count", n)
			}
		}
	}
}

// studioFor はクッキーに対応する Studio を返します。無ければ新しいセッションを発行します。
func (s *Server) studioFor(w http.ResponseWriter, r *http.Request) *studio.Studio {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, err := r.Cookie(sessionCookieName); err == nil {
		if st, ok := s.sessions[c.Value]; ok {
			return st
		}
	}

	id := uuid.NewString()
	st := studio.New()
	s.sessions[id] = st
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return st
}

func withLogging(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("http", "method", r.Method, "path", r.URL.Path, "status", rec.status, "dur_ms", time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
