// Package logging はプロセス全体で使う slog.Logger を組み立てます。
package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New は level と format から slog.Logger を作ります。
// format が "console" の場合、slog の JSON 出力を zerolog.ConsoleWriter で人間向けに整形します。
func New(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "console":
		cw := zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    true,
			TimeFormat: time.TimeOnly,
			FormatLevel: func(i any) string {
				s, _ := i.(string)
				return strings.ToUpper(s)
			},
			// slog のキー名 (msg) を zerolog のキー名 (message) に寄せる
			FormatPrepare: func(evt map[string]any) error {
				if msg, ok := evt[slog.MessageKey]; ok {
					evt[zerolog.MessageFieldName] = msg
					delete(evt, slog.MessageKey)
				}
				return nil
			},
		}
		return slog.New(slog.NewJSONHandler(cw, opts))
	case "text":
		return slog.New(slog.NewTextHandler(w, opts))
	default:
		return slog.New(slog.NewJSONHandler(w, opts))
	}
}

// ParseLevel は未知の値を Info として扱います。
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
