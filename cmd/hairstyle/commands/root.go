package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shouni/hairstyle-kit/internal/config"
	"github.com/shouni/hairstyle-kit/internal/httpclient"
	"github.com/shouni/hairstyle-kit/internal/logging"
	"github.com/shouni/hairstyle-kit/pkg/adapters"
	"github.com/shouni/hairstyle-kit/pkg/generator"
)

var (
	logLevel  string
	logFormat string

	globalConfig  *config.Config
	configLoadErr error
)

var rootCmd = &cobra.Command{
	Use:   "hairstyle",
	Short: "Try on hairstyles with Gemini image models",
	Long: `hairstyle - generate pictures of a person with a different hairstyle.

The original portrait keeps the face, expression and background; only the hair
changes. An optional reference photo can be supplied as a style example.

Configuration is read from .env and the environment:
  GEMINI_API_KEY        Gemini API key (API_KEY is accepted as a fallback)
  GEMINI_BASE_URL       override the API endpoint
  HTTP_TIMEOUT_SECONDS  per call timeout (default 180)
  WEB_ADDR              listen address for 'serve' (default :8080)
  LOG_LEVEL, LOG_FORMAT debug|info|warn|error, json|text|console

Examples:
  hairstyle generate --original me.jpg --style two_block --color "Smoky grey" --count 2
  hairstyle generate -f request.yaml --json
  hairstyle serve --addr :8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, format := logLevel, logFormat
		if cfg, err := GetConfig(); err == nil {
			if level == "" {
				level = cfg.LogLevel
			}
			if format == "" {
				format = cfg.LogFormat
			}
		}
		slog.SetDefault(logging.New(level, format, os.Stderr))
	},
}

// Execute は SIGINT/SIGTERM でキャンセルされる context でルートコマンドを実行します。
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: json, text, console (default from LOG_FORMAT)")
}

func initConfig() {
	cfg, err := config.Load()
	if err != nil {
		configLoadErr = err
		return
	}
	globalConfig = &cfg
}

// GetConfig は読み込み済みの設定を返します。
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = &cfg
	}
	return globalConfig, nil
}

// newGenerator は設定から Gemini の画像生成器を組み立てます。
// API キーが空でもエラーにはせず、生成時に ConfigurationError として報告させます。
func newGenerator(cfg *config.Config) (*generator.GeminiGenerator, error) {
	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	factory := adapters.NewGenAIClientFactory(adapters.GenAIClientOptions{
		HTTPClient: httpClient,
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
	})

	return generator.NewGeminiGenerator(generator.NewGeminiImageCore(), factory, cfg.GeminiAPIKey)
}
