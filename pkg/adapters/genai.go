package adapters

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shouni/hairstyle-kit/pkg/generator"
	"google.golang.org/genai"
)

// GenAIClientOptions は genai クライアントを生成する際の接続設定です。
type GenAIClientOptions struct {
	// HTTPClient は nil の場合 genai のデフォルトが使われます。
	HTTPClient *http.Client
	// BaseURL は空の場合 https://generativelanguage.googleapis.com/ が使われます。
	BaseURL    string
	APIVersion string
}

// NewGenAIClientFactory は、呼び出しごとに API キーから genai.Client を作る ClientFactory を返します。
// 返される ContentGenerator は *genai.Models そのものです。
func NewGenAIClientFactory(opts GenAIClientOptions) generator.ClientFactory {
	return func(ctx context.Context, apiKey string) (generator.ContentGenerator, error) {
		cc := &genai.ClientConfig{
			APIKey:     apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: opts.HTTPClient,
			HTTPOptions: genai.HTTPOptions{
				BaseURL:    opts.BaseURL,
				APIVersion: opts.APIVersion,
			},
		}

		client, err := genai.NewClient(ctx, cc)
		if err != nil {
			return nil, fmt.Errorf("genai client: %w", err)
		}
		return client.Models, nil
	}
}
