package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/hairstyle-kit/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// GeminiGenerator は ImageCount 回の生成呼び出しを並行に行い、結果を1つのリストにまとめます。
// 可変の共有状態を持たないため、複数の goroutine から同時に呼び出しても安全です。
type GeminiGenerator struct {
	imgCore   ImageGeneratorCore
	builder   *RequestBuilder
	newClient ClientFactory
	apiKey    string
}

var _ ImageGenerator = (*GeminiGenerator)(nil)

// NewGeminiGenerator は依存関係を注入して GeminiGenerator を初期化します。
// apiKey は空でも構いません。その場合は Generate が ConfigurationError を返します。
func NewGeminiGenerator(core ImageGeneratorCore, newClient ClientFactory, apiKey string) (*GeminiGenerator, error) {
	if core == nil {
		return nil, fmt.Errorf("core (ImageGeneratorCore) is required")
	}
	if newClient == nil {
		return nil, fmt.Errorf("newClient (ClientFactory) is required")
	}

	return &GeminiGenerator{
		imgCore:   core,
		builder:   NewRequestBuilder(core),
		newClient: newClient,
		apiKey:    strings.TrimSpace(apiKey),
	}, nil
}

// Generate は髪型変更画像を生成します。
//
// 呼び出し元は OriginalImage が空でないこと、ImageCount が 1..4 であることを保証します。
// 一部の呼び出しが失敗しても、画像が1枚以上得られれば成功として返します。
func (g *GeminiGenerator) Generate(ctx context.Context, opts domain.GenerationOptions) ([]domain.ImageArtifact, error) {
	if g.apiKey == "" {
		return nil, &domain.ConfigurationError{Reason: "Gemini API key is not configured (set GEMINI_API_KEY)"}
	}

	client, err := g.newClient(ctx, g.apiKey)
	if err != nil {
		return nil, &domain.ConfigurationError{Reason: "failed to initialise the Gemini client", Err: err}
	}

	req := g.builder.Build(opts)
	slog.InfoContext(ctx, "Gemini画像生成リクエストを送信します",
		"model", req.Model,
		"count", opts.ImageCount,
		"parts", len(req.Parts()),
		"image_size", req.Config.ImageConfig.ImageSize,
	)

	outcomes := g.fanOut(ctx, client, req, opts.ImageCount)
	return g.collect(ctx, outcomes)
}

// fanOut は n 回の呼び出しを並行に実行し、全てが完了するまで待ちます。
// 最初の失敗で兄弟を中断しないよう、context 付きではない errgroup.Group を使います。
func (g *GeminiGenerator) fanOut(ctx context.Context, client ContentGenerator, req GenerationRequest, n int) []callOutcome {
	outcomes := make([]callOutcome, n)

	var eg errgroup.Group
	for i := range n {
		call := req.Clone()
		eg.Go(func() error {
			resp, err := client.GenerateContent(ctx, call.Model, call.Contents, call.Config)
			outcomes[i] = callOutcome{resp: resp, err: err}
			return nil
		})
	}
	_ = eg.Wait()

	return outcomes
}

// collect は全ての呼び出しが終わった後に単一スレッドで結果をまとめます。
func (g *GeminiGenerator) collect(ctx context.Context, outcomes []callOutcome) ([]domain.ImageArtifact, error) {
	var (
		images   []domain.ImageArtifact
		failures []*domain.UpstreamCallError
	)

	for i, out := range outcomes {
		if out.err != nil {
			failures = append(failures, &domain.UpstreamCallError{Index: i, Err: out.err})
			continue
		}
		found, err := g.imgCore.ExtractImages(out.resp)
		if err != nil {
			failures = append(failures, &domain.UpstreamCallError{Index: i, Err: err})
			continue
		}
		images = append(images, found...)
	}

	for _, f := range failures {
		slog.WarnContext(ctx, "生成呼び出しが失敗しました", "index", f.Index, "error", f.Err)
	}

	if len(images) == 0 {
		return nil, &domain.NoImagesProducedError{Requested: len(outcomes), Failures: failures}
	}

	// 不足分の表示は呼び出し側が ImageCount と比較して行う
	if len(failures) > 0 {
		slog.WarnContext(ctx, "一部の生成呼び出しが失敗しましたが、得られた画像を返します",
			"requested", len(outcomes), "failed", len(failures), "images", len(images))
	}

	slog.InfoContext(ctx, "Gemini画像生成が完了しました", "images", len(images))
	return images, nil
}
