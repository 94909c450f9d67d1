package generator

import (
	"context"

	"github.com/shouni/hairstyle-kit/pkg/domain"
	"google.golang.org/genai"
)

// ImageGenerator は UI 層が利用する統合窓口です。
type ImageGenerator interface {
	Generate(ctx context.Context, opts domain.GenerationOptions) ([]domain.ImageArtifact, error)
}

// ContentGenerator は上流の生成 API との境界です。
// *genai.Models のメソッドと同じシグネチャなので、実クライアントをそのまま渡せます。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ClientFactory は API キーから ContentGenerator を作ります。
// キーは呼び出しのたびに渡されるため、プロセス全体のグローバル状態には依存しません。
type ClientFactory func(ctx context.Context, apiKey string) (ContentGenerator, error)

// ImageGeneratorCore は Gemini 固有のパーツ変換とレスポンス解析を抽象化するインターフェースです。
type ImageGeneratorCore interface {
	// ToPart は画像を InlineData パーツに変換します。
	ToPart(img domain.Image) *genai.Part
	// ExtractImages はレスポンス内の全ての画像パーツを順番通りに取り出します。
	ExtractImages(resp *genai.GenerateContentResponse) ([]domain.ImageArtifact, error)
}
