package generator

import (
	"fmt"
	"strings"

	"github.com/shouni/hairstyle-kit/pkg/domain"
	"google.golang.org/genai"
)

// promptTemplate の制約はモデルへのテキスト指示であり、このパッケージでは出力が従ったかを検証できません。
const promptTemplate = `Create a photorealistic render based on the Original Image (Image 1).
IMPORTANT: The output image MUST have exactly the same pixel dimensions and aspect ratio as the Original Image (Image 1), and must follow its details closely.
Do NOT take the dimensions or aspect ratio from the Reference Image (Image 2), if one is provided.

Requirements:
- Target hairstyle: %s
- Hair color: %s
- Model face shape: %s
- Additional description: %s

Main creative direction: a realistic render of the new hairstyle on the model's face from the original image,
set in a cinematic scene with neutral, bright lighting.
Avoid the following: %s.`

// RequestBuilder は GenerationOptions から生成リクエストを組み立てます。
// I/O は行わず、同じ入力には常に同じリクエストを返します。
type RequestBuilder struct {
	imgCore ImageGeneratorCore
}

// NewRequestBuilder は画像パーツ変換に使う Core を受け取って RequestBuilder を作ります。
func NewRequestBuilder(core ImageGeneratorCore) *RequestBuilder {
	return &RequestBuilder{imgCore: core}
}

// Build は1回分の生成リクエストを作ります。
func (b *RequestBuilder) Build(opts domain.GenerationOptions) GenerationRequest {
	parts := make([]*genai.Part, 0, 3)

	// "Image 1" = 元画像として解釈されるため、順序を入れ替えてはいけない
	if !opts.OriginalImage.IsEmpty() {
		parts = append(parts, b.imgCore.ToPart(opts.OriginalImage))
	}
	if opts.ReferenceImage != nil && !opts.ReferenceImage.IsEmpty() {
		parts = append(parts, b.imgCore.ToPart(*opts.ReferenceImage))
	}
	parts = append(parts, genai.NewPartFromText(BuildPrompt(opts)))

	return GenerationRequest{
		Model:    opts.ModelTier.Model(),
		Contents: []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		Config: &genai.GenerateContentConfig{
			ImageConfig: BuildImageConfig(opts),
		},
	}
}

// BuildPrompt は固定テンプレートに選択値をそのまま埋め込みます。
func BuildPrompt(opts domain.GenerationOptions) string {
	description := strings.TrimSpace(opts.Description)
	if description == "" {
		description = DescriptionPlaceholder
	}
	return fmt.Sprintf(promptTemplate,
		opts.HairStyle,
		opts.HairColor,
		opts.FaceShape.Label(),
		description,
		NegativeConstraints,
	)
}

// BuildImageConfig はアスペクト比を常に設定し、画像サイズは Pro モデルの場合だけ設定します。
// Standard で解像度が選ばれていても、エラーにはせず送信しません。
func BuildImageConfig(opts domain.GenerationOptions) *genai.ImageConfig {
	cfg := &genai.ImageConfig{
		AspectRatio: string(opts.AspectRatio),
	}
	if opts.ModelTier == domain.ModelTierPro && opts.Resolution != "" {
		cfg.ImageSize = string(opts.Resolution)
	}
	return cfg
}
