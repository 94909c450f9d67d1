package generator

import (
	"fmt"

	"github.com/shouni/hairstyle-kit/pkg/domain"
	"google.golang.org/genai"
)

// ExtractImages はレスポンスの全候補・全パーツを走査し、InlineData を持つ画像を順番通りに返します。
// 画像以外のパーツは無視します。画像が0枚でも正常なレスポンスであればエラーにはしません。
func (c *GeminiImageCore) ExtractImages(resp *genai.GenerateContentResponse) ([]domain.ImageArtifact, error) {
	if resp == nil {
		return nil, fmt.Errorf("Geminiからの有効な応答がありませんでした")
	}

	var (
		images   []domain.ImageArtifact
		abnormal genai.FinishReason
	)
	for _, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
					continue
				}
				images = append(images, domain.NewImageArtifact(part.InlineData.Data, part.InlineData.MIMEType))
			}
		}
		switch candidate.FinishReason {
		case "", genai.FinishReasonUnspecified, genai.FinishReasonStop:
		default:
			abnormal = candidate.FinishReason
		}
	}

	// 安全フィルター等によるブロックは呼び出しの失敗として扱う
	if len(images) == 0 && abnormal != "" {
		return nil, fmt.Errorf("画像生成が異常終了しました (FinishReason: %s)", abnormal)
	}
	return images, nil
}
