package generator

import (
	"net/http"
	"strings"

	"github.com/shouni/hairstyle-kit/pkg/domain"
	"google.golang.org/genai"
)

// GeminiImageCore は Gemini の画像パーツ変換とレスポンス解析を担う基盤クラスです。
// 状態を持たないため、並行に呼び出しても安全です。
type GeminiImageCore struct{}

// NewGeminiImageCore は GeminiImageCore を初期化します。
func NewGeminiImageCore() *GeminiImageCore {
	return &GeminiImageCore{}
}

// ToPart はバイト列を genai.Part (InlineData) に変換します。
// MIME タイプが未設定の場合はデータから推定します。
func (c *GeminiImageCore) ToPart(img domain.Image) *genai.Part {
	mimeType := strings.TrimSpace(img.MimeType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = detectMimeType(img.Data)
	}
	return genai.NewPartFromBytes(img.Data, mimeType)
}

func detectMimeType(data []byte) string {
	mimeType := http.DetectContentType(data)
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if !strings.HasPrefix(mimeType, "image/") {
		// 事前検証済みの入力なので、判定できない場合も画像として送る
		return "image/jpeg"
	}
	return mimeType
}
