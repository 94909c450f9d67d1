package imgutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
)

// ErrNotImage はアップロードされたデータが画像として認識できない場合のエラーです。
var ErrNotImage = errors.New("not an image")

// Info は画像の MIME タイプとピクセルサイズです。
// image.DecodeConfig が対応しない形式 (webp など) では Width/Height は 0 になります。
type Info struct {
	MimeType string
	Width    int
	Height   int
}

// Inspect は画像データを検査し、MIME タイプと寸法を返します。
// 画像の内容は変更しません。
func Inspect(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, fmt.Errorf("%w: empty data", ErrNotImage)
	}

	mimeType := http.DetectContentType(data)
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return Info{}, fmt.Errorf("%w: detected %s", ErrNotImage, mimeType)
	}

	info := Info{MimeType: mimeType}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		info.Width = cfg.Width
		info.Height = cfg.Height
	}
	return info, nil
}

// ExtensionFor は MIME タイプに対応するファイル拡張子を返します。
func ExtensionFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
