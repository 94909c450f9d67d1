package domain

import (
	"encoding/base64"
	"fmt"
)

// DefaultMimeType は、上流のレスポンスが MIME タイプを省略した場合に使う値です。
const DefaultMimeType = "image/png"

// Image はアップロードされた画像のバイト列と MIME タイプの組です。
type Image struct {
	Data     []byte
	MimeType string
}

// IsEmpty は画像データが無い場合に true を返します。
func (i Image) IsEmpty() bool {
	return len(i.Data) == 0
}

// ImageArtifact は生成された1枚の画像です。
// 返却されたスライス内の位置以外に識別子は持ちません。
type ImageArtifact struct {
	Data     []byte
	MimeType string
}

// NewImageArtifact は MIME タイプが空の場合に DefaultMimeType を補って ImageArtifact を作ります。
func NewImageArtifact(data []byte, mimeType string) ImageArtifact {
	if mimeType == "" {
		mimeType = DefaultMimeType
	}
	return ImageArtifact{Data: data, MimeType: mimeType}
}

// DataURI は data:<mimeType>;base64,<payload> 形式の文字列を返します。
func (a ImageArtifact) DataURI() string {
	mimeType := a.MimeType
	if mimeType == "" {
		mimeType = DefaultMimeType
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(a.Data))
}
