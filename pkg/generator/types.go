package generator

import (
	"google.golang.org/genai"
)

const (
	// DescriptionPlaceholder は説明文が空の場合にプロンプトへ埋め込む値です。
	DescriptionPlaceholder = "None"
	// NegativeConstraints はモデルに避けさせる要素の固定句です。
	NegativeConstraints = "text overlays, watermarks, blur, low quality, facial distortion"
)

// GenerationRequest はファンアウトする1回分の生成呼び出しの内容です。
// パーツの順序は [元画像, 参照画像(任意), テキスト] で固定です。
type GenerationRequest struct {
	Model    string
	Contents []*genai.Content
	Config   *genai.GenerateContentConfig
}

// Parts は唯一のユーザーコンテンツのパーツを返します。
func (r GenerationRequest) Parts() []*genai.Part {
	if len(r.Contents) == 0 || r.Contents[0] == nil {
		return nil
	}
	return r.Contents[0].Parts
}

// Clone は呼び出しごとに独立したコピーを返します。パーツが持つ画像バイト列は共有します。
func (r GenerationRequest) Clone() GenerationRequest {
	out := GenerationRequest{Model: r.Model}

	out.Contents = make([]*genai.Content, 0, len(r.Contents))
	for _, c := range r.Contents {
		if c == nil {
			continue
		}
		parts := make([]*genai.Part, 0, len(c.Parts))
		for _, p := range c.Parts {
			if p == nil {
				continue
			}
			cp := *p
			parts = append(parts, &cp)
		}
		out.Contents = append(out.Contents, &genai.Content{Role: c.Role, Parts: parts})
	}

	if r.Config != nil {
		cfg := *r.Config
		if r.Config.ImageConfig != nil {
			ic := *r.Config.ImageConfig
			cfg.ImageConfig = &ic
		}
		out.Config = &cfg
	}
	return out
}

// callOutcome は1回の呼び出し結果です。各 goroutine は自分のスロットだけに書き込みます。
type callOutcome struct {
	resp *genai.GenerateContentResponse
	err  error
}
