// Package studio は1人のユーザーの試着セッションの状態を保持します。
// 選択中の画像とオプション、生成中フラグ、直近の結果とエラーメッセージを扱い、
// 同時に1つの生成リクエストしか走らせません。
package studio

import (
	"context"
	"errors"
	"sync"

	"github.com/shouni/hairstyle-kit/pkg/domain"
	"github.com/shouni/hairstyle-kit/pkg/generator"
)

var (
	// ErrMissingOriginal は元画像が未設定のまま送信されたことを表します。
	ErrMissingOriginal = errors.New("original image is required")
	// ErrBusy は前の生成がまだ完了していないことを表します。
	ErrBusy = errors.New("a generation is already in progress")
)

const (
	MessageMissingOriginal = "Please upload the original portrait first."
	MessageNoImages        = "No images were produced. Please try again."
	MessageGeneric         = "Generation failed. Check the API key or try again."
)

// Studio は UI 層の状態です。複数の goroutine から同時に使っても安全です。
type Studio struct {
	mu sync.Mutex

	original    domain.Image
	reference   *domain.Image
	faceShape   domain.FaceShape
	styleID     string
	hairColor   string
	description string
	modelTier   domain.ModelTier
	aspectRatio domain.AspectRatio
	resolution  domain.Resolution
	imageCount  int

	loading    bool
	results    []domain.ImageArtifact
	errMessage string
}

// Snapshot は描画用の状態のコピーです。
type Snapshot struct {
	HasOriginal  bool                   `json:"has_original"`
	HasReference bool                   `json:"has_reference"`
	FaceShape    domain.FaceShape       `json:"face_shape"`
	StyleID      string                 `json:"style_id"`
	HairColor    string                 `json:"hair_color"`
	Description  string                 `json:"description"`
	ModelTier    domain.ModelTier       `json:"model"`
	AspectRatio  domain.AspectRatio     `json:"aspect_ratio"`
	Resolution   domain.Resolution      `json:"resolution"`
	ImageCount   int                    `json:"image_count"`
	Loading      bool                   `json:"loading"`
	ErrorMessage string                 `json:"error,omitempty"`
	Advice       domain.FaceShapeAdvice `json:"advice"`
	Results      []domain.ImageArtifact `json:"-"`
}

// New は初期選択済みの Studio を返します。
func New() *Studio {
	return &Studio{
		faceShape:   domain.FaceShapeOval,
		styleID:     domain.HairStyles[0].ID,
		hairColor:   domain.HairColors[0],
		modelTier:   domain.ModelTierStandard,
		aspectRatio: domain.AspectRatio9x16,
		resolution:  domain.Resolution1K,
		imageCount:  domain.MinImageCount,
	}
}

func (s *Studio) SetOriginal(img domain.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.original = img
}

// SetReference は参考画像を設定します。nil または空の画像で解除します。
func (s *Studio) SetReference(img *domain.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if img == nil || img.IsEmpty() {
		s.reference = nil
		return
	}
	ref := *img
	s.reference = &ref
}

func (s *Studio) SetFaceShape(f domain.FaceShape) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faceShape = f
}

func (s *Studio) SetStyle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.styleID = id
}

func (s *Studio) SetHairColor(c string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hairColor = c
}

func (s *Studio) SetDescription(d string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.description = d
}

func (s *Studio) SetModelTier(m domain.ModelTier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modelTier = m
}

func (s *Studio) SetAspectRatio(a domain.AspectRatio) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aspectRatio = a
}

func (s *Studio) SetResolution(r domain.Resolution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolution = r
}

// SetImageCount は枚数を 1..4 に丸めて設定します。
func (s *Studio) SetImageCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageCount = min(max(n, domain.MinImageCount), domain.MaxImageCount)
}

// Advice は現在の顔型に対するアドバイスを返します。
func (s *Studio) Advice() domain.FaceShapeAdvice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.AdviceFor(s.faceShape)
}

// Submit は現在の選択で生成を1回実行します。
//
// 元画像が無い場合は生成器を呼ばずに ErrMissingOriginal を、生成中の場合は ErrBusy を返します。
// 生成器のエラーはユーザー向けメッセージとして状態に残した上でそのまま返します。
func (s *Studio) Submit(ctx context.Context, gen generator.ImageGenerator) ([]domain.ImageArtifact, error) {
	opts, err := s.begin()
	if err != nil {
		return nil, err
	}

	images, err := gen.Generate(ctx, opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.errMessage = UserMessage(err)
		return nil, err
	}
	s.results = images
	return images, nil
}

func (s *Studio) begin() (domain.GenerationOptions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.original.IsEmpty() {
		s.errMessage = MessageMissingOriginal
		return domain.GenerationOptions{}, ErrMissingOriginal
	}
	if s.loading {
		return domain.GenerationOptions{}, ErrBusy
	}

	opts := domain.GenerationOptions{
		OriginalImage:  s.original,
		ReferenceImage: s.reference,
		FaceShape:      s.faceShape,
		HairStyle:      domain.FindHairStyle(s.styleID).Name,
		HairColor:      s.hairColor,
		Description:    s.description,
		ModelTier:      s.modelTier,
		AspectRatio:    s.aspectRatio,
		Resolution:     s.resolution,
		ImageCount:     s.imageCount,
	}
	if err := opts.Validate(); err != nil {
		s.errMessage = err.Error()
		return domain.GenerationOptions{}, err
	}

	s.loading = true
	s.results = nil
	s.errMessage = ""
	return opts, nil
}

// Snapshot は現在の状態のコピーを返します。
func (s *Studio) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		HasOriginal:  !s.original.IsEmpty(),
		HasReference: s.reference != nil,
		FaceShape:    s.faceShape,
		StyleID:      s.styleID,
		HairColor:    s.hairColor,
		Description:  s.description,
		ModelTier:    s.modelTier,
		AspectRatio:  s.aspectRatio,
		Resolution:   s.resolution,
		ImageCount:   s.imageCount,
		Loading:      s.loading,
		ErrorMessage: s.errMessage,
		Advice:       domain.AdviceFor(s.faceShape),
		Results:      append([]domain.ImageArtifact(nil), s.results...),
	}
}

// UserMessage は生成エラーを画面に出す文言に変換します。
func UserMessage(err error) string {
	var cfgErr *domain.ConfigurationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return cfgErr.Error()
	case errors.Is(err, ErrMissingOriginal):
		return MessageMissingOriginal
	case errors.Is(err, domain.ErrNoImagesProduced):
		return MessageNoImages
	}
	return MessageGeneric
}
