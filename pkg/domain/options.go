package domain

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MinImageCount = 1
	MaxImageCount = 4
)

// FaceShape はモデルの顔型です。
type FaceShape string

const (
	FaceShapeRound  FaceShape = "round"
	FaceShapeLong   FaceShape = "long"
	FaceShapeSquare FaceShape = "square"
	FaceShapeOval   FaceShape = "oval"
)

// FaceShapes は UI に並べる順序の顔型一覧です。
var FaceShapes = []FaceShape{FaceShapeRound, FaceShapeLong, FaceShapeSquare, FaceShapeOval}

// Label はプロンプトに埋め込む表示名を返します。
func (f FaceShape) Label() string {
	switch f {
	case FaceShapeRound:
		return "Round face"
	case FaceShapeLong:
		return "Long face"
	case FaceShapeSquare:
		return "Square face"
	case FaceShapeOval:
		return "Oval face"
	}
	return string(f)
}

// ModelTier は生成モデルの種類です。
type ModelTier string

const (
	ModelTierStandard ModelTier = "standard"
	ModelTierPro      ModelTier = "pro"
)

const (
	ModelStandard = "gemini-2.5-flash-image"
	ModelPro      = "gemini-3-pro-image-preview"
)

// Model は tier に対応する Gemini のモデル ID を返します。
func (m ModelTier) Model() string {
	if m == ModelTierPro {
		return ModelPro
	}
	return ModelStandard
}

// AspectRatio は出力画像のアスペクト比です。
type AspectRatio string

const (
	AspectRatio9x16 AspectRatio = "9:16"
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatio4x3  AspectRatio = "4:3"
	AspectRatio3x4  AspectRatio = "3:4"
	AspectRatio1x1  AspectRatio = "1:1"
)

var AspectRatios = []AspectRatio{AspectRatio9x16, AspectRatio16x9, AspectRatio4x3, AspectRatio3x4, AspectRatio1x1}

// Resolution は出力解像度です。Pro モデルでのみ有効です。
type Resolution string

const (
	Resolution1K Resolution = "1K"
	Resolution2K Resolution = "2K"
)

// ErrInvalidOption は UI 層の入力値が許可された値に含まれない場合のエラーです。
var ErrInvalidOption = errors.New("invalid option")

// GenerationOptions は1回の送信に対するユーザー選択の値です。
// 送信ごとに新しく作られ、作成後に変更されることはありません。
type GenerationOptions struct {
	OriginalImage  Image
	ReferenceImage *Image
	FaceShape      FaceShape
	HairStyle      string
	HairColor      string
	Description    string
	ModelTier      ModelTier
	AspectRatio    AspectRatio
	Resolution     Resolution
	ImageCount     int
}

// Validate は UI 層が送信前に行う検証です。
// GenerationOrchestrator はこの検証を通った値だけを受け取る前提で動作します。
func (o GenerationOptions) Validate() error {
	if o.OriginalImage.IsEmpty() {
		return fmt.Errorf("%w: original image is required", ErrInvalidOption)
	}
	if o.ImageCount < MinImageCount || o.ImageCount > MaxImageCount {
		return fmt.Errorf("%w: image count must be between %d and %d, got %d", ErrInvalidOption, MinImageCount, MaxImageCount, o.ImageCount)
	}
	if _, err := ParseFaceShape(string(o.FaceShape)); err != nil {
		return err
	}
	if _, err := ParseModelTier(string(o.ModelTier)); err != nil {
		return err
	}
	if _, err := ParseAspectRatio(string(o.AspectRatio)); err != nil {
		return err
	}
	if o.Resolution != "" {
		if _, err := ParseResolution(string(o.Resolution)); err != nil {
			return err
		}
	}
	return nil
}

// ParseFaceShape は大文字小文字を区別せずに顔型を解釈します。
func ParseFaceShape(s string) (FaceShape, error) {
	v := FaceShape(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range FaceShapes {
		if f == v {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown face shape %q", ErrInvalidOption, s)
}

func ParseModelTier(s string) (ModelTier, error) {
	switch ModelTier(strings.ToLower(strings.TrimSpace(s))) {
	case ModelTierStandard:
		return ModelTierStandard, nil
	case ModelTierPro:
		return ModelTierPro, nil
	}
	return "", fmt.Errorf("%w: unknown model tier %q", ErrInvalidOption, s)
}

func ParseAspectRatio(s string) (AspectRatio, error) {
	v := AspectRatio(strings.TrimSpace(s))
	for _, a := range AspectRatios {
		if a == v {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported aspect ratio %q", ErrInvalidOption, s)
}

func ParseResolution(s string) (Resolution, error) {
	switch Resolution(strings.ToUpper(strings.TrimSpace(s))) {
	case Resolution1K:
		return Resolution1K, nil
	case Resolution2K:
		return Resolution2K, nil
	}
	return "", fmt.Errorf("%w: unsupported resolution %q", ErrInvalidOption, s)
}
