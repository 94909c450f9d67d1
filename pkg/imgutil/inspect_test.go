package imgutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// テスト用のダミー画像（幅12x高さ8の赤い長方形）を作成するヘルパー
func createDummyImageData(t *testing.T, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 12, 8))
	for x := 0; x < 12; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}

	buf := new(bytes.Buffer)
	var err error
	switch format {
	case "png":
		err = png.Encode(buf, img)
	case "jpeg":
		err = jpeg.Encode(buf, img, nil)
	default:
		t.Fatalf("unsupported format: %s", format)
	}
	require.NoError(t, err)
	return buf.Bytes()
}

func TestInspect(t *testing.T) {
	t.Run("Success/PNG", func(t *testing.T) {
		info, err := Inspect(createDummyImageData(t, "png"))
		require.NoError(t, err)
		assert.Equal(t, Info{MimeType: "image/png", Width: 12, Height: 8}, info)
	})

	t.Run("Success/JPEG", func(t *testing.T) {
		info, err := Inspect(createDummyImageData(t, "jpeg"))
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", info.MimeType)
		assert.Equal(t, 12, info.Width)
	})

	t.Run("Failure/TextIsRejected", func(t *testing.T) {
		_, err := Inspect([]byte("hello, this is not an image"))
		assert.ErrorIs(t, err, ErrNotImage)
	})

	t.Run("Failure/EmptyIsRejected", func(t *testing.T) {
		_, err := Inspect(nil)
		assert.ErrorIs(t, err, ErrNotImage)
	})
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".jpg", ExtensionFor("image/jpeg"))
	assert.Equal(t, ".webp", ExtensionFor("image/webp"))
	assert.Equal(t, ".png", ExtensionFor("image/png"))
	assert.Equal(t, ".png", ExtensionFor(""))
}
