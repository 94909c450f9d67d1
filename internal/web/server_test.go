package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shouni/hairstyle-kit/internal/cache"
	"github.com/shouni/hairstyle-kit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu      sync.Mutex
	calls   []domain.GenerationOptions
	images  []domain.ImageArtifact
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeGenerator) Generate(_ context.Context, opts domain.GenerationOptions) ([]domain.ImageArtifact, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.images, f.err
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 6))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestServer(t *testing.T, gen *fakeGenerator) (http.Handler, *cache.ImageCache) {
	t.Helper()
	images := cache.NewImageCache(time.Hour, 16)
	srv, err := NewServer(gen, images, Options{})
	require.NoError(t, err)
	h, err := srv.Handler()
	require.NoError(t, err)
	return h, images
}

func multipartRequest(t *testing.T, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for k, data := range files {
		fw, err := mw.CreateFormFile(k, k+".png")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/generate", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestNewServer_RequiresDependencies(t *testing.T) {
	_, err := NewServer(nil, cache.NewImageCache(time.Minute, 1), Options{})
	assert.Error(t, err)

	_, err = NewServer(&fakeGenerator{}, nil, Options{})
	assert.Error(t, err)
}

func TestIndex_ServesForm(t *testing.T) {
	h, _ := newTestServer(t, &fakeGenerator{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/generate")
}

func TestCatalog(t *testing.T) {
	h, _ := newTestServer(t, &fakeGenerator{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[catalogResponse](t, rec)
	assert.Len(t, got.HairStyles, len(domain.HairStyles))
	assert.Equal(t, domain.HairColors, got.HairColors)
	assert.Len(t, got.FaceShapes, 4)
	assert.Equal(t, "Round face", got.FaceShapes[0].Label)
	assert.Equal(t, domain.AdviceFor(domain.FaceShapeOval), got.Advice[domain.FaceShapeOval])
	assert.Equal(t, domain.MaxImageCount, got.MaxImages)
}

func TestGenerate_Success(t *testing.T) {
	gen := &fakeGenerator{images: []domain.ImageArtifact{
		domain.NewImageArtifact([]byte("first"), ""),
		domain.NewImageArtifact([]byte("second"), "image/jpeg"),
	}}
	h, images := newTestServer(t, gen)

	req := multipartRequest(t, map[string]string{
		"face_shape":   "square",
		"hair_style":   "two_block",
		"hair_color":   "Smoky grey",
		"description":  "  ",
		"model":        "pro",
		"aspect_ratio": "3:4",
		"resolution":   "2k",
		"image_count":  "2",
	}, map[string][]byte{"original": pngBytes(t)})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[generateResponse](t, rec)
	require.Len(t, got.Images, 2)
	assert.Equal(t, "data:image/png;base64,Zmlyc3Q=", got.Images[0].DataURI)
	assert.True(t, strings.HasPrefix(got.Images[1].DataURI, "data:image/jpeg;base64,"))
	assert.Equal(t, 2, images.Len())
	assert.Empty(t, got.Warning)

	require.Equal(t, 1, gen.callCount())
	opts := gen.calls[0]
	assert.Equal(t, "image/png", opts.OriginalImage.MimeType)
	assert.Nil(t, opts.ReferenceImage)
	assert.Equal(t, domain.FaceShapeSquare, opts.FaceShape)
	assert.Equal(t, "Two Block", opts.HairStyle)
	assert.Equal(t, domain.ModelTierPro, opts.ModelTier)
	assert.Equal(t, domain.AspectRatio3x4, opts.AspectRatio)
	assert.Equal(t, domain.Resolution2K, opts.Resolution)
	assert.Equal(t, 2, opts.ImageCount)

	// ダウンロード URL から同じ画像を取得できる
	dl := httptest.NewRecorder()
	h.ServeHTTP(dl, httptest.NewRequest(http.MethodGet, got.Images[1].DownloadURL, nil))
	assert.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, "image/jpeg", dl.Header().Get("Content-Type"))
	assert.Equal(t, "second", dl.Body.String())
}

func TestGenerate_PartialResultCarriesWarning(t *testing.T) {
	gen := &fakeGenerator{images: []domain.ImageArtifact{domain.NewImageArtifact([]byte("only"), "")}}
	h, _ := newTestServer(t, gen)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, map[string]string{"image_count": "3"}, map[string][]byte{"original": pngBytes(t)}))

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[generateResponse](t, rec)
	assert.Len(t, got.Images, 1)
	assert.Equal(t, "only 1 of 3 requested images were produced", got.Warning)
}

func TestGenerate_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		files  func(t *testing.T) map[string][]byte
	}{
		{
			name:   "missing original",
			fields: map[string]string{"hair_style": "mullet"},
			files:  func(*testing.T) map[string][]byte { return nil },
		},
		{
			name:   "original is not an image",
			fields: map[string]string{},
			files:  func(*testing.T) map[string][]byte { return map[string][]byte{"original": []byte("plain text")} },
		},
		{
			name:   "unknown face shape",
			fields: map[string]string{"face_shape": "triangle"},
			files:  func(t *testing.T) map[string][]byte { return map[string][]byte{"original": pngBytes(t)} },
		},
		{
			name:   "unsupported aspect ratio",
			fields: map[string]string{"aspect_ratio": "2:1"},
			files:  func(t *testing.T) map[string][]byte { return map[string][]byte{"original": pngBytes(t)} },
		},
		{
			name:   "non numeric count",
			fields: map[string]string{"image_count": "many"},
			files:  func(t *testing.T) map[string][]byte { return map[string][]byte{"original": pngBytes(t)} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			h, _ := newTestServer(t, gen)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, multipartRequest(t, tt.fields, tt.files(t)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode[apiError](t, rec).Error)
			assert.Zero(t, gen.callCount())
		})
	}
}

func TestGenerate_FailureMapsToBadGateway(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "configuration", err: &domain.ConfigurationError{Reason: "Gemini API key is not configured"}, want: "Gemini API key is not configured"},
		{name: "no images", err: &domain.NoImagesProducedError{Requested: 1}, want: "No images were produced. Please try again."},
		{name: "other", err: errors.New("boom"), want: "Generation failed. Check the API key or try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestServer(t, &fakeGenerator{err: tt.err})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, multipartRequest(t, nil, map[string][]byte{"original": pngBytes(t)}))

			assert.Equal(t, http.StatusBadGateway, rec.Code)
			assert.Equal(t, tt.want, decode[apiError](t, rec).Error)
		})
	}
}

func TestGenerate_SessionAllowsOneRequestInFlight(t *testing.T) {
	gen := &fakeGenerator{
		images:  []domain.ImageArtifact{domain.NewImageArtifact([]byte("x"), "")},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	h, _ := newTestServer(t, gen)

	// セッションクッキーを取得する
	stateRec := httptest.NewRecorder()
	h.ServeHTTP(stateRec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	cookies := stateRec.Result().Cookies()
	require.Len(t, cookies, 1)

	first := multipartRequest(t, nil, map[string][]byte{"original": pngBytes(t)})
	first.AddCookie(cookies[0])
	firstRec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		h.ServeHTTP(firstRec, first)
		close(done)
	}()
	<-gen.started

	second := multipartRequest(t, nil, map[string][]byte{"original": pngBytes(t)})
	second.AddCookie(cookies[0])
	secondRec := httptest.NewRecorder()
	h.ServeHTTP(secondRec, second)
	assert.Equal(t, http.StatusConflict, secondRec.Code)
	assert.Equal(t, 1, gen.callCount())

	close(gen.release)
	<-done
	assert.Equal(t, http.StatusOK, firstRec.Code)
	assert.Equal(t, 1, gen.callCount())
}

func TestGenerate_ReusesOriginalFromSession(t *testing.T) {
	gen := &fakeGenerator{images: []domain.ImageArtifact{domain.NewImageArtifact([]byte("x"), "")}}
	h, _ := newTestServer(t, gen)

	first := multipartRequest(t, nil, map[string][]byte{"original": pngBytes(t)})
	firstRec := httptest.NewRecorder()
	h.ServeHTTP(firstRec, first)
	require.Equal(t, http.StatusOK, firstRec.Code)
	cookies := firstRec.Result().Cookies()
	require.Len(t, cookies, 1)

	second := multipartRequest(t, map[string]string{"hair_style": "mullet"}, nil)
	second.AddCookie(cookies[0])
	secondRec := httptest.NewRecorder()
	h.ServeHTTP(secondRec, second)

	require.Equal(t, http.StatusOK, secondRec.Code)
	require.Equal(t, 2, gen.callCount())
	assert.Equal(t, "Mullet", gen.calls[1].HairStyle)
	assert.Equal(t, gen.calls[0].OriginalImage, gen.calls[1].OriginalImage)
}

func TestState_ReflectsLastResult(t *testing.T) {
	gen := &fakeGenerator{err: &domain.NoImagesProducedError{Requested: 1}}
	h, _ := newTestServer(t, gen)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, map[string]string{"face_shape": "long"}, map[string][]byte{"original": pngBytes(t)}))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	stateReq := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	stateReq.AddCookie(rec.Result().Cookies()[0])
	stateRec := httptest.NewRecorder()
	h.ServeHTTP(stateRec, stateReq)

	var got map[string]any
	require.NoError(t, json.Unmarshal(stateRec.Body.Bytes(), &got))
	assert.Equal(t, "long", got["face_shape"])
	assert.Equal(t, false, got["loading"])
	assert.Equal(t, true, got["has_original"])
	assert.Equal(t, "No images were produced. Please try again.", got["error"])
	assert.EqualValues(t, 0, got["result_count"])
}

func TestImage_NotFoundAndExpired(t *testing.T) {
	images := cache.NewImageCache(time.Nanosecond, 1)
	srv, err := NewServer(&fakeGenerator{}, images, Options{})
	require.NoError(t, err)
	h, err := srv.Handler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/images/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	id, err := images.StoreImage(domain.NewImageArtifact([]byte("x"), ""))
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/images/"+id, nil))
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestRunJanitor_StopsWithContext(t *testing.T) {
	images := cache.NewImageCache(time.Nanosecond, 1)
	srv, err := NewServer(&fakeGenerator{}, images, Options{})
	require.NoError(t, err)

	_, err = images.StoreImage(domain.NewImageArtifact([]byte("x"), ""))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return images.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	<-done
}
