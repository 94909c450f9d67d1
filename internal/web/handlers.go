package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/shouni/hairstyle-kit/internal/cache"
	"github.com/shouni/hairstyle-kit/internal/studio"
	"github.com/shouni/hairstyle-kit/pkg/domain"
	"github.com/shouni/hairstyle-kit/pkg/imgutil"
)

type apiError struct {
	Error string `json:"error"`
}

type catalogResponse struct {
	HairStyles   []domain.HairStyle                          `json:"hair_styles"`
	HairColors   []string                                    `json:"hair_colors"`
	FaceShapes   []faceShapeEntry                            `json:"face_shapes"`
	Advice       map[domain.FaceShape]domain.FaceShapeAdvice `json:"advice"`
	AspectRatios []domain.AspectRatio                        `json:"aspect_ratios"`
	Models       []domain.ModelTier                          `json:"models"`
	Resolutions  []domain.Resolution                         `json:"resolutions"`
	MaxImages    int                                         `json:"max_images"`
}

type faceShapeEntry struct {
	ID    domain.FaceShape `json:"id"`
	Label string           `json:"label"`
}

type generatedImage struct {
	DataURI     string `json:"data_uri"`
	DownloadURL string `json:"download_url"`
}

type generateResponse struct {
	Images  []generatedImage `json:"images"`
	Warning string           `json:"warning,omitempty"`
}

type stateResponse struct {
	studio.Snapshot
	ResultCount int `json:"result_count"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	resp := catalogResponse{
		HairStyles:   domain.HairStyles,
		HairColors:   domain.HairColors,
		Advice:       make(map[domain.FaceShape]domain.FaceShapeAdvice, len(domain.FaceShapes)),
		AspectRatios: domain.AspectRatios,
		Models:       []domain.ModelTier{domain.ModelTierStandard, domain.ModelTierPro},
		Resolutions:  []domain.Resolution{domain.Resolution1K, domain.Resolution2K},
		MaxImages:    domain.MaxImageCount,
	}
	for _, f := range domain.FaceShapes {
		resp.FaceShapes = append(resp.FaceShapes, faceShapeEntry{ID: f, Label: f.Label()})
		resp.Advice[f] = domain.AdviceFor(f)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := s.studioFor(w, r).Snapshot()
	writeJSON(w, http.StatusOK, stateResponse{Snapshot: snap, ResultCount: len(snap.Results)})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid multipart form"})
		return
	}

	st := s.studioFor(w, r)
	if st.Snapshot().Loading {
		writeJSON(w, http.StatusConflict, apiError{Error: studio.ErrBusy.Error()})
		return
	}

	if err := applyForm(st, r); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	images, err := st.Submit(r.Context(), s.gen)
	switch {
	case errors.Is(err, studio.ErrBusy):
		writeJSON(w, http.StatusConflict, apiError{Error: err.Error()})
		return
	case errors.Is(err, studio.ErrMissingOriginal), errors.Is(err, domain.ErrInvalidOption):
		writeJSON(w, http.StatusBadRequest, apiError{Error: studio.UserMessage(err)})
		return
	case err != nil:
		s.logger.WarnContext(r.Context(), "画像生成に失敗しました", "error", err)
		writeJSON(w, http.StatusBadGateway, apiError{Error: studio.UserMessage(err)})
		return
	}

	resp := generateResponse{Images: make([]generatedImage, 0, len(images))}
	if requested := st.Snapshot().ImageCount; len(images) < requested {
		resp.Warning = fmt.Sprintf("only %d of %d requested images were produced", len(images), requested)
	}
	for _, img := range images {
		out := generatedImage{DataURI: img.DataURI()}
		if id, err := s.images.StoreImage(img); err == nil {
			out.DownloadURL = "/api/images/" + id
		} else {
			s.logger.WarnContext(r.Context(), "画像をキャッシュできませんでした", "error", err)
		}
		resp.Images = append(resp.Images, out)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	img, err := s.images.GetImage(id)
	switch {
	case errors.Is(err, cache.ErrImageNotFound):
		http.Error(w, "Image not found", http.StatusNotFound)
		return
	case errors.Is(err, cache.ErrImageExpired):
		http.Error(w, "Image expired", http.StatusGone)
		return
	case err != nil:
		http.Error(w, "Failed to retrieve image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="hairstyle-%s%s"`, id, imgutil.ExtensionFor(img.MimeType)))
	_, _ = w.Write(img.Data)
}

// applyForm はフォームの値を Studio の選択に反映します。空のフィールドは現在の選択を維持します。
func applyForm(st *studio.Studio, r *http.Request) error {
	original, err := readUpload(r, "original")
	if err != nil {
		return err
	}
	if original != nil {
		st.SetOriginal(*original)
	}

	reference, err := readUpload(r, "reference")
	if err != nil {
		return err
	}
	if reference != nil {
		st.SetReference(reference)
	} else if parseBool(r.FormValue("clear_reference")) {
		st.SetReference(nil)
	}

	if v := strings.TrimSpace(r.FormValue("face_shape")); v != "" {
		f, err := domain.ParseFaceShape(v)
		if err != nil {
			return err
		}
		st.SetFaceShape(f)
	}
	if v := strings.TrimSpace(r.FormValue("hair_style")); v != "" {
		st.SetStyle(v)
	}
	if v := strings.TrimSpace(r.FormValue("hair_color")); v != "" {
		st.SetHairColor(v)
	}
	if _, ok := r.MultipartForm.Value["description"]; ok {
		st.SetDescription(r.FormValue("description"))
	}
	if v := strings.TrimSpace(r.FormValue("model")); v != "" {
		m, err := domain.ParseModelTier(v)
		if err != nil {
			return err
		}
		st.SetModelTier(m)
	}
	if v := strings.TrimSpace(r.FormValue("aspect_ratio")); v != "" {
		a, err := domain.ParseAspectRatio(v)
		if err != nil {
			return err
		}
		st.SetAspectRatio(a)
	}
	if v := strings.TrimSpace(r.FormValue("resolution")); v != "" {
		res, err := domain.ParseResolution(v)
		if err != nil {
			return err
		}
		st.SetResolution(res)
	}
	if v := strings.TrimSpace(r.FormValue("image_count")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: image_count must be a number", domain.ErrInvalidOption)
		}
		st.SetImageCount(n)
	}
	return nil
}

// readUpload はフィールドが無い場合に nil を返します。
func readUpload(r *http.Request, field string) (*domain.Image, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	info, err := imgutil.Inspect(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &domain.Image{Data: data, MimeType: info.MimeType}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseBool(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}
