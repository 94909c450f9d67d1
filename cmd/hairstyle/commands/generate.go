package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/shouni/hairstyle-kit/internal/studio"
	"github.com/shouni/hairstyle-kit/pkg/domain"
	"github.com/shouni/hairstyle-kit/pkg/generator"
	"github.com/shouni/hairstyle-kit/pkg/imgutil"
)

// generateRequest は generate コマンドの入力です。-f で YAML/JSON ファイルからも読み込めます。
type generateRequest struct {
	Original    string `yaml:"original" json:"original"`
	Reference   string `yaml:"reference,omitempty" json:"reference,omitempty"`
	FaceShape   string `yaml:"face_shape,omitempty" json:"face_shape,omitempty"`
	Style       string `yaml:"style,omitempty" json:"style,omitempty"`
	Color       string `yaml:"color,omitempty" json:"color,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Model       string `yaml:"model,omitempty" json:"model,omitempty"`
	AspectRatio string `yaml:"aspect_ratio,omitempty" json:"aspect_ratio,omitempty"`
	Resolution  string `yaml:"resolution,omitempty" json:"resolution,omitempty"`
	Count       int    `yaml:"count,omitempty" json:"count,omitempty"`
	Out         string `yaml:"out,omitempty" json:"out,omitempty"`
}

type generatedFile struct {
	Path     string `json:"path,omitempty"`
	MimeType string `json:"mime_type"`
	DataURI  string `json:"data_uri,omitempty"`
}

var (
	genFlags    generateRequest
	genFile     string
	genJSONMode bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate hairstyle variations of a portrait",
	Long: `Generate pictures of the person in --original with a new hairstyle.

Flags override values read from the request file.

Example request file (request.yaml):
  original: ./me.jpg
  reference: ./style.jpg
  face_shape: square
  style: two_block
  color: Smoky grey
  description: keep the natural texture
  model: pro
  aspect_ratio: "3:4"
  resolution: 2K
  count: 2
  out: ./out

Example:
  hairstyle generate -f request.yaml
  hairstyle generate --original me.jpg --style mullet --count 4 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := resolveGenerateRequest(cmd.Flags(), genFile, genFlags)
		if err != nil {
			return err
		}

		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		gen, err := newGenerator(cfg)
		if err != nil {
			return err
		}

		return runGenerate(cmd.Context(), gen, req, genJSONMode, cmd.OutOrStdout())
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genFile, "file", "f", "", "request file (YAML or JSON)")
	bindGenerateFlags(f, &genFlags)
	f.BoolVar(&genJSONMode, "json", false, "print data URIs as JSON instead of writing files")

	rootCmd.AddCommand(generateCmd)
}

func bindGenerateFlags(f *pflag.FlagSet, req *generateRequest) {
	f.StringVar(&req.Original, "original", "", "original portrait image (required)")
	f.StringVar(&req.Reference, "reference", "", "optional reference hairstyle image")
	f.StringVar(&req.FaceShape, "face-shape", "", "face shape: round, long, square, oval")
	f.StringVar(&req.Style, "style", "", "hairstyle id (see 'hairstyle catalog')")
	f.StringVar(&req.Color, "color", "", "hair colour")
	f.StringVar(&req.Description, "description", "", "extra free-text description")
	f.StringVar(&req.Model, "model", "", "model tier: standard, pro")
	f.StringVar(&req.AspectRatio, "aspect-ratio", "", "aspect ratio: 9:16, 16:9, 4:3, 3:4, 1:1")
	f.StringVar(&req.Resolution, "resolution", "", "resolution for the pro model: 1K, 2K")
	f.IntVarP(&req.Count, "count", "n", 0, "number of images (1-4)")
	f.StringVarP(&req.Out, "out", "o", "", "output directory (default current directory)")
}

// resolveGenerateRequest はファイルの値に、明示的に指定されたフラグを上書きします。
func resolveGenerateRequest(flags *pflag.FlagSet, file string, fromFlags generateRequest) (generateRequest, error) {
	var req generateRequest
	if file != "" {
		if err := loadRequest(file, &req); err != nil {
			return generateRequest{}, err
		}
		// ファイル内の相対パスはファイルの場所を基準にする
		base := filepath.Dir(file)
		req.Original = resolvePath(base, req.Original)
		req.Reference = resolvePath(base, req.Reference)
		req.Out = resolvePath(base, req.Out)
	}

	overrides := []struct {
		name string
		dst  *string
		src  string
	}{
		{"original", &req.Original, fromFlags.Original},
		{"reference", &req.Reference, fromFlags.Reference},
		{"face-shape", &req.FaceShape, fromFlags.FaceShape},
		{"style", &req.Style, fromFlags.Style},
		{"color", &req.Color, fromFlags.Color},
		{"description", &req.Description, fromFlags.Description},
		{"model", &req.Model, fromFlags.Model},
		{"aspect-ratio", &req.AspectRatio, fromFlags.AspectRatio},
		{"resolution", &req.Resolution, fromFlags.Resolution},
		{"out", &req.Out, fromFlags.Out},
	}
	for _, o := range overrides {
		if flags.Changed(o.name) {
			*o.dst = o.src
		}
	}
	if flags.Changed("count") {
		req.Count = fromFlags.Count
	}

	if strings.TrimSpace(req.Original) == "" {
		return generateRequest{}, fmt.Errorf("original image is required, use --original or the 'original' field")
	}
	return req, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// loadRequest は YAML または JSON のリクエストファイルを読み込みます。
func loadRequest(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	}
	return nil
}

// runGenerate は Studio にリクエストを反映して1回生成し、結果をファイルまたは JSON で出力します。
func runGenerate(ctx context.Context, gen generator.ImageGenerator, req generateRequest, jsonMode bool, w io.Writer) error {
	st := studio.New()
	if err := applyRequest(st, req); err != nil {
		return err
	}

	images, err := st.Submit(ctx, gen)
	if err != nil {
		return fmt.Errorf("%s: %w", studio.UserMessage(err), err)
	}

	if jsonMode {
		out := make([]generatedFile, 0, len(images))
		for _, img := range images {
			out = append(out, generatedFile{MimeType: img.MimeType, DataURI: img.DataURI()})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"images": out})
	}

	paths, err := writeImages(req.Out, images)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(w, p)
	}
	if req.Count > len(paths) {
		fmt.Fprintf(w, "note: %d of %d requested images were produced\n", len(paths), req.Count)
	}
	return nil
}

func applyRequest(st *studio.Studio, req generateRequest) error {
	original, err := readImage(req.Original)
	if err != nil {
		return err
	}
	st.SetOriginal(original)

	if req.Reference != "" {
		ref, err := readImage(req.Reference)
		if err != nil {
			return err
		}
		st.SetReference(&ref)
	}

	if req.FaceShape != "" {
		f, err := domain.ParseFaceShape(req.FaceShape)
		if err != nil {
			return err
		}
		st.SetFaceShape(f)
	}
	if req.Style != "" {
		st.SetStyle(req.Style)
	}
	if req.Color != "" {
		st.SetHairColor(req.Color)
	}
	st.SetDescription(req.Description)
	if req.Model != "" {
		m, err := domain.ParseModelTier(req.Model)
		if err != nil {
			return err
		}
		st.SetModelTier(m)
	}
	if req.AspectRatio != "" {
		a, err := domain.ParseAspectRatio(req.AspectRatio)
		if err != nil {
			return err
		}
		st.SetAspectRatio(a)
	}
	if req.Resolution != "" {
		r, err := domain.ParseResolution(req.Resolution)
		if err != nil {
			return err
		}
		st.SetResolution(r)
	}
	if req.Count != 0 {
		if req.Count < domain.MinImageCount || req.Count > domain.MaxImageCount {
			return fmt.Errorf("%w: count must be between %d and %d", domain.ErrInvalidOption, domain.MinImageCount, domain.MaxImageCount)
		}
		st.SetImageCount(req.Count)
	}
	return nil
}

func readImage(path string) (domain.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Image{}, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	info, err := imgutil.Inspect(data)
	if err != nil {
		return domain.Image{}, fmt.Errorf("%s: %w", path, err)
	}
	return domain.Image{Data: data, MimeType: info.MimeType}, nil
}

// writeImages は画像を hairstyle-<n>.<ext> として dir に保存し、保存先のパスを返します。
func writeImages(dir string, images []domain.ImageArtifact) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	paths := make([]string, 0, len(images))
	for i, img := range images {
		p := filepath.Join(dir, fmt.Sprintf("hairstyle-%d%s", i+1, imgutil.ExtensionFor(img.MimeType)))
		if err := os.WriteFile(p, img.Data, 0o644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
