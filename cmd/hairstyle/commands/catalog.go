package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/shouni/hairstyle-kit/pkg/domain"
)

var catalogJSON bool

type faceShapeInfo struct {
	ID          domain.FaceShape `yaml:"id" json:"id"`
	Label       string           `yaml:"label" json:"label"`
	Recommended string           `yaml:"recommended" json:"recommended"`
	Avoid       string           `yaml:"avoid" json:"avoid"`
}

type catalogOutput struct {
	HairStyles   []domain.HairStyle   `yaml:"hair_styles" json:"hair_styles"`
	HairColors   []string             `yaml:"hair_colors" json:"hair_colors"`
	FaceShapes   []faceShapeInfo      `yaml:"face_shapes" json:"face_shapes"`
	AspectRatios []domain.AspectRatio `yaml:"aspect_ratios" json:"aspect_ratios"`
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List hairstyles, colours and face shape advice",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCatalog(cmd.OutOrStdout(), catalogJSON)
	},
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "print as JSON instead of YAML")
	rootCmd.AddCommand(catalogCmd)
}

func buildCatalog() catalogOutput {
	out := catalogOutput{
		HairStyles:   domain.HairStyles,
		HairColors:   domain.HairColors,
		AspectRatios: domain.AspectRatios,
	}
	for _, f := range domain.FaceShapes {
		advice := domain.AdviceFor(f)
		out.FaceShapes = append(out.FaceShapes, faceShapeInfo{
			ID:          f,
			Label:       f.Label(),
			Recommended: advice.Recommended,
			Avoid:       advice.Avoid,
		})
	}
	return out
}

func printCatalog(w io.Writer, asJSON bool) error {
	out := buildCatalog()

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	_, err = w.Write(data)
	return err
}
