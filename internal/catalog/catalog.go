// Package catalog holds the fixed option lists of the recommendation forms.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Choice struct {
	Default string   `yaml:"default" json:"default"`
	Options []string `yaml:"options" json:"options"`
}

type Catalog struct {
	Soils              Choice   `yaml:"soils" json:"soils"`
	FertilizerCrops    Choice   `yaml:"fertilizer_crops" json:"fertilizer_crops"`
	RecommendableCrops []string `yaml:"recommendable_crops" json:"recommendable_crops"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	for name, choice := range map[string]Choice{"soils": c.Soils, "fertilizer_crops": c.FertilizerCrops} {
		if len(choice.Options) == 0 {
			return fmt.Errorf("%s: no options", name)
		}
		if choice.Default != "" && lookup(choice.Options, choice.Default) == "" {
			return fmt.Errorf("%s: default %q is not an option", name, choice.Default)
		}
	}
	return nil
}

// ResolveFertilizerInput fills blank soil and crop with the form defaults
// and normalises case to the catalog spelling.
func (c *Catalog) ResolveFertilizerInput(in *entities.FertilizerInput) error {
	soil, err := resolve(c.Soils, in.SoilType, "soil_type")
	if err != nil {
		return err
	}
	crop, err := resolve(c.FertilizerCrops, in.CropType, "crop_type")
	if err != nil {
		return err
	}
	in.SoilType = soil
	in.CropType = crop
	return nil
}

func resolve(choice Choice, value, field string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if choice.Default == "" {
			return "", entities.ValidationError{Field: field, Reason: "is required"}
		}
		return choice.Default, nil
	}
	if match := lookup(choice.Options, value); match != "" {
		return match, nil
	}
	return "", entities.ValidationError{
		Field:  field,
		Reason: fmt.Sprintf("must be one of: %s", strings.Join(choice.Options, ", ")),
	}
}

func lookup(options []string, value string) string {
	for _, opt := range options {
		if strings.EqualFold(opt, value) {
			return opt
		}
	}
	return ""
}
