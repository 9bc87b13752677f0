package catalog

import (
	"fmt"
	"io"
	"os"

	validator "github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Proton-105/cocktail-bot/internal/domain"
	"github.com/Proton-105/cocktail-bot/internal/textmatch"
)

// SeedFile is the on-disk catalog layout.
type SeedFile struct {
	Cocktails []domain.Cocktail `yaml:"cocktails" validate:"required,min=1,dive"`
}

// LoadFile reads and validates a YAML catalog from path.
func LoadFile(path string) ([]domain.Cocktail, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	items, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}

	return items, nil
}

// Decode parses a YAML catalog, validates every record and rejects duplicate names.
func Decode(r io.Reader) ([]domain.Cocktail, error) {
	var seed SeedFile

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(seed); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	seen := make(map[string]int, len(seed.Cocktails))
	ids := make(map[int64]int, len(seed.Cocktails))
	for i, item := range seed.Cocktails {
		key := textmatch.Normalize(item.Name)
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("validate catalog: %q at position %d duplicates position %d", item.Name, i+1, prev+1)
		}
		seen[key] = i

		if !item.HasID() {
			continue
		}
		if prev, ok := ids[item.ID]; ok {
			return nil, fmt.Errorf("validate catalog: id %d at position %d duplicates position %d", item.ID, i+1, prev+1)
		}
		ids[item.ID] = i
	}

	return seed.Cocktails, nil
}
