// Package notebooks seeds the notebook directory from a YAML file.
package notebooks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/copydock/internal/domain"
	"github.com/MrSnakeDoc/copydock/internal/logger"
	"github.com/MrSnakeDoc/copydock/internal/store"
)

// Loader handles loading and validation of the seed file.
type Loader struct {
	filePath string
}

// NewLoader creates a new seed loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads, expands ${ENV} references and validates the seed file.
func (l *Loader) Load() ([]Entry, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read notebooks file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &file); err != nil {
		return nil, fmt.Errorf("failed to parse notebooks yaml: %w", err)
	}

	return validate(file.Notebooks)
}

func validate(entries []Entry) ([]Entry, error) {
	seen := make(map[string]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for i, e := range entries {
		e.ID = strings.TrimSpace(e.ID)
		e.Name = strings.TrimSpace(e.Name)
		e.Description = strings.TrimSpace(e.Description)

		if e.ID == "" || e.Name == "" {
			return nil, fmt.Errorf("notebook #%d: id and name are required", i+1)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("notebook #%d: duplicate id %q", i+1, e.ID)
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out, nil
}

// Creator is the part of the notebook directory the seeder needs.
type Creator interface {
	Create(ctx context.Context, id, name, description string) (domain.Notebook, error)
}

// Apply creates every entry that does not exist yet and returns how many
// were created. Existing ids are left untouched.
func Apply(ctx context.Context, dir Creator, entries []Entry, log logger.Logger) (int, error) {
	created := 0
	for _, e := range entries {
		_, err := dir.Create(ctx, e.ID, e.Name, e.Description)
		switch {
		case err == nil:
			created++
		case errors.Is(err, store.ErrDuplicate):
			log.Debug("seed notebook already exists", logger.String("notebook_id", e.ID))
		default:
			return created, fmt.Errorf("seed notebook %s: %w", e.ID, err)
		}
	}
	return created, nil
}
