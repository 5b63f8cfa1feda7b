// Package catalog loads character profiles and resolves ids to characters.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rovelle/charbot/internal/domain"
	"github.com/rovelle/charbot/internal/logging"
)

// ErrEmptyCatalog means no characters could be loaded at startup. Fatal:
// the bot cannot answer without at least one persona.
var ErrEmptyCatalog = errors.New("catalog: no characters available")

// Catalog is an immutable set of characters with a designated default.
// An unknown id silently resolves to the default; this is deliberate
// leniency, not an error path.
type Catalog struct {
	characters map[string]domain.Character
	defaultID  string
	log        *logging.Logger
}

// New builds a catalog from already-loaded characters. The default falls
// back to the lexicographically first id when defaultID is absent.
func New(characters []domain.Character, defaultID string, log *logging.Logger) (*Catalog, error) {
	if len(characters) == 0 {
		return nil, ErrEmptyCatalog
	}

	byID := make(map[string]domain.Character, len(characters))
	for _, ch := range characters {
		byID[ch.ID] = ch
	}

	c := &Catalog{
		characters: byID,
		defaultID:  defaultID,
		log:        log.Sub("catalog"),
	}

	if _, ok := byID[defaultID]; !ok {
		first := c.ids()[0]
		if defaultID != "" {
			c.log.Warn().
				Str("character", defaultID).
				Str("fallback", first).
				Msg("default character not found, using fallback")
		}
		c.defaultID = first
	}

	c.log.Info().
		Int("characters", len(byID)).
		Str("default", c.defaultID).
		Msg("character catalog loaded")
	return c, nil
}

// Load reads every *.yaml / *.yml file in dir as a character profile.
// A file without an explicit id gets the filename stem. An empty or
// missing directory is a startup error.
func Load(dir, defaultID string, log *logging.Logger) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("reading character dir: %w", err)
	}

	var characters []domain.Character
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading character %s: %w", entry.Name(), err)
		}

		var ch domain.Character
		if err := yaml.Unmarshal(data, &ch); err != nil {
			return nil, fmt.Errorf("parsing character %s: %w", entry.Name(), err)
		}
		if ch.ID == "" {
			ch.ID = strings.TrimSuffix(entry.Name(), ext)
		}
		if ch.Name == "" {
			ch.Name = ch.ID
		}
		characters = append(characters, ch)
	}

	return New(characters, defaultID, log)
}

// Get resolves a character id, falling back to the default for unknown ids.
func (c *Catalog) Get(id string) domain.Character {
	if ch, ok := c.characters[id]; ok {
		return ch
	}
	return c.characters[c.defaultID]
}

// Default returns the default character.
func (c *Catalog) Default() domain.Character {
	return c.characters[c.defaultID]
}

// List returns all characters ordered by id.
func (c *Catalog) List() []domain.Character {
	out := make([]domain.Character, 0, len(c.characters))
	for _, id := range c.ids() {
		out = append(out, c.characters[id])
	}
	return out
}

// Len returns the number of characters in the catalog.
func (c *Catalog) Len() int {
	return len(c.characters)
}

func (c *Catalog) ids() []string {
	ids := make([]string, 0, len(c.characters))
	for id := range c.characters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
