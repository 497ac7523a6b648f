// Package material resolves global material indices into material handles.
package material

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"mech3-scene/internal/logging"
	"mech3-scene/internal/schema"
	"mech3-scene/internal/texture"
)

// Producer selects the naming and blending rules of the dump that produced
// the materials.
type Producer int

const (
	Mechlib Producer = iota
	Gamez
)

func (p Producer) String() string {
	switch p {
	case Mechlib:
		return "mechlib"
	case Gamez:
		return "gamez"
	}
	return fmt.Sprintf("Producer(%d)", int(p))
}

// ParseProducer maps a config name to a Producer.
func ParseProducer(name string) (Producer, error) {
	switch strings.ToLower(name) {
	case "mechlib":
		return Mechlib, nil
	case "gamez":
		return Gamez, nil
	}
	return 0, fmt.Errorf("material: unknown producer %q", name)
}

// Material is a resolved material handle. Handles are compared by identity.
type Material struct {
	Index int
	Name  string

	// Color is set for solid color materials (unit RGBA).
	Color [4]float64
	// Image is set for textured materials.
	Image *texture.Image

	BlendAlpha   bool
	ShowBackface bool
}

// Textured reports whether the material is image backed.
func (m *Material) Textured() bool {
	return m.Image != nil
}

// TextureLookup finds texture images by stem.
type TextureLookup interface {
	Len() int
	Lookup(stem string) (*texture.Image, error)
}

// Cache lazily resolves material indices. Each index is computed once;
// later calls return the same handle.
type Cache struct {
	Logger *log.Logger

	mu        sync.RWMutex
	specs     []schema.MaterialSpec
	producer  Producer
	textures  TextureLookup
	resolved  map[int]*Material
	missCount int
}

// NewCache creates a cache over the material table of one conversion run.
// textures may be nil when no texture archives are configured.
func NewCache(specs []schema.MaterialSpec, producer Producer, textures TextureLookup) *Cache {
	return &Cache{
		specs:    specs,
		producer: producer,
		textures: textures,
		resolved: make(map[int]*Material),
	}
}

// Resolve returns the material for a global index, building it on first use.
func (c *Cache) Resolve(index int) (*Material, error) {
	// Fast path: read lock
	c.mu.RLock()
	if m, ok := c.resolved[index]; ok {
		c.mu.RUnlock()
		return m, nil
	}
	c.mu.RUnlock()

	// Slow path: build under the write lock so each index is built once
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.resolved[index]; ok {
		return m, nil
	}

	m, err := c.build(index)
	if err != nil {
		return nil, err
	}
	c.resolved[index] = m
	return m, nil
}

func (c *Cache) build(index int) (*Material, error) {
	if index < 0 || index >= len(c.specs) {
		return nil, fmt.Errorf("material: index %d out of range [0,%d): %w",
			index, len(c.specs), schema.ErrMalformedInput)
	}
	spec := c.specs[index]

	switch {
	case spec.Colored != nil:
		return &Material{
			Index:        index,
			Name:         fmt.Sprintf("material_%d", index),
			Color:        spec.Colored.Color.Unit(),
			ShowBackface: true,
		}, nil
	case spec.Textured != nil:
		return c.buildTextured(index, spec.Textured)
	}
	return nil, fmt.Errorf("material: index %d is neither colored nor textured: %w",
		index, schema.ErrMalformedInput)
}

func (c *Cache) buildTextured(index int, t *schema.Textured) (*Material, error) {
	stem := t.Texture
	name := t.Texture
	m := &Material{Index: index, ShowBackface: true}

	if c.producer == Gamez {
		stem, _, _ = strings.Cut(t.Texture, ".")
		name = stem + " " + t.Flag
		m.BlendAlpha = true
		m.ShowBackface = false
	}
	m.Name = name

	if c.textures == nil || c.textures.Len() == 0 {
		m.Image = texture.Placeholder()
		return m, nil
	}

	img, err := c.textures.Lookup(stem)
	switch {
	case errors.Is(err, texture.ErrNotFound):
		logging.Or(c.Logger).Warn("texture not found", "texture", stem, "material", index)
		c.missCount++
		m.Image = texture.Placeholder()
	case err != nil:
		return nil, fmt.Errorf("material: resolve %d: %w", index, err)
	default:
		m.Image = img
	}
	return m, nil
}

// Len returns the number of resolved entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.resolved)
}

// Missing returns how many textures fell back to the placeholder.
func (c *Cache) Missing() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.missCount
}

// Resolved returns the resolved materials ordered by global index.
func (c *Cache) Resolved() []*Material {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Material, 0, len(c.resolved))
	for _, m := range c.resolved {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b *Material) int { return a.Index - b.Index })
	return out
}
