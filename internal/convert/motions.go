package convert

import (
	"fmt"
	"strings"

	"mech3-scene/internal/archive"
	"mech3-scene/internal/schema"
)

// motionAliases maps models to the model whose motions they share.
var motionAliases = map[string]string{
	"vulture": "madcat",
}

// MotionPrefix returns the motion archive prefix of a model: low-poly "_1"
// suffixes are trimmed and aliases applied.
func MotionPrefix(model string) string {
	name := strings.Trim(model, "_1")
	if alias, ok := motionAliases[name]; ok {
		return alias
	}
	return name
}

// MotionName derives the motion name of an archive entry
// ("madcat_WALK.json" -> "walk").
func MotionName(entry string) string {
	_, rest, _ := strings.Cut(entry, "_")
	name, _, _ := strings.Cut(rest, ".")
	return strings.ToLower(name)
}

// LoadMotions reads every motion of a model from a motion archive, in
// archive order. A later entry with the same motion name replaces the
// earlier one in place.
func LoadMotions(a *archive.Archive, model string) ([]Motion, error) {
	prefix := MotionPrefix(model)
	var out []Motion
	pos := make(map[string]int)
	for _, entry := range a.Names() {
		if !strings.HasPrefix(entry, prefix) {
			continue
		}
		data, err := a.ReadFile(entry)
		if err != nil {
			return nil, fmt.Errorf("convert: motions: %w", err)
		}
		m, err := schema.DecodeMotion(data)
		if err != nil {
			return nil, fmt.Errorf("convert: motion %s: %w", entry, err)
		}
		name := MotionName(entry)
		if i, ok := pos[name]; ok {
			out[i].Motion = m
			continue
		}
		pos[name] = len(out)
		out = append(out, Motion{Name: name, Motion: m})
	}
	return out, nil
}
