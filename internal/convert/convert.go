// Package convert runs whole conversions: it wires the tree, skeleton, mesh,
// material and pose builders into a scene for one model or world.
package convert

import (
	"fmt"

	"github.com/charmbracelet/log"

	"mech3-scene/internal/logging"
	"mech3-scene/internal/nodetree"
	"mech3-scene/internal/schema"
)

// Options control one conversion run.
type Options struct {
	Logger *log.Logger

	// TextureArchives are searched in order; the first hit wins.
	TextureArchives []string
	// MotionArchive is optional (mechlib only).
	MotionArchive string
	// Scheme is the node addressing of mechlib models. Gamez worlds always
	// use parent back-pointers.
	Scheme nodetree.Scheme
}

func (o Options) logger() *log.Logger {
	return logging.Or(o.Logger)
}

// Motion is a named motion of one model.
type Motion struct {
	Name   string
	Motion *schema.Motion
}

func meshAt(meshes []schema.MeshData, index int, owner string) (*schema.MeshData, error) {
	if index < 0 || index >= len(meshes) {
		return nil, fmt.Errorf("convert: %s: mesh index %d out of range [0,%d): %w",
			owner, index, len(meshes), schema.ErrMalformedInput)
	}
	return &meshes[index], nil
}
