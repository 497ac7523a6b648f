// Package gltfexport maps a converted scene onto a glTF 2.0 document.
package gltfexport

import (
	"bytes"
	"fmt"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"mech3-scene/internal/logging"
	"mech3-scene/internal/material"
	"mech3-scene/internal/mesh"
	"mech3-scene/internal/pose"
	"mech3-scene/internal/scene"
	"mech3-scene/internal/texture"
)

// ExtTextureWebP is the glTF extension for WebP image sources.
const ExtTextureWebP = "EXT_texture_webp"

// DefaultFPS is the playback rate of pose tracks.
const DefaultFPS = 24

// Options control the export.
type Options struct {
	Logger *log.Logger
	// WebP embeds textures as lossless WebP instead of PNG.
	WebP bool
	// FPS converts track frames to seconds. Zero means DefaultFPS.
	FPS float64
}

type exporter struct {
	opts Options
	sc   *scene.Scene
	doc  *gltf.Document

	images    map[*texture.Image]uint32
	materials map[*material.Material]uint32
	meshes    map[*mesh.Mesh]uint32
	boneNodes map[string]uint32
}

// Export builds a glTF document from a scene. Bones become nodes under one
// armature node; hidden objects and hidden collections are left out.
func Export(sc *scene.Scene, opts Options) (*gltf.Document, error) {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	e := &exporter{
		opts:      opts,
		sc:        sc,
		doc:       gltf.NewDocument(),
		images:    make(map[*texture.Image]uint32),
		materials: make(map[*material.Material]uint32),
		meshes:    make(map[*mesh.Mesh]uint32),
		boneNodes: make(map[string]uint32),
	}
	e.doc.Asset.Generator = "mech3-scene"

	for _, m := range sc.Materials {
		if _, err := e.material(m); err != nil {
			return nil, err
		}
	}
	if sc.Skeleton != nil {
		e.skeleton()
	}
	if err := e.objects(); err != nil {
		return nil, err
	}
	for _, tr := range sc.Tracks {
		e.animation(tr)
	}

	logging.Or(opts.Logger).Debug("gltf built", "scene", sc.Name,
		"nodes", len(e.doc.Nodes), "meshes", len(e.doc.Meshes), "animations", len(e.doc.Animations))
	return e.doc, nil
}

// Save writes the document; a ".glb" path is written as binary glTF.
// Other paths get a single .gltf file with buffers embedded as data URIs.
func Save(doc *gltf.Document, path string) error {
	var err error
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		err = gltf.SaveBinary(doc, path)
	} else {
		err = gltf.Save(embedded(doc), path)
	}
	if err != nil {
		return fmt.Errorf("gltfexport: save %s: %w", path, err)
	}
	return nil
}

// embedded returns a shallow copy of doc whose URI-less buffers carry their
// data as base64 data URIs. doc itself is left untouched.
func embedded(doc *gltf.Document) *gltf.Document {
	out := *doc
	out.Buffers = make([]*gltf.Buffer, len(doc.Buffers))
	for i, b := range doc.Buffers {
		cp := *b
		if cp.URI == "" {
			cp.EmbeddedResource()
		}
		out.Buffers[i] = &cp
	}
	return &out
}

// addNode appends n under parent, or to the scene when parent is nil.
func (e *exporter) addNode(n *gltf.Node, parent *uint32) uint32 {
	idx := uint32(len(e.doc.Nodes))
	e.doc.Nodes = append(e.doc.Nodes, n)
	if parent == nil {
		e.doc.Scenes[0].Nodes = append(e.doc.Scenes[0].Nodes, idx)
	} else {
		e.doc.Nodes[*parent].Children = append(e.doc.Nodes[*parent].Children, idx)
	}
	return idx
}

func trsNode(name string, t mgl64.Vec3, r mgl64.Quat, s float64) *gltf.Node {
	return &gltf.Node{
		Name:        name,
		Translation: [3]float64{t[0], t[1], t[2]},
		Rotation:    [4]float64{r.V[0], r.V[1], r.V[2], r.W},
		Scale:       [3]float64{s, s, s},
	}
}

// skeleton adds the armature and one node per bone, posed with the default
// pose.
func (e *exporter) skeleton() {
	root := e.addNode(trsNode(e.sc.Name, mgl64.Vec3{}, mgl64.QuatIdent(), 1), nil)
	skel := e.sc.Skeleton
	for _, b := range skel.Bones {
		t := pose.Transform{Translation: skel.Rest[b.Name].Translation, Rotation: skel.Rest[b.Name].Rotation}
		if e.sc.DefaultPose != nil {
			if p, ok := e.sc.DefaultPose.Bones[b.Name]; ok {
				t = p
			}
		}
		parent := root
		if b.Parent != nil {
			parent = e.boneNodes[b.Parent.Name]
		}
		e.boneNodes[b.Name] = e.addNode(trsNode(b.Name, t.Translation, t.Rotation, 1), &parent)
	}
}

func (e *exporter) objects() error {
	nodes := make(map[int]uint32, len(e.sc.Objects))
	for i := range e.sc.Objects {
		if !e.sc.Visible(i) {
			continue
		}
		o := &e.sc.Objects[i]
		n := trsNode(o.Name, o.Location, o.Rotation, o.Scale)
		if o.Mesh != nil {
			mi, ok, err := e.mesh(o.Mesh)
			if err != nil {
				return err
			}
			if ok {
				n.Mesh = gltf.Index(mi)
			}
		}

		var parent *uint32
		switch {
		case o.Bone != "":
			bn, ok := e.boneNodes[o.Bone]
			if !ok {
				return fmt.Errorf("gltfexport: object %q: no bone %q", o.Name, o.Bone)
			}
			parent = &bn
		case o.Parent >= 0:
			pn := nodes[o.Parent]
			parent = &pn
		}
		nodes[i] = e.addNode(n, parent)
	}
	return nil
}

func (e *exporter) material(m *material.Material) (uint32, error) {
	if idx, ok := e.materials[m]; ok {
		return idx, nil
	}
	gm := &gltf.Material{
		Name:        m.Name,
		DoubleSided: m.ShowBackface,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			MetallicFactor: gltf.Float(0),
		},
	}
	if m.BlendAlpha {
		gm.AlphaMode = gltf.AlphaBlend
	}
	if m.Textured() {
		tex, err := e.texture(m.Image)
		if err != nil {
			return 0, fmt.Errorf("gltfexport: material %q: %w", m.Name, err)
		}
		gm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: tex}
	} else {
		c := m.Color
		gm.PBRMetallicRoughness.BaseColorFactor = &c
	}
	idx := uint32(len(e.doc.Materials))
	e.doc.Materials = append(e.doc.Materials, gm)
	e.materials[m] = idx
	return idx, nil
}

// texture embeds an image once and returns the texture index.
func (e *exporter) texture(img *texture.Image) (uint32, error) {
	if idx, ok := e.images[img]; ok {
		return idx, nil
	}
	var buf bytes.Buffer
	mime := "image/png"
	if e.opts.WebP {
		mime = "image/webp"
		if err := nativewebp.Encode(&buf, img.Pixels, nil); err != nil {
			return 0, fmt.Errorf("webp encode %s: %w", img.Name, err)
		}
	} else if err := png.Encode(&buf, img.Pixels); err != nil {
		return 0, fmt.Errorf("png encode %s: %w", img.Name, err)
	}
	imgIdx, err := modeler.WriteImage(e.doc, img.Name, mime, &buf)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", img.Name, err)
	}

	t := &gltf.Texture{Name: img.Name}
	if e.opts.WebP {
		t.Extensions = gltf.Extensions{ExtTextureWebP: map[string]uint32{"source": imgIdx}}
		e.useExtension(ExtTextureWebP)
	} else {
		t.Source = gltf.Index(imgIdx)
	}
	idx := uint32(len(e.doc.Textures))
	e.doc.Textures = append(e.doc.Textures, t)
	e.images[img] = idx
	return idx, nil
}

func (e *exporter) useExtension(name string) {
	for _, u := range e.doc.ExtensionsUsed {
		if u == name {
			return
		}
	}
	e.doc.ExtensionsUsed = append(e.doc.ExtensionsUsed, name)
	e.doc.ExtensionsRequired = append(e.doc.ExtensionsRequired, name)
}
