package main

import (
	"fmt"
	"math"
	"os"

	"mech3-scene/internal/archive"
	"mech3-scene/internal/convert"
	"mech3-scene/internal/logging"
	"mech3-scene/internal/scene"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: inspect <mechlib.zip|gamez.zip> [model]\n")
		os.Exit(1)
	}
	path := os.Args[1]
	opts := convert.Options{Logger: logging.New(os.Stderr, "warn")}

	var sc *scene.Scene
	var err error
	switch {
	case len(os.Args) > 2:
		sc, err = convert.RunMechlib(path, os.Args[2], opts)
	case isGamez(path):
		sc, err = convert.RunGamez(path, opts)
	default:
		models, err := convert.Models(path)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Models: %d\n", len(models))
		for _, m := range models {
			fmt.Printf("  %s\n", m)
		}
		return
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(sc.Summary())
	for i, m := range sc.Meshes {
		minX, minY, minZ := math.Inf(1), math.Inf(1), math.Inf(1)
		maxX, maxY, maxZ := math.Inf(-1), math.Inf(-1), math.Inf(-1)
		for _, v := range m.Vertices {
			minX, maxX = math.Min(minX, v[0]), math.Max(maxX, v[0])
			minY, maxY = math.Min(minY, v[1]), math.Max(maxY, v[1])
			minZ, maxZ = math.Min(minZ, v[2]), math.Max(maxZ, v[2])
		}
		fmt.Printf("  Mesh[%d] %s: verts=%d, faces=%d, slots=%d, skipped=%d\n",
			i, m.Name, len(m.Vertices), len(m.Faces), len(m.Textures), len(m.Skipped))
		if len(m.Vertices) > 0 {
			fmt.Printf("    bbox: X[%.2f, %.2f] Y[%.2f, %.2f] Z[%.2f, %.2f]\n",
				minX, maxX, minY, maxY, minZ, maxZ)
		}
		for _, s := range m.Skipped {
			fmt.Printf("    polygon %d (ptr %d): %v\n", s.Polygon, s.Ptr, s.Err)
		}
	}

	if sc.Skeleton != nil {
		world := sc.Skeleton.WorldMatrices()
		fmt.Printf("Bones: %d\n", sc.Skeleton.Len())
		for _, b := range sc.Skeleton.Bones {
			parent := "-"
			if b.Parent != nil {
				parent = b.Parent.Name
			}
			p := world[b.Index].Col(3)
			fmt.Printf("  [%d] %-12s parent=%-12s world=(%.2f, %.2f, %.2f)\n",
				b.Index, b.Name, parent, p[0], p[1], p[2])
		}
	}
	for _, tr := range sc.Tracks {
		fmt.Printf("Track %s: frames %d-%d, skipped parts %v\n", tr.Name, tr.Start, tr.End, tr.Skipped)
	}
}

func isGamez(path string) bool {
	a, err := archive.Open(path)
	if err != nil {
		return false
	}
	defer a.Close()
	return a.Has(convert.NodesEntry)
}
