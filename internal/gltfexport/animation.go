package gltfexport

import (
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"mech3-scene/internal/pose"
)

// animation adds one glTF animation per track with a STEP sampler for the
// translation and rotation of every bone. Times start at zero for each
// track, so every track plays on its own.
func (e *exporter) animation(tr *pose.Track) {
	if tr.Len() == 0 {
		return
	}
	times := make([]float32, tr.Len())
	for i, p := range tr.Poses {
		times[i] = float32(float64(p.Frame-tr.Start) / e.opts.FPS)
	}
	input := modeler.WriteAccessor(e.doc, gltf.TargetNone, times)
	e.doc.Accessors[input].Min = []float64{float64(times[0])}
	e.doc.Accessors[input].Max = []float64{float64(times[len(times)-1])}

	anim := &gltf.Animation{Name: tr.Name}
	for _, b := range e.sc.Skeleton.Bones {
		node, ok := e.boneNodes[b.Name]
		if !ok {
			continue
		}
		trans := make([][3]float32, tr.Len())
		rot := make([][4]float32, tr.Len())
		for i, p := range tr.Poses {
			t := p.Bones[b.Name]
			trans[i] = [3]float32{float32(t.Translation[0]), float32(t.Translation[1]), float32(t.Translation[2])}
			rot[i] = [4]float32{float32(t.Rotation.V[0]), float32(t.Rotation.V[1]), float32(t.Rotation.V[2]), float32(t.Rotation.W)}
		}
		e.channel(anim, input, node, gltf.TRSTranslation, modeler.WriteAccessor(e.doc, gltf.TargetNone, trans))
		e.channel(anim, input, node, gltf.TRSRotation, modeler.WriteAccessor(e.doc, gltf.TargetNone, rot))
	}
	e.doc.Animations = append(e.doc.Animations, anim)
}

func (e *exporter) channel(anim *gltf.Animation, input, node uint32, path gltf.TRSProperty, output uint32) {
	anim.Samplers = append(anim.Samplers, &gltf.AnimationSampler{
		Input:         input,
		Output:        output,
		Interpolation: gltf.InterpolationStep,
	})
	anim.Channels = append(anim.Channels, &gltf.AnimationChannel{
		Sampler: uint32(len(anim.Samplers) - 1),
		Target:  gltf.AnimationChannelTarget{Node: gltf.Index(node), Path: path},
	})
}
