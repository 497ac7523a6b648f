// Package pose commits named poses and per-motion pose tracks onto a skeleton.
package pose

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Phase is the state of an Animator.
type Phase int

const (
	// Structural: bones and rest table exist, no pose has been applied.
	Structural Phase = iota
	// PosedDefault: the "default" pose has been committed.
	PosedDefault
	// PosedAnimated: at least one motion has been committed as a track.
	PosedAnimated
)

func (p Phase) String() string {
	switch p {
	case Structural:
		return "structural"
	case PosedDefault:
		return "posed-default"
	case PosedAnimated:
		return "posed-animated"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Transform is a bone's local translation and rotation in one pose.
type Transform struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
}

// Pose is a snapshot of every bone.
type Pose struct {
	Name  string
	Frame int // timeline frame
	Bones map[string]Transform
}

// Track is the ordered poses of one motion, occupying frames Start..End.
type Track struct {
	Name  string
	Start int
	End   int
	Poses []Pose
	// Skipped lists motion parts that named no bone of the skeleton.
	Skipped []string
}

// Len returns the number of poses.
func (t *Track) Len() int {
	return len(t.Poses)
}

// ChickenWalkers maps models with reverse-jointed legs to the X angle, in
// degrees, of their calves in the default pose.
var ChickenWalkers = map[string]float64{
	"cauldron":  0,
	"daishi":    0,
	"puma":      30,
	"supernova": 65,
}

// DefaultCalfAngle is the calf X angle, in degrees, of every other model.
const DefaultCalfAngle = 180.0

// CalfBones are corrected on the default path.
var CalfBones = []string{"rcalf", "lcalf"}

// DiscardLocation lists bones whose authored translations are ignored.
// Applying them makes feet and hands slide.
var DiscardLocation = map[string]bool{
	"rarm": true, "larm": true,
	"rhand": true, "lhand": true,
	"torso":  true,
	"rtoe01": true, "rtoe02": true, "rtoe03": true,
	"ltoe01": true, "ltoe02": true, "ltoe03": true,
	"rcalf": true, "lcalf": true,
}

// CalfAngle returns the corrected calf angle of a model in degrees.
func CalfAngle(model string) float64 {
	if a, ok := ChickenWalkers[model]; ok {
		return a
	}
	return DefaultCalfAngle
}

func (p Pose) clone(name string, frame int) Pose {
	bones := make(map[string]Transform, len(p.Bones))
	for k, v := range p.Bones {
		bones[k] = v
	}
	return Pose{Name: name, Frame: frame, Bones: bones}
}
