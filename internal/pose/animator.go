package pose

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"mech3-scene/internal/logging"
	"mech3-scene/internal/mathutil"
	"mech3-scene/internal/schema"
	"mech3-scene/internal/skeleton"
)

// ErrPhase is returned when an operation is called out of order.
var ErrPhase = errors.New("pose: wrong phase")

// Animator drives one skeleton through its phases: Default once, then
// Animate once per motion. Motions are independent and never blend.
type Animator struct {
	Logger *log.Logger

	skel   *skeleton.Skeleton
	model  string
	phase  Phase
	def    Pose
	tracks []*Track
	next   int // first free timeline frame
}

// NewAnimator returns an animator in the Structural phase.
func NewAnimator(skel *skeleton.Skeleton, model string) *Animator {
	return &Animator{skel: skel, model: model, next: 1}
}

// Phase returns the current phase.
func (a *Animator) Phase() Phase {
	return a.phase
}

// Tracks returns the committed motion tracks in timeline order.
func (a *Animator) Tracks() []*Track {
	return a.tracks
}

// DefaultPose returns the committed "default" pose.
func (a *Animator) DefaultPose() Pose {
	return a.def
}

// rest returns every bone at its rest transform.
func (a *Animator) rest() Pose {
	p := Pose{Bones: make(map[string]Transform, a.skel.Len())}
	for _, b := range a.skel.Bones {
		r := a.skel.Rest[b.Name]
		p.Bones[b.Name] = Transform{Translation: r.Translation, Rotation: r.Rotation}
	}
	return p
}

// Default commits the rest pose as "default". With correct set, the calves
// get the per-model angle; callers only ask for this when no motion follows.
func (a *Animator) Default(correct bool) (Pose, error) {
	if a.phase != Structural {
		return Pose{}, fmt.Errorf("%w: default pose already committed", ErrPhase)
	}
	p := a.rest()
	p.Name = "default"
	p.Frame = a.next
	if correct {
		angle := mathutil.Deg2Rad(CalfAngle(a.model))
		for _, name := range CalfBones {
			r, ok := a.skel.Rest[name]
			if !ok {
				continue
			}
			t := p.Bones[name]
			t.Rotation = mathutil.EulerToQuat(angle, r.Euler[1], r.Euler[2])
			p.Bones[name] = t
		}
	}
	a.def = p
	a.phase = PosedDefault
	return p, nil
}

// Animate commits one motion as a new track placed after every earlier one.
// Bones start from rest; each frame sets rotations as authored and
// translations unless the bone is in DiscardLocation.
func (a *Animator) Animate(name string, m *schema.Motion) (*Track, error) {
	if a.phase == Structural {
		return nil, fmt.Errorf("%w: animate %q before the default pose", ErrPhase, name)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("pose: motion %q: %w", name, err)
	}

	tr := &Track{Name: name, Start: a.next, End: a.next + m.FrameCount - 1}
	for _, part := range m.Parts {
		if _, ok := a.skel.Bone(part.Name); !ok {
			logging.Or(a.Logger).Debug("motion part has no bone", "motion", name, "part", part.Name)
			tr.Skipped = append(tr.Skipped, part.Name)
		}
	}

	cur := a.rest()
	for frame := 0; frame < m.FrameCount; frame++ {
		for _, part := range m.Parts {
			t, ok := cur.Bones[part.Name]
			if !ok {
				continue
			}
			f := part.Frames[frame]
			t.Rotation = f.Rotation.Mgl()
			if !DiscardLocation[part.Name] {
				t.Translation = f.Translation.Mgl()
			}
			cur.Bones[part.Name] = t
		}
		tr.Poses = append(tr.Poses, cur.clone(fmt.Sprintf("%02d", frame), tr.Start+frame))
	}

	if m.FrameCount > 0 {
		a.next = tr.End + 1
	}
	a.tracks = append(a.tracks, tr)
	a.phase = PosedAnimated
	return tr, nil
}
