package document

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/image/math/f64"

	"github.com/ivlev/sniprr/internal/host"
	"github.com/ivlev/sniprr/internal/preset"
)

// textSize is the font size text layer bounds are estimated with.
const textSize = 72.0

// Layer is a handle to a layer of a Project.
type Layer struct {
	p   *Project
	rec *layerRecord
}

var _ host.Layer = (*Layer)(nil)

func (l *Layer) ID() string                { return l.rec.ID }
func (l *Layer) Name() string              { return l.rec.Name }
func (l *Layer) Kind() host.LayerKind      { return l.rec.Kind }
func (l *Layer) StartTime() float64        { return l.rec.Start }
func (l *Layer) InPoint() float64          { return l.rec.In }
func (l *Layer) OutPoint() float64         { return l.rec.Out }
func (l *Layer) Locked() bool              { return l.rec.Locked }
func (l *Layer) ThreeD() bool              { return l.rec.ThreeD }
func (l *Layer) Label() host.Label         { return l.rec.Label }
func (l *Layer) BlendMode() host.BlendMode { return l.rec.BlendMode }
func (l *Layer) Selected() bool            { return l.rec.Selected }
func (l *Layer) Adjustment() bool          { return l.rec.Adjustment }
func (l *Layer) Text() string              { return l.rec.Text }
func (l *Layer) Presets() []string         { return l.rec.Presets }

// Color is the fill of a solid layer.
func (l *Layer) Color() (host.Color, bool) {
	if l.rec.Color == nil {
		return host.Color{}, false
	}
	return *l.rec.Color, true
}

// Index is the 1-based stack position, or 0 once the layer is deleted.
func (l *Layer) Index() int {
	c := l.p.compOf(l.rec)
	if c == nil {
		return 0
	}
	for i, r := range c.Layers {
		if r == l.rec {
			return i + 1
		}
	}
	return 0
}

// editable returns the layer's composition if the layer may be changed.
func (l *Layer) editable() (*compRecord, error) {
	c := l.p.compOf(l.rec)
	if c == nil {
		return nil, fmt.Errorf("%q: %w", l.rec.Name, ErrRemoved)
	}
	if l.rec.Locked {
		return nil, fmt.Errorf("%q: %w", l.rec.Name, ErrLocked)
	}
	return c, nil
}

func (l *Layer) set(fn func()) error {
	if _, err := l.editable(); err != nil {
		return err
	}
	fn()
	l.p.touch()
	return nil
}

func (l *Layer) SetName(name string) error {
	return l.set(func() { l.rec.Name = name })
}

func (l *Layer) SetStartTime(t float64) error {
	return l.set(func() {
		delta := t - l.rec.Start
		l.rec.Start = t
		l.rec.In += delta
		l.rec.Out += delta
	})
}

func (l *Layer) SetInPoint(t float64) error {
	if t >= l.rec.Out {
		return fmt.Errorf("%q: in point %.3f must precede out point %.3f", l.rec.Name, t, l.rec.Out)
	}
	return l.set(func() { l.rec.In = t })
}

func (l *Layer) SetOutPoint(t float64) error {
	if t <= l.rec.In {
		return fmt.Errorf("%q: out point %.3f must follow in point %.3f", l.rec.Name, t, l.rec.In)
	}
	return l.set(func() { l.rec.Out = t })
}

func (l *Layer) SetLabel(label host.Label) error {
	if label < host.LabelNone || label > host.LabelDarkGreen {
		return fmt.Errorf("label %d out of range", label)
	}
	return l.set(func() { l.rec.Label = label })
}

func (l *Layer) SetAdjustment(on bool) error {
	return l.set(func() { l.rec.Adjustment = on })
}

func (l *Layer) SetBlendMode(m host.BlendMode) error {
	return l.set(func() { l.rec.BlendMode = m })
}

func (l *Layer) Transform() host.Transform {
	return host.Transform{
		AnchorPoint: l.rec.Anchor,
		Position:    l.rec.Position,
		Scale:       l.rec.Scale,
		Rotation:    l.rec.Rotation,
	}
}

func (l *Layer) SetAnchorPoint(v f64.Vec3) error {
	return l.set(func() { l.rec.Anchor = l.flatten(v, 0) })
}

func (l *Layer) SetPosition(v f64.Vec3) error {
	return l.set(func() { l.rec.Position = l.flatten(v, 0) })
}

func (l *Layer) SetScale(v f64.Vec3) error {
	return l.set(func() { l.rec.Scale = l.flatten(v, 100) })
}

// SetRotation sets the z rotation in degrees.
func (l *Layer) SetRotation(deg float64) error {
	return l.set(func() { l.rec.Rotation = deg })
}

// flatten drops the depth component of 2D layers.
func (l *Layer) flatten(v f64.Vec3, depth float64) f64.Vec3 {
	if !l.rec.ThreeD {
		v[2] = depth
	}
	return v
}

// SetLocked locks or unlocks the layer. Locked layers refuse all other edits.
func (l *Layer) SetLocked(on bool) {
	l.rec.Locked = on
	l.p.touch()
}

// SetThreeD switches the layer between 2D and 3D.
func (l *Layer) SetThreeD(on bool) error {
	return l.set(func() {
		l.rec.ThreeD = on
		if !on {
			l.rec.Anchor[2], l.rec.Position[2], l.rec.Scale[2] = 0, 0, 100
		}
	})
}

// SetSelected adds the layer to or removes it from the selection.
func (l *Layer) SetSelected(on bool) {
	l.rec.Selected = on
}

func (l *Layer) SourceRectAtTime(t float64) host.Rect {
	switch l.rec.Kind {
	case host.KindSolid:
		return host.Rect{Width: float64(l.rec.Width), Height: float64(l.rec.Height)}
	case host.KindNull:
		return host.Rect{Width: nullSize, Height: nullSize}
	case host.KindText:
		n := utf8.RuneCountInString(l.rec.Text)
		return host.Rect{Top: -textSize, Width: textSize / 2 * float64(n), Height: textSize}
	case host.KindFootage:
		if f := l.p.footageByID(l.rec.Source); f != nil {
			return host.Rect{Width: float64(f.Width), Height: float64(f.Height)}
		}
	case host.KindPrecomp:
		if c := l.p.compByID(l.rec.Source); c != nil {
			return host.Rect{Width: float64(c.Width), Height: float64(c.Height)}
		}
	}
	return host.Rect{}
}

func (l *Layer) Source() (host.Item, bool) {
	switch l.rec.Kind {
	case host.KindSolid:
		return &solidItem{rec: l.rec}, true
	case host.KindFootage:
		if f := l.p.footageByID(l.rec.Source); f != nil {
			return &footageItem{rec: f}, true
		}
	case host.KindPrecomp:
		if c := l.p.compByID(l.rec.Source); c != nil {
			return &Comp{p: l.p, rec: c}, true
		}
	}
	return nil, false
}

// MoveBefore places the layer directly above other in the stack.
func (l *Layer) MoveBefore(other host.Layer) error {
	o, ok := other.(*Layer)
	if !ok || o.p != l.p {
		return fmt.Errorf("layer %q does not belong to this project", other.Name())
	}
	c, err := l.editable()
	if err != nil {
		return err
	}
	if l.p.compOf(o.rec) != c {
		return fmt.Errorf("%q and %q are in different compositions", l.rec.Name, o.rec.Name)
	}
	if o.rec == l.rec {
		return nil
	}
	c.Layers = removeRecord(c.Layers, l.rec)
	at := 0
	for i, r := range c.Layers {
		if r == o.rec {
			at = i
			break
		}
	}
	c.Layers = append(c.Layers[:at], append([]*layerRecord{l.rec}, c.Layers[at:]...)...)
	l.p.touch()
	return nil
}

func (l *Layer) MoveToBeginning() error {
	c, err := l.editable()
	if err != nil {
		return err
	}
	c.Layers = append([]*layerRecord{l.rec}, removeRecord(c.Layers, l.rec)...)
	l.p.touch()
	return nil
}

func (l *Layer) Remove() error {
	c, err := l.editable()
	if err != nil {
		return err
	}
	c.Layers = removeRecord(c.Layers, l.rec)
	l.p.touch()
	return nil
}

// ApplyPreset attaches a preset file to the layer. The preset format is
// opaque here: any non-empty .ffx file applies.
func (l *Layer) ApplyPreset(path string) error {
	if !preset.IsPresetFile(path) {
		return fmt.Errorf("%s is not an animation preset", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return fmt.Errorf("preset %s is empty", filepath.Base(path))
	}
	return l.set(func() { l.rec.Presets = append(l.rec.Presets, filepath.Base(path)) })
}

func removeRecord(layers []*layerRecord, rec *layerRecord) []*layerRecord {
	out := make([]*layerRecord, 0, len(layers))
	for _, r := range layers {
		if r != rec {
			out = append(out, r)
		}
	}
	return out
}
