package document

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/sniprr/internal/host"
)

// nullSize is the edge of a null object's bounds.
const nullSize = 100

// Comp is a handle to a composition of a Project.
type Comp struct {
	p   *Project
	rec *compRecord
}

var (
	_ host.Comp        = (*Comp)(nil)
	_ host.CameraAdder = (*Comp)(nil)
)

func (c *Comp) ID() string             { return c.rec.ID }
func (c *Comp) Name() string           { return c.rec.Name }
func (c *Comp) Width() int             { return c.rec.Width }
func (c *Comp) Height() int            { return c.rec.Height }
func (c *Comp) PixelAspect() float64   { return c.rec.PixelAspect }
func (c *Comp) Duration() float64      { return c.rec.Duration }
func (c *Comp) FrameDuration() float64 { return 1 / c.rec.FrameRate }
func (c *Comp) Time() float64          { return c.rec.Time }

func (c *Comp) SetDuration(d float64) error {
	if d <= 0 {
		return fmt.Errorf("comp %q: duration %.3f must be positive", c.rec.Name, d)
	}
	c.rec.Duration = d
	c.rec.Time = clamp(c.rec.Time, 0, d)
	c.p.touch()
	return nil
}

// SetTime moves the time cursor, clamped to the composition.
func (c *Comp) SetTime(t float64) {
	c.rec.Time = clamp(t, 0, c.rec.Duration)
}

func (c *Comp) NumLayers() int {
	return len(c.rec.Layers)
}

func (c *Comp) Layer(index int) (host.Layer, error) {
	if index < 1 || index > len(c.rec.Layers) {
		return nil, fmt.Errorf("layer index %d out of range 1..%d", index, len(c.rec.Layers))
	}
	return &Layer{p: c.p, rec: c.rec.Layers[index-1]}, nil
}

// Layers lists the layer stack top to bottom.
func (c *Comp) Layers() []*Layer {
	out := make([]*Layer, len(c.rec.Layers))
	for i, r := range c.rec.Layers {
		out[i] = &Layer{p: c.p, rec: r}
	}
	return out
}

// SelectedLayers returns the selected layers in stack order.
func (c *Comp) SelectedLayers() []host.Layer {
	var out []host.Layer
	for _, r := range c.rec.Layers {
		if r.Selected {
			out = append(out, &Layer{p: c.p, rec: r})
		}
	}
	return out
}

// Select makes exactly the given layers selected.
func (c *Comp) Select(layers ...*Layer) {
	for _, r := range c.rec.Layers {
		r.Selected = false
	}
	for _, l := range layers {
		l.rec.Selected = true
	}
}

func (c *Comp) selectOnly(rec *layerRecord) {
	for _, r := range c.rec.Layers {
		r.Selected = r == rec
	}
}

// newLayer builds a layer starting at the time cursor, centered in the frame.
func (c *Comp) newLayer(kind host.LayerKind, name string, duration float64) *layerRecord {
	if duration <= 0 {
		duration = c.rec.Duration
	}
	return &layerRecord{
		ID:       uuid.NewString(),
		Name:     name,
		Kind:     kind,
		Start:    c.rec.Time,
		In:       c.rec.Time,
		Out:      c.rec.Time + duration,
		Position: f64.Vec3{float64(c.rec.Width) / 2, float64(c.rec.Height) / 2, 0},
		Scale:    f64.Vec3{100, 100, 100},
	}
}

func (c *Comp) insertTop(rec *layerRecord) {
	c.rec.Layers = append([]*layerRecord{rec}, c.rec.Layers...)
	c.p.touch()
}

func (c *Comp) AddSolid(color host.Color, name string, width, height int, pixelAspect, duration float64) (host.Layer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("solid %q: size %dx%d must be positive", name, width, height)
	}
	rec := c.newLayer(host.KindSolid, name, duration)
	col := color
	rec.Color = &col
	rec.Width, rec.Height, rec.PixelAspect = width, height, pixelAspect
	rec.Anchor = f64.Vec3{float64(width) / 2, float64(height) / 2, 0}
	c.insertTop(rec)
	return &Layer{p: c.p, rec: rec}, nil
}

func (c *Comp) AddNull(duration float64) (host.Layer, error) {
	rec := c.newLayer(host.KindNull, "Null", duration)
	rec.Anchor = f64.Vec3{nullSize / 2, nullSize / 2, 0}
	c.insertTop(rec)
	return &Layer{p: c.p, rec: rec}, nil
}

func (c *Comp) AddText(text string) (host.Layer, error) {
	rec := c.newLayer(host.KindText, text, 0)
	rec.Text = text
	c.insertTop(rec)
	return &Layer{p: c.p, rec: rec}, nil
}

// AddFootage adds a layer showing an imported footage item or a composition.
func (c *Comp) AddFootage(item host.Item) (host.Layer, error) {
	switch it := item.(type) {
	case *footageItem:
		rec := c.newLayer(host.KindFootage, it.rec.Name, it.rec.Duration)
		rec.Source = it.rec.ID
		rec.Anchor = f64.Vec3{float64(it.rec.Width) / 2, float64(it.rec.Height) / 2, 0}
		c.insertTop(rec)
		return &Layer{p: c.p, rec: rec}, nil
	case *Comp:
		if it.rec == c.rec {
			return nil, fmt.Errorf("comp %q cannot contain itself", c.rec.Name)
		}
		rec := c.newLayer(host.KindPrecomp, it.rec.Name, it.rec.Duration)
		rec.Source = it.rec.ID
		rec.Anchor = f64.Vec3{float64(it.rec.Width) / 2, float64(it.rec.Height) / 2, 0}
		c.insertTop(rec)
		return &Layer{p: c.p, rec: rec}, nil
	default:
		return nil, fmt.Errorf("item %q does not belong to this project", item.Name())
	}
}

// AddCamera creates a camera layer without opening a dialog.
func (c *Comp) AddCamera(name string) (host.Layer, error) {
	return &Layer{p: c.p, rec: c.newCamera(name)}, nil
}

func (c *Comp) newCamera(name string) *layerRecord {
	if name == "" {
		name = "Camera 1"
	}
	rec := c.newLayer(host.KindCamera, name, 0)
	rec.ThreeD = true
	rec.Position[2] = -float64(c.rec.Width)
	c.insertTop(rec)
	return rec
}

// Precompose moves the layers at indices into a new composition with this
// composition's settings, and puts a layer showing it where the topmost moved
// layer was. Moved layers keep their timing.
func (c *Comp) Precompose(indices []int, name string, moveAllAttributes bool) (host.Comp, error) {
	if !moveAllAttributes {
		return nil, fmt.Errorf("pre-compose without moving attributes is not supported")
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("pre-compose needs at least one layer")
	}
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)
	for i, idx := range sorted {
		if idx < 1 || idx > len(c.rec.Layers) {
			return nil, fmt.Errorf("layer index %d out of range 1..%d", idx, len(c.rec.Layers))
		}
		if i > 0 && sorted[i-1] == idx {
			return nil, fmt.Errorf("layer index %d given twice", idx)
		}
	}

	sub := &compRecord{
		ID:          uuid.NewString(),
		Name:        name,
		Width:       c.rec.Width,
		Height:      c.rec.Height,
		PixelAspect: c.rec.PixelAspect,
		FrameRate:   c.rec.FrameRate,
		Duration:    c.rec.Duration,
	}

	moved := make(map[int]bool, len(sorted))
	for _, idx := range sorted {
		moved[idx] = true
	}
	var kept []*layerRecord
	for i, r := range c.rec.Layers {
		if moved[i+1] {
			r.Selected = false
			sub.Layers = append(sub.Layers, r)
			continue
		}
		kept = append(kept, r)
	}

	wrapper := &layerRecord{
		ID:       uuid.NewString(),
		Name:     name,
		Kind:     host.KindPrecomp,
		Start:    0,
		In:       0,
		Out:      c.rec.Duration,
		Source:   sub.ID,
		Anchor:   f64.Vec3{float64(c.rec.Width) / 2, float64(c.rec.Height) / 2, 0},
		Position: f64.Vec3{float64(c.rec.Width) / 2, float64(c.rec.Height) / 2, 0},
		Scale:    f64.Vec3{100, 100, 100},
	}
	at := sorted[0] - 1
	layers := make([]*layerRecord, 0, len(kept)+1)
	layers = append(layers, kept[:at]...)
	layers = append(layers, wrapper)
	layers = append(layers, kept[at:]...)
	c.rec.Layers = layers
	c.selectOnly(wrapper)

	c.p.state.Comps = append(c.p.state.Comps, sub)
	c.p.touch()
	return &Comp{p: c.p, rec: sub}, nil
}
