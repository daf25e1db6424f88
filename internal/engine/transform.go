package engine

import (
	"fmt"

	"golang.org/x/image/math/f64"

	"github.com/ivlev/sniprr/internal/geometry"
	"github.com/ivlev/sniprr/internal/host"
)

// FitToComp scales each selected layer uniformly so its content fits inside the
// frame, then centers it. Locked layers, cameras, lights and layers with empty
// bounds are left alone.
func (e *Engine) FitToComp() (Result, error) {
	return e.run("fitToComp", "Fit", func(comp host.Comp, res *Result) error {
		sel, err := selection(comp)
		if err != nil {
			return err
		}
		t := comp.Time()
		w, h := comp.Width(), comp.Height()

		for _, l := range sel {
			if l.Locked() || !l.Kind().HasBounds() {
				continue
			}
			// Bounds are in layer space, so they are the natural size at 100%.
			rect := l.SourceRectAtTime(t)
			if rect.Width == 0 || rect.Height == 0 {
				continue
			}
			s := geometry.FitScale(rect.Width, rect.Height, float64(w), float64(h))
			if err := l.SetScale(f64.Vec3{s, s, 100}); err != nil {
				return fmt.Errorf("scale %q: %w", l.Name(), err)
			}
			if err := l.SetPosition(geometry.FrameCenter(w, h)); err != nil {
				return err
			}
			res.Affected++
		}
		return nil
	})
}

// SetAnchorPoint moves the anchor of each selected layer to one of nine points
// of its bounds (1 = top-left ... 9 = bottom-right) and compensates the
// position so the layer does not move on screen.
func (e *Engine) SetAnchorPoint(pos int) (Result, error) {
	return e.run("setAnchorPoint", "Anchor", func(comp host.Comp, res *Result) error {
		if pos < 1 || pos > 9 {
			return fmt.Errorf("%w: anchor position %d, want 1..9", ErrInvalidArgument, pos)
		}
		sel, err := selection(comp)
		if err != nil {
			return err
		}

		for _, l := range sel {
			if !l.Kind().HasBounds() {
				continue
			}
			if l.Locked() {
				res.warn("%q is locked", l.Name())
				continue
			}
			target, err := geometry.GridAnchor(l.SourceRectAtTime(comp.Time()), pos)
			if err != nil {
				return err
			}
			anchor, position := geometry.Reanchor(l.Transform(), target)
			if err := l.SetAnchorPoint(anchor); err != nil {
				return err
			}
			if err := l.SetPosition(position); err != nil {
				return err
			}
			res.Affected++
		}
		return nil
	})
}
