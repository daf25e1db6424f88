package engine

import (
	"fmt"
	"math"

	"github.com/ivlev/sniprr/internal/host"
)

// MoveLayerPoint slides each selected layer so its in point ("in") or out
// point ("out") lands on the time cursor. Durations are unchanged.
func (e *Engine) MoveLayerPoint(side string) (Result, error) {
	return e.run("moveLayerPoint", "Move "+side, func(comp host.Comp, res *Result) error {
		if side != "in" && side != "out" {
			return fmt.Errorf("%w: side %q, want in or out", ErrInvalidArgument, side)
		}
		sel, err := selection(comp)
		if err != nil {
			return err
		}
		t := comp.Time()

		for _, l := range sel {
			offset := t - l.InPoint()
			if side == "out" {
				offset = t - l.OutPoint()
			}
			if err := l.SetStartTime(l.StartTime() + offset); err != nil {
				res.warn("move %q: %v", l.Name(), err)
				continue
			}
			res.Affected++
		}
		return nil
	})
}

// MoveCTI moves the time cursor by deltaFrames frames, clamped to the
// composition. Cursor moves are not undoable and open no undo group.
func (e *Engine) MoveCTI(deltaFrames float64) (Result, error) {
	res := Result{Command: "moveCTI"}
	if math.IsNaN(deltaFrames) || math.IsInf(deltaFrames, 0) {
		return res, fmt.Errorf("%w: frame delta %v is not finite", ErrInvalidArgument, deltaFrames)
	}
	comp, ok := e.Host.ActiveComp()
	if !ok {
		return res, ErrNoComposition
	}
	before := comp.Time()
	t := before + deltaFrames*comp.FrameDuration()
	t = math.Min(math.Max(t, 0), comp.Duration())
	comp.SetTime(t)
	if comp.Time() != before {
		res.Status = Applied
		res.Affected = 1
	}
	return res, nil
}

// DeleteSelectedLayers removes every selected layer. A layer the host refuses
// to remove is reported and skipped.
func (e *Engine) DeleteSelectedLayers() (Result, error) {
	return e.run("deleteSelectedLayers", "Delete", func(comp host.Comp, res *Result) error {
		sel, err := selection(comp)
		if err != nil {
			return err
		}
		for _, l := range sel {
			name := l.Name()
			if err := l.Remove(); err != nil {
				res.warn("delete %q: %v", name, err)
				continue
			}
			res.Affected++
		}
		return nil
	})
}

// TrimSelectedLayers sets the in point ("left") or out point ("right") of each
// selected layer to the time cursor. Layers whose span does not strictly
// contain the cursor are left untouched.
func (e *Engine) TrimSelectedLayers(side string) (Result, error) {
	return e.run("trimSelectedLayers", "Trim "+side, func(comp host.Comp, res *Result) error {
		if side != "left" && side != "right" {
			return fmt.Errorf("%w: side %q, want left or right", ErrInvalidArgument, side)
		}
		sel, err := selection(comp)
		if err != nil {
			return err
		}
		t := comp.Time()

		for _, l := range sel {
			if t <= l.InPoint() || t >= l.OutPoint() {
				continue
			}
			var err error
			if side == "left" {
				err = l.SetInPoint(t)
			} else {
				err = l.SetOutPoint(t)
			}
			if err != nil {
				res.warn("trim %q: %v", l.Name(), err)
				continue
			}
			res.Affected++
		}
		return nil
	})
}
