package command

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/ivlev/sniprr/internal/engine"
)

var ErrUnknownCommand = errors.New("unknown command")

// Recorder receives the outcome of every dispatched call.
type Recorder interface {
	Record(ctx context.Context, line string, res engine.Result, err error) error
}

type handler struct {
	minArgs, maxArgs int
	run              func(e *engine.Engine, c Call) (engine.Result, error)
}

var catalogue = map[string]handler{
	"importFile": {1, 1, func(e *engine.Engine, c Call) (engine.Result, error) {
		path, err := c.StringArg(0)
		if err != nil {
			return engine.Result{}, err
		}
		return e.ImportFile(path)
	}},
	"applyPreset": {1, 1, func(e *engine.Engine, c Call) (engine.Result, error) {
		path, err := c.StringArg(0)
		if err != nil {
			return engine.Result{}, err
		}
		return e.ApplyPreset(path)
	}},
	"createLayer": {1, 3, func(e *engine.Engine, c Call) (engine.Result, error) {
		kind, err := c.StringArg(0)
		if err != nil {
			return engine.Result{}, err
		}
		color, err := c.StringArg(1)
		if err != nil {
			return engine.Result{}, err
		}
		name, err := c.StringArg(2)
		if err != nil {
			return engine.Result{}, err
		}
		return e.CreateLayer(kind, color, name)
	}},
	"doPrecompose": {0, 2, func(e *engine.Engine, c Call) (engine.Result, error) {
		individual, err := c.BoolArg(0)
		if err != nil {
			return engine.Result{}, err
		}
		label, err := c.StringArg(1)
		if err != nil {
			return engine.Result{}, err
		}
		return e.Precompose(individual, label)
	}},
	"fitToComp": {0, 0, func(e *engine.Engine, c Call) (engine.Result, error) {
		return e.FitToComp()
	}},
	"setAnchorPoint": {1, 1, func(e *engine.Engine, c Call) (engine.Result, error) {
		pos, err := c.IntArg(0)
		if err != nil {
			return engine.Result{}, err
		}
		return e.SetAnchorPoint(pos)
	}},
	"moveLayerPoint": {1, 1, func(e *engine.Engine, c Call) (engine.Result, error) {
		side, err := c.StringArg(0)
		if err != nil {
			return engine.Result{}, err
		}
		return e.MoveLayerPoint(side)
	}},
	"moveCTI": {1, 1, func(e *engine.Engine, c Call) (engine.Result, error) {
		delta, err := c.FloatArg(0)
		if err != nil {
			return engine.Result{}, err
		}
		return e.MoveCTI(delta)
	}},
	"deleteSelectedLayers": {0, 0, func(e *engine.Engine, c Call) (engine.Result, error) {
		return e.DeleteSelectedLayers()
	}},
	"trimSelectedLayers": {1, 1, func(e *engine.Engine, c Call) (engine.Result, error) {
		side, err := c.StringArg(0)
		if err != nil {
			return engine.Result{}, err
		}
		return e.TrimSelectedLayers(side)
	}},
	"setBlendingMode": {1, 1, func(e *engine.Engine, c Call) (engine.Result, error) {
		name, err := c.StringArg(0)
		if err != nil {
			return engine.Result{}, err
		}
		return e.SetBlendingMode(name)
	}},
}

// Names lists the command catalogue in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for n := range catalogue {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dispatcher runs calls against an engine and records them.
type Dispatcher struct {
	Engine *engine.Engine
	// Recorder is optional.
	Recorder Recorder
}

func NewDispatcher(e *engine.Engine, r Recorder) *Dispatcher {
	return &Dispatcher{Engine: e, Recorder: r}
}

// Dispatch runs a parsed call.
func (d *Dispatcher) Dispatch(ctx context.Context, c Call) (engine.Result, error) {
	if err := ctx.Err(); err != nil {
		return engine.Result{Command: c.Name}, err
	}
	h, ok := catalogue[c.Name]
	if !ok {
		return engine.Result{Command: c.Name}, fmt.Errorf("%w: %s", ErrUnknownCommand, c.Name)
	}
	if len(c.Args) < h.minArgs || len(c.Args) > h.maxArgs {
		return engine.Result{Command: c.Name}, fmt.Errorf("%w: %s takes %d to %d arguments, got %d",
			engine.ErrInvalidArgument, c.Name, h.minArgs, h.maxArgs, len(c.Args))
	}
	res, err := h.run(d.Engine, c)
	if res.Command == "" {
		res.Command = c.Name
	}
	return res, err
}

// Run parses line, dispatches it and records the outcome. Recording failures
// are logged, not returned.
func (d *Dispatcher) Run(ctx context.Context, line string) (engine.Result, error) {
	c, err := Parse(line)
	var res engine.Result
	if err == nil {
		res, err = d.Dispatch(ctx, c)
	}
	if d.Recorder != nil {
		if rerr := d.Recorder.Record(ctx, line, res, err); rerr != nil {
			log.Printf("[!] journal: %v", rerr)
		}
	}
	return res, err
}
