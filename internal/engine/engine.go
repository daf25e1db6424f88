// Package engine implements the timeline commands the panel issues against the
// host's active composition.
//
// Every command is stateless: it reads the composition, selection and time
// cursor at call time, mutates them and returns. Mutating commands run inside
// one host undo group that is closed on every path, including precondition
// failures and host panics.
package engine

import (
	"errors"
	"fmt"
	"log"

	"github.com/ivlev/sniprr/internal/config"
	"github.com/ivlev/sniprr/internal/host"
)

var (
	ErrNoComposition   = errors.New("no composition active")
	ErrNoSelection     = errors.New("no layer selected")
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrHost wraps unexpected failures raised by the host during a mutation.
	ErrHost = errors.New("host failure")
)

// Status tells a command that changed the document from one that did not.
type Status int

const (
	NoOp Status = iota
	Applied
)

func (s Status) String() string {
	if s == Applied {
		return "applied"
	}
	return "noop"
}

// Result describes the outcome of one command.
type Result struct {
	Command  string
	Status   Status
	Affected int
	// Warnings collects non-fatal per-layer failures.
	Warnings []string
}

func (r *Result) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	log.Printf("[!] %s: %s", r.Command, msg)
}

// Notifier shows messages to the user, the way the panel raises alerts.
type Notifier interface {
	Alert(msg string)
}

// LogNotifier writes alerts to the standard logger.
type LogNotifier struct{}

func (LogNotifier) Alert(msg string) {
	log.Printf("[!] %s", msg)
}

type Engine struct {
	Config   *config.Config
	Host     host.Host
	Notifier Notifier
}

func NewEngine(cfg *config.Config, h host.Host, n Notifier) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if n == nil {
		n = LogNotifier{}
	}
	return &Engine{
		Config:   cfg,
		Host:     h,
		Notifier: n,
	}
}

// run executes fn against the active composition inside an undo group named
// after the command.
func (e *Engine) run(name, undo string, fn func(comp host.Comp, res *Result) error) (res Result, err error) {
	res.Command = name

	e.Host.BeginUndoGroup(e.Config.UndoPrefix + " " + undo)
	defer e.Host.EndUndoGroup()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHost, r)
			e.Notifier.Alert(fmt.Sprintf("Error: %v", err))
		}
		if err == nil && res.Affected > 0 {
			res.Status = Applied
		}
	}()

	comp, ok := e.Host.ActiveComp()
	if !ok {
		e.Notifier.Alert("Please select a composition.")
		return res, ErrNoComposition
	}

	if err = fn(comp, &res); err != nil {
		e.Notifier.Alert(alertText(err))
	}
	return res, err
}

func alertText(err error) string {
	switch {
	case errors.Is(err, ErrNoSelection):
		return "No layer selected. Please select a layer."
	case errors.Is(err, ErrFileNotFound):
		return err.Error()
	default:
		return "Error: " + err.Error()
	}
}

// selection returns the selected layers or ErrNoSelection.
func selection(comp host.Comp) ([]host.Layer, error) {
	sel := comp.SelectedLayers()
	if len(sel) == 0 {
		return nil, ErrNoSelection
	}
	return sel, nil
}

// setSpan sets a layer's in and out points in whichever order keeps
// in < out valid at every step.
func setSpan(l host.Layer, in, out float64) error {
	if in >= l.OutPoint() {
		if err := l.SetOutPoint(out); err != nil {
			return err
		}
		return l.SetInPoint(in)
	}
	if err := l.SetInPoint(in); err != nil {
		return err
	}
	return l.SetOutPoint(out)
}
