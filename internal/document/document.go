// Package document is an in-memory compositing project that implements the
// host interfaces. Projects load from and save to YAML files, keep a layer
// stack and selection per composition, and record undo groups as snapshots.
package document

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/google/uuid"
	"golang.org/x/image/math/f64"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/sniprr/internal/host"
	"github.com/ivlev/sniprr/internal/source"
)

const Version = "1.0"

var (
	ErrLocked        = errors.New("layer is locked")
	ErrRemoved       = errors.New("layer has been deleted")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrInUndoGroup   = errors.New("undo group still open")
)

// fileState is everything that is saved and snapshotted for undo.
type fileState struct {
	Version    string           `yaml:"version"`
	ActiveComp string           `yaml:"active_comp,omitempty"`
	Footage    []*footageRecord `yaml:"footage,omitempty"`
	Comps      []*compRecord    `yaml:"comps"`
}

type footageRecord struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Path        string  `yaml:"path"`
	Width       int     `yaml:"width,omitempty"`
	Height      int     `yaml:"height,omitempty"`
	PixelAspect float64 `yaml:"pixel_aspect,omitempty"`
	Duration    float64 `yaml:"duration,omitempty"`
	HasVideo    bool    `yaml:"has_video,omitempty"`
	HasAudio    bool    `yaml:"has_audio,omitempty"`
}

type compRecord struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Width       int            `yaml:"width"`
	Height      int            `yaml:"height"`
	PixelAspect float64        `yaml:"pixel_aspect"`
	FrameRate   float64        `yaml:"frame_rate"`
	Duration    float64        `yaml:"duration"`
	Time        float64        `yaml:"time"`
	Layers      []*layerRecord `yaml:"layers,omitempty"`
}

type layerRecord struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Kind       host.LayerKind `yaml:"kind"`
	Start      float64        `yaml:"start"`
	In         float64        `yaml:"in"`
	Out        float64        `yaml:"out"`
	Selected   bool           `yaml:"selected,omitempty"`
	Locked     bool           `yaml:"locked,omitempty"`
	ThreeD     bool           `yaml:"three_d,omitempty"`
	Adjustment bool           `yaml:"adjustment,omitempty"`
	Label      host.Label     `yaml:"label,omitempty"`
	BlendMode  host.BlendMode `yaml:"blend_mode,omitempty"`

	Anchor   f64.Vec3 `yaml:"anchor"`
	Position f64.Vec3 `yaml:"position"`
	Scale    f64.Vec3 `yaml:"scale"`
	Rotation float64  `yaml:"rotation,omitempty"`

	// Source is the ID of the footage item or composition the layer shows.
	Source      string      `yaml:"source,omitempty"`
	Color       *host.Color `yaml:"color,omitempty"`
	Width       int         `yaml:"width,omitempty"`
	Height      int         `yaml:"height,omitempty"`
	PixelAspect float64     `yaml:"pixel_aspect,omitempty"`
	Text        string      `yaml:"text,omitempty"`
	Presets     []string    `yaml:"presets,omitempty"`
}

type undoEntry struct {
	name  string
	state []byte
}

// Project is a compositing project. It is not safe for concurrent use; like
// the host it stands in for, one command runs at a time.
type Project struct {
	state *fileState
	path  string

	undo, redo []undoEntry
	depth      int
	group      string
	snap       []byte
	dirty      bool

	// Probe inspects media files for ImportFile.
	Probe func(path string) (source.Info, error)
	// CameraDialog answers the new camera dialog opened through InvokeMenu.
	// A nil dialog or ok=false is a cancel.
	CameraDialog func() (name string, ok bool)
}

func New() *Project {
	return &Project{
		state: &fileState{Version: Version},
		Probe: source.Probe,
	}
}

// Load reads a project file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.path = path
	return p, nil
}

// Parse reads a project from YAML.
func Parse(data []byte) (*Project, error) {
	var st fileState
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	if err := st.normalize(); err != nil {
		return nil, err
	}
	p := New()
	p.state = &st
	return p, nil
}

// Save writes the project to path, or back to the file it was loaded from
// when path is empty.
func (p *Project) Save(path string) error {
	if path == "" {
		path = p.path
	}
	if path == "" {
		return fmt.Errorf("project has no file path")
	}
	data, err := yaml.Marshal(p.state)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	p.path = path
	return nil
}

// Path is the file the project was loaded from or last saved to.
func (p *Project) Path() string {
	return p.path
}

func (st *fileState) normalize() error {
	if st.Version == "" {
		st.Version = Version
	}
	for _, c := range st.Comps {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.Width <= 0 || c.Height <= 0 {
			return fmt.Errorf("comp %q: width and height must be positive", c.Name)
		}
		if c.PixelAspect == 0 {
			c.PixelAspect = 1
		}
		if c.FrameRate <= 0 {
			c.FrameRate = 25
		}
		if c.Duration <= 0 {
			return fmt.Errorf("comp %q: duration must be positive", c.Name)
		}
		c.Time = clamp(c.Time, 0, c.Duration)
		for _, l := range c.Layers {
			if l.ID == "" {
				l.ID = uuid.NewString()
			}
			if l.Scale == (f64.Vec3{}) {
				l.Scale = f64.Vec3{100, 100, 100}
			}
			if l.In >= l.Out {
				return fmt.Errorf("layer %q: in point must precede out point", l.Name)
			}
		}
	}
	for _, f := range st.Footage {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
	}
	if st.ActiveComp == "" && len(st.Comps) > 0 {
		st.ActiveComp = st.Comps[0].ID
	}
	return nil
}

// AddComp creates a composition. The first composition becomes active.
func (p *Project) AddComp(name string, width, height int, pixelAspect, frameRate, duration float64) *Comp {
	rec := &compRecord{
		ID:          uuid.NewString(),
		Name:        name,
		Width:       width,
		Height:      height,
		PixelAspect: pixelAspect,
		FrameRate:   frameRate,
		Duration:    duration,
	}
	p.state.Comps = append(p.state.Comps, rec)
	if p.state.ActiveComp == "" {
		p.state.ActiveComp = rec.ID
	}
	p.touch()
	return &Comp{p: p, rec: rec}
}

// Comps lists all compositions in the project.
func (p *Project) Comps() []*Comp {
	out := make([]*Comp, len(p.state.Comps))
	for i, c := range p.state.Comps {
		out[i] = &Comp{p: p, rec: c}
	}
	return out
}

// SetActive makes c the active composition; nil clears it.
func (p *Project) SetActive(c *Comp) {
	if c == nil {
		p.state.ActiveComp = ""
		return
	}
	p.state.ActiveComp = c.rec.ID
}

func (p *Project) ActiveComp() (host.Comp, bool) {
	if c := p.compByID(p.state.ActiveComp); c != nil {
		return &Comp{p: p, rec: c}, true
	}
	return nil, false
}

// ImportFile probes the file and adds it to the project as footage.
func (p *Project) ImportFile(path string) (host.Item, error) {
	info, err := p.Probe(path)
	if err != nil {
		return nil, err
	}
	rec := &footageRecord{
		ID:          uuid.NewString(),
		Name:        info.Name,
		Path:        info.Path,
		Width:       info.Width,
		Height:      info.Height,
		PixelAspect: info.PixelAspect,
		Duration:    info.Duration,
		HasVideo:    info.HasVideo,
		HasAudio:    info.HasAudio,
	}
	p.state.Footage = append(p.state.Footage, rec)
	p.touch()
	return &footageItem{rec: rec}, nil
}

// InvokeMenu runs a native menu command. Only the new camera dialog exists.
func (p *Project) InvokeMenu(name string) error {
	if name != "Camera..." {
		return fmt.Errorf("unknown menu command %q", name)
	}
	c, ok := p.ActiveComp()
	if !ok {
		return fmt.Errorf("no active composition")
	}
	if p.CameraDialog == nil {
		return nil
	}
	camName, accepted := p.CameraDialog()
	if !accepted {
		return nil
	}
	comp := c.(*Comp)
	rec := comp.newCamera(camName)
	comp.selectOnly(rec)
	return nil
}

func (p *Project) BeginUndoGroup(name string) {
	p.depth++
	if p.depth > 1 {
		return
	}
	p.group = name
	p.dirty = false
	snap, err := yaml.Marshal(p.state)
	if err != nil {
		snap = nil
	}
	p.snap = snap
}

func (p *Project) EndUndoGroup() {
	if p.depth == 0 {
		return
	}
	p.depth--
	if p.depth > 0 {
		return
	}
	if p.dirty && p.snap != nil {
		p.undo = append(p.undo, undoEntry{name: p.group, state: p.snap})
		p.redo = nil
	}
	p.snap = nil
	p.group = ""
}

// UndoNames lists the undo stack, oldest first.
func (p *Project) UndoNames() []string {
	names := make([]string, len(p.undo))
	for i, e := range p.undo {
		names[i] = e.name
	}
	return names
}

// Undo reverts the most recent undo group and returns its name. Handles to
// comps and layers taken before the call are stale afterwards.
func (p *Project) Undo() (string, error) {
	if p.depth > 0 {
		return "", ErrInUndoGroup
	}
	if len(p.undo) == 0 {
		return "", ErrNothingToUndo
	}
	e := p.undo[len(p.undo)-1]
	cur, err := yaml.Marshal(p.state)
	if err != nil {
		return "", err
	}
	if err := p.restore(e.state); err != nil {
		return "", err
	}
	p.undo = p.undo[:len(p.undo)-1]
	p.redo = append(p.redo, undoEntry{name: e.name, state: cur})
	return e.name, nil
}

// Redo reapplies the most recently undone group.
func (p *Project) Redo() (string, error) {
	if p.depth > 0 {
		return "", ErrInUndoGroup
	}
	if len(p.redo) == 0 {
		return "", ErrNothingToRedo
	}
	e := p.redo[len(p.redo)-1]
	cur, err := yaml.Marshal(p.state)
	if err != nil {
		return "", err
	}
	if err := p.restore(e.state); err != nil {
		return "", err
	}
	p.redo = p.redo[:len(p.redo)-1]
	p.undo = append(p.undo, undoEntry{name: e.name, state: cur})
	return e.name, nil
}

func (p *Project) restore(data []byte) error {
	var st fileState
	if err := yaml.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	p.state = &st
	return nil
}

func (p *Project) touch() {
	p.dirty = true
}

func (p *Project) compByID(id string) *compRecord {
	if id == "" {
		return nil
	}
	for _, c := range p.state.Comps {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (p *Project) footageByID(id string) *footageRecord {
	for _, f := range p.state.Footage {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// compOf finds the composition holding a layer.
func (p *Project) compOf(l *layerRecord) *compRecord {
	for _, c := range p.state.Comps {
		for _, r := range c.Layers {
			if r == l {
				return c
			}
		}
	}
	return nil
}

// clamp limits v to [lo, hi]; NaN maps to lo.
func clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type footageItem struct {
	rec *footageRecord
}

func (f *footageItem) Name() string         { return f.rec.Name }
func (f *footageItem) Width() int           { return f.rec.Width }
func (f *footageItem) Height() int          { return f.rec.Height }
func (f *footageItem) PixelAspect() float64 { return f.rec.PixelAspect }
func (f *footageItem) Duration() float64    { return f.rec.Duration }

// solidItem is the source of a solid layer.
type solidItem struct {
	rec *layerRecord
}

func (s *solidItem) Name() string         { return s.rec.Name }
func (s *solidItem) Width() int           { return s.rec.Width }
func (s *solidItem) Height() int          { return s.rec.Height }
func (s *solidItem) PixelAspect() float64 { return s.rec.PixelAspect }
func (s *solidItem) Duration() float64    { return 0 }
