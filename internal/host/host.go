// Package host describes the compositing application the timeline commands run against.
//
// The interfaces mirror the small part of the host's scripting object model the
// commands need: the active composition, its layer stack and selection, layer
// timing and transform properties, and the undo grouping around a batch of
// mutations. Any host (a live bridge, the in-memory document) implements them.
package host

import "golang.org/x/image/math/f64"

// Host is the application owning the project.
type Host interface {
	// ActiveComp returns the composition the user is working in, if any.
	ActiveComp() (Comp, bool)
	BeginUndoGroup(name string)
	EndUndoGroup()
	// ImportFile brings a media file into the project as a footage item.
	ImportFile(path string) (Item, error)
}

// MenuInvoker is implemented by hosts that can run a native menu command,
// possibly opening an interactive dialog.
type MenuInvoker interface {
	InvokeMenu(name string) error
}

// CameraAdder is implemented by compositions that can create a camera layer
// without user interaction.
type CameraAdder interface {
	AddCamera(name string) (Layer, error)
}

// Item is a project item a layer can reference (footage, solid source, composition).
type Item interface {
	Name() string
	Width() int
	Height() int
	PixelAspect() float64
	Duration() float64
}

// Comp is an editable composition. Layer indices are 1-based.
type Comp interface {
	Item

	FrameDuration() float64
	SetDuration(d float64) error
	Time() float64
	SetTime(t float64)

	NumLayers() int
	Layer(index int) (Layer, error)
	SelectedLayers() []Layer

	// Add* create a layer at the top of the stack starting at the time cursor.
	// A duration <= 0 means the composition duration.
	AddSolid(c Color, name string, width, height int, pixelAspect, duration float64) (Layer, error)
	AddNull(duration float64) (Layer, error)
	AddText(text string) (Layer, error)
	AddFootage(item Item) (Layer, error)

	// Precompose moves the layers at indices into a new composition and
	// replaces them with a single layer referencing it. The new layer becomes
	// the only selected layer.
	Precompose(indices []int, name string, moveAllAttributes bool) (Comp, error)
}

// Layer is one element of a composition's layer stack.
type Layer interface {
	Index() int
	Name() string
	SetName(name string) error
	Kind() LayerKind

	StartTime() float64
	// SetStartTime moves the layer in time; in and out points shift with it.
	SetStartTime(t float64) error
	InPoint() float64
	SetInPoint(t float64) error
	OutPoint() float64
	SetOutPoint(t float64) error

	Locked() bool
	ThreeD() bool
	Label() Label
	SetLabel(l Label) error
	SetAdjustment(on bool) error
	BlendMode() BlendMode
	SetBlendMode(m BlendMode) error

	Transform() Transform
	SetAnchorPoint(v f64.Vec3) error
	SetPosition(v f64.Vec3) error
	SetScale(v f64.Vec3) error

	// SourceRectAtTime reports the layer's content bounds in layer space,
	// ignoring its transform.
	SourceRectAtTime(t float64) Rect
	Source() (Item, bool)

	MoveBefore(other Layer) error
	MoveToBeginning() error
	Remove() error
	// ApplyPreset attaches the effects stored in an animation preset file.
	ApplyPreset(path string) error
}

// Transform holds a layer's transform property values. Two-dimensional layers
// ignore the third component. Scale is in percent, rotation in degrees.
type Transform struct {
	AnchorPoint f64.Vec3
	Position    f64.Vec3
	Scale       f64.Vec3
	Rotation    float64
}

// Rect is a bounding rectangle in layer space.
type Rect struct {
	Left   float64 `yaml:"left"`
	Top    float64 `yaml:"top"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Color is an RGB triple with components in [0, 1].
type Color [3]float64

var (
	White = Color{1, 1, 1}
	Black = Color{0, 0, 0}
	Gray  = Color{0.5, 0.5, 0.5}
)

// LayerKind distinguishes what a layer renders.
type LayerKind string

const (
	KindFootage LayerKind = "footage"
	KindSolid   LayerKind = "solid"
	KindNull    LayerKind = "null"
	KindText    LayerKind = "text"
	KindCamera  LayerKind = "camera"
	KindLight   LayerKind = "light"
	KindPrecomp LayerKind = "precomp"
)

// HasBounds reports whether layers of this kind have visual bounds.
func (k LayerKind) HasBounds() bool {
	return k != KindCamera && k != KindLight
}

// Label is the host's color label index shown in the timeline. 0 means none.
type Label int

const (
	LabelNone      Label = 0
	LabelRed       Label = 1
	LabelYellow    Label = 2
	LabelAqua      Label = 3
	LabelPink      Label = 4
	LabelLavender  Label = 5
	LabelPeach     Label = 6
	LabelSeaFoam   Label = 7
	LabelBlue      Label = 8
	LabelGreen     Label = 9
	LabelPurple    Label = 10
	LabelOrange    Label = 11
	LabelBrown     Label = 12
	LabelFuchsia   Label = 13
	LabelCyan      Label = 14
	LabelSandstone Label = 15
	LabelDarkGreen Label = 16
)

// BlendMode is the host's layer blending mode constant.
type BlendMode string

const (
	BlendNormal BlendMode = "NORMAL"
	BlendAdd    BlendMode = "ADD"
)
