package engine

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/sniprr/internal/config"
	"github.com/ivlev/sniprr/internal/document"
	"github.com/ivlev/sniprr/internal/host"
	"github.com/ivlev/sniprr/internal/preset"
	"github.com/ivlev/sniprr/internal/source"
)

type alerts struct {
	msgs []string
}

func (a *alerts) Alert(msg string) {
	a.msgs = append(a.msgs, msg)
}

// wrapHost decorates a project to count undo groups and to swap the active
// composition for a test double.
type wrapHost struct {
	*document.Project
	begins int
	wrap   func(host.Comp) host.Comp
}

func (w *wrapHost) BeginUndoGroup(name string) {
	w.begins++
	w.Project.BeginUndoGroup(name)
}

func (w *wrapHost) ActiveComp() (host.Comp, bool) {
	c, ok := w.Project.ActiveComp()
	if ok && w.wrap != nil {
		c = w.wrap(c)
	}
	return c, ok
}

// dialogComp hides the headless camera path.
type dialogComp struct{ host.Comp }

type panicComp struct{ host.Comp }

func (panicComp) SelectedLayers() []host.Layer {
	panic("host exploded")
}

type fixture struct {
	p      *document.Project
	comp   *document.Comp
	host   *wrapHost
	alerts *alerts
	e      *Engine
}

func newFixture(t *testing.T, width, height int) *fixture {
	t.Helper()
	p := document.New()
	p.Probe = func(path string) (source.Info, error) {
		return source.Info{Name: filepath.Base(path), Path: path, Width: 1280, Height: 720, PixelAspect: 1, Duration: 3, HasVideo: true}, nil
	}
	comp := p.AddComp("Main", width, height, 1, 25, 10)
	h := &wrapHost{Project: p}
	a := &alerts{}
	return &fixture{p: p, comp: comp, host: h, alerts: a, e: NewEngine(config.Default(), h, a)}
}

func (f *fixture) solid(t *testing.T, name string, w, h int, in, out float64) *document.Layer {
	t.Helper()
	l, err := f.comp.AddSolid(host.White, name, w, h, 1, 0)
	require.NoError(t, err)
	require.NoError(t, l.SetStartTime(in))
	require.NoError(t, l.SetOutPoint(out))
	return l.(*document.Layer)
}

func (f *fixture) layer(t *testing.T, index int) host.Layer {
	t.Helper()
	l, err := f.comp.Layer(index)
	require.NoError(t, err)
	return l
}

func writePreset(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestResolveColor(t *testing.T) {
	tests := []struct {
		in   string
		want host.Color
	}{
		{"#FF0000", host.Color{1, 0, 0}},
		{"00ff33", host.Color{0, 1, 0.2}},
		{"#808080", host.Color{128.0 / 255, 128.0 / 255, 128.0 / 255}},
		{"", host.Gray},
		{"#FFF", host.Gray},
		{"#GG0000", host.Gray},
		{"red", host.Gray},
	}
	for _, tt := range tests {
		got := ResolveColor(tt.in)
		for i := range got {
			assert.InDelta(t, tt.want[i], got[i], 1e-9, "ResolveColor(%q)[%d]", tt.in, i)
		}
	}
}

func TestPresetSpan(t *testing.T) {
	frame := 0.04
	tests := []struct {
		file       string
		in, out    float64
		start, dur float64
	}{
		{"Glow [full].ffx", 2, 5, 0, 10},
		{"Flash [10f].ffx", 2, 5, 2, 0.4},
		{"Drift [5s].ffx", 2, 5, 2, 5},
		{"Whoosh [c].ffx", 2, 5, 1.5, 1},
		{"Whoosh [c] [10f].ffx", 2, 5, 1.8, 0.4},
		{"Tint.ffx", 2, 5, 2, 3},
		{"Drift [0s].ffx", 2, 5, 2, 3},
		{"Flash [0f].ffx", 2, 5, 2, 3},
		{"Whoosh [c] [0f].ffx", 2, 5, 1.5, 1},
	}
	for _, tt := range tests {
		d := preset.Parse(tt.file, frame)
		start, dur := PresetSpan(d, 10, tt.in, tt.out)
		assert.InDelta(t, tt.start, start, 1e-9, tt.file)
		assert.InDelta(t, tt.dur, dur, 1e-9, tt.file)
	}
}

func TestNoComposition(t *testing.T) {
	p := document.New()
	a := &alerts{}
	e := NewEngine(nil, p, a)

	res, err := e.FitToComp()
	assert.ErrorIs(t, err, ErrNoComposition)
	assert.Equal(t, NoOp, res.Status)
	assert.Equal(t, []string{"Please select a composition."}, a.msgs)

	_, err = e.MoveCTI(1)
	assert.ErrorIs(t, err, ErrNoComposition)
}

func TestNoSelection(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	f.solid(t, "A", 100, 100, 0, 5)

	for name, run := range map[string]func() (Result, error){
		"fit":     f.e.FitToComp,
		"delete":  f.e.DeleteSelectedLayers,
		"anchor":  func() (Result, error) { return f.e.SetAnchorPoint(5) },
		"move":    func() (Result, error) { return f.e.MoveLayerPoint("in") },
		"trim":    func() (Result, error) { return f.e.TrimSelectedLayers("left") },
		"blend":   func() (Result, error) { return f.e.SetBlendingMode("ADD") },
		"precomp": func() (Result, error) { return f.e.Precompose(false, "") },
	} {
		res, err := run()
		assert.ErrorIs(t, err, ErrNoSelection, name)
		assert.Equal(t, NoOp, res.Status, name)
	}
	assert.Contains(t, f.alerts.msgs, "No layer selected. Please select a layer.")
	assert.Empty(t, f.p.UndoNames())
	assert.Equal(t, 1, f.comp.NumLayers())
}

func TestPanicClosesUndoGroup(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	f.host.wrap = func(c host.Comp) host.Comp { return panicComp{c} }

	res, err := f.e.DeleteSelectedLayers()
	assert.ErrorIs(t, err, ErrHost)
	assert.Equal(t, NoOp, res.Status)
	require.Len(t, f.alerts.msgs, 1)
	assert.Contains(t, f.alerts.msgs[0], "host exploded")

	_, err = f.p.Undo()
	assert.ErrorIs(t, err, document.ErrNothingToUndo, "undo group left open")
}

func TestImportFile(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	target := f.solid(t, "Target", 100, 100, 0, 10)
	top := f.solid(t, "Top", 100, 100, 0, 10)
	f.comp.Select(target)
	f.comp.SetTime(3)

	res, err := f.e.ImportFile("/media/clip.mov")
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Status)

	clip := f.layer(t, 2)
	assert.Equal(t, "clip.mov", clip.Name())
	assert.Equal(t, host.LabelGreen, clip.Label())
	assert.Equal(t, 3.0, clip.InPoint())
	assert.Equal(t, 6.0, clip.OutPoint())
	assert.Equal(t, 3, target.Index())
	assert.Equal(t, 1, top.Index())

	f.comp.Select()
	_, err = f.e.ImportFile("/media/voice.WAV")
	require.NoError(t, err)
	voice := f.layer(t, 1)
	assert.Equal(t, host.LabelOrange, voice.Label())
	assert.Equal(t, []string{"Sniprr Import", "Sniprr Import"}, f.p.UndoNames())
}

func TestApplyPresetFull(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	a := f.solid(t, "A", 100, 100, 2, 5)
	b := f.solid(t, "B", 100, 100, 3, 8)
	f.comp.Select(a, b)
	dir := t.TempDir()
	writePreset(t, dir, "Glow [full].ffx", "preset")

	res, err := f.e.ApplyPreset(filepath.Join(dir, "Glow%20%5Bfull%5D.ffx"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Affected)
	require.Equal(t, 3, f.comp.NumLayers())

	l := f.layer(t, 1).(*document.Layer)
	assert.Equal(t, "Glow", l.Name())
	assert.True(t, l.Adjustment())
	assert.Equal(t, host.LabelBlue, l.Label())
	assert.Equal(t, 0.0, l.InPoint())
	assert.Equal(t, 10.0, l.OutPoint())
	assert.Equal(t, []string{"Glow [full].ffx"}, l.Presets())
	assert.Equal(t, []string{"Sniprr Apply Preset"}, f.p.UndoNames())
}

func TestApplyPresetPerLayer(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	bottom := f.solid(t, "Bottom", 100, 100, 0, 10)
	a := f.solid(t, "A", 100, 100, 2, 5)
	f.solid(t, "Top", 100, 100, 0, 10)
	f.comp.Select(a, bottom)
	dir := t.TempDir()
	path := writePreset(t, dir, "Flash [white] [10f].ffx", "preset")

	res, err := f.e.ApplyPreset(path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Affected)
	require.Equal(t, 5, f.comp.NumLayers())

	// Each carrier sits directly above its target.
	overA := f.layer(t, a.Index()-1).(*document.Layer)
	assert.Equal(t, "Flash", overA.Name())
	assert.Equal(t, host.KindSolid, overA.Kind())
	assert.Equal(t, host.LabelLavender, overA.Label())
	assert.InDelta(t, 2.0, overA.InPoint(), 1e-9)
	assert.InDelta(t, 2.4, overA.OutPoint(), 1e-9)
	col, ok := overA.Color()
	require.True(t, ok)
	assert.Equal(t, host.White, col)

	overBottom := f.layer(t, bottom.Index()-1)
	assert.Equal(t, "Flash", overBottom.Name())
	assert.InDelta(t, 0.0, overBottom.InPoint(), 1e-9)
}

func TestApplyPresetStyles(t *testing.T) {
	tests := []struct {
		file  string
		kind  host.LayerKind
		label host.Label
		color host.Color
	}{
		{"Track [null].ffx", host.KindNull, host.LabelRed, host.Color{}},
		{"Shade [black].ffx", host.KindSolid, host.LabelSandstone, host.Black},
	}
	for _, tt := range tests {
		f := newFixture(t, 1920, 1080)
		a := f.solid(t, "A", 100, 100, 2, 5)
		f.comp.Select(a)
		path := writePreset(t, t.TempDir(), tt.file, "preset")

		_, err := f.e.ApplyPreset(path)
		require.NoError(t, err, tt.file)
		l := f.layer(t, 1).(*document.Layer)
		assert.Equal(t, tt.kind, l.Kind(), tt.file)
		assert.Equal(t, tt.label, l.Label(), tt.file)
		if col, ok := l.Color(); ok {
			assert.Equal(t, tt.color, col, tt.file)
		}
	}
}

func TestApplyPresetCentered(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	a := f.solid(t, "A", 100, 100, 2, 5)
	f.comp.Select(a)
	path := writePreset(t, t.TempDir(), "Whoosh [trans].ffx", "preset")

	_, err := f.e.ApplyPreset(path)
	require.NoError(t, err)
	l := f.layer(t, 1)
	assert.InDelta(t, 1.5, l.InPoint(), 1e-9)
	assert.InDelta(t, 2.5, l.OutPoint(), 1e-9)
}

func TestApplyPresetZeroDuration(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	a := f.solid(t, "A", 100, 100, 2, 5)
	f.comp.Select(a)
	path := writePreset(t, t.TempDir(), "Drift [0s].ffx", "preset")

	res, err := f.e.ApplyPreset(path)
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Status)
	require.Equal(t, 2, f.comp.NumLayers())
	l := f.layer(t, 1)
	assert.InDelta(t, 2, l.InPoint(), 1e-9)
	assert.InDelta(t, 5, l.OutPoint(), 1e-9)
}

func TestApplyPresetFailureKeepsLayer(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	a := f.solid(t, "A", 100, 100, 2, 5)
	f.comp.Select(a)
	path := writePreset(t, t.TempDir(), "Broken.ffx", "")

	res, err := f.e.ApplyPreset(path)
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Status)
	require.Len(t, res.Warnings, 1)
	l := f.layer(t, 1).(*document.Layer)
	assert.Equal(t, "Broken", l.Name())
	assert.Empty(t, l.Presets())
}

func TestApplyPresetPreconditions(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	f.solid(t, "A", 100, 100, 2, 5)
	dir := t.TempDir()

	_, err := f.e.ApplyPreset(filepath.Join(dir, "Missing.ffx"))
	assert.ErrorIs(t, err, ErrFileNotFound)

	path := writePreset(t, dir, "Tint.ffx", "preset")
	_, err = f.e.ApplyPreset(path)
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Equal(t, 1, f.comp.NumLayers())
}

func TestCreateLayerDefaults(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	f.comp.SetTime(4)

	_, err := f.e.CreateLayer("adjustment", "", "")
	require.NoError(t, err)
	adj := f.layer(t, 1).(*document.Layer)
	assert.Equal(t, "Adjustment Layer", adj.Name())
	assert.True(t, adj.Adjustment())
	assert.Equal(t, host.LabelLavender, adj.Label())
	assert.Equal(t, 4.0, adj.InPoint())
	assert.Equal(t, host.Rect{Width: 1920, Height: 1080}, adj.SourceRectAtTime(4))

	_, err = f.e.CreateLayer("solid", "#zz", "")
	require.NoError(t, err)
	sol := f.layer(t, 1).(*document.Layer)
	assert.Equal(t, "Solid", sol.Name())
	col, _ := sol.Color()
	assert.Equal(t, host.Gray, col)

	_, err = f.e.CreateLayer("text", "", "Title")
	require.NoError(t, err)
	txt := f.layer(t, 1).(*document.Layer)
	assert.Equal(t, "Title", txt.Text())

	_, err = f.e.CreateLayer("null", "", "")
	require.NoError(t, err)
	assert.Equal(t, host.KindNull, f.layer(t, 1).Kind())

	_, err = f.e.CreateLayer("camera", "", "")
	require.NoError(t, err)
	assert.Equal(t, host.KindCamera, f.layer(t, 1).Kind())

	res, err := f.e.CreateLayer("light", "", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, NoOp, res.Status)
	assert.Equal(t, 5, f.comp.NumLayers())
}

func TestCreateLayerAboveTarget(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	target := f.solid(t, "Target", 200, 100, 2, 5)
	f.solid(t, "Top", 100, 100, 0, 10)
	f.comp.Select(target)

	_, err := f.e.CreateLayer("solid", "#FF0000", "Red")
	require.NoError(t, err)

	red := f.layer(t, target.Index()-1).(*document.Layer)
	assert.Equal(t, "Red", red.Name())
	assert.Equal(t, 2.0, red.InPoint())
	assert.Equal(t, 5.0, red.OutPoint())
	assert.Equal(t, host.Rect{Width: 200, Height: 100}, red.SourceRectAtTime(2))
	col, _ := red.Color()
	assert.Equal(t, host.Color{1, 0, 0}, col)
	assert.Equal(t, []string{"Sniprr Create solid"}, f.p.UndoNames())
}

func TestCreateCameraDialog(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	f.host.wrap = func(c host.Comp) host.Comp { return dialogComp{c} }

	res, err := f.e.CreateLayer("camera", "", "")
	require.NoError(t, err)
	assert.Equal(t, NoOp, res.Status, "cancelled dialog")
	assert.Equal(t, 0, f.comp.NumLayers())

	f.p.CameraDialog = func() (string, bool) { return "Shot Cam", true }
	_, err = f.e.CreateLayer("camera", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Shot Cam", f.layer(t, 1).Name())

	f.comp.Select()
	_, err = f.e.CreateLayer("camera", "", "Main Cam")
	require.NoError(t, err)
	assert.Equal(t, "Main Cam", f.layer(t, 1).Name())
}

func TestPrecomposeGroup(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	f.solid(t, "Bottom", 100, 100, 0, 10)
	a := f.solid(t, "A", 100, 100, 2, 5)
	b := f.solid(t, "B", 100, 100, 3, 8)
	f.comp.Select(a, b)

	res, err := f.e.Precompose(false, "")
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Status)
	require.Equal(t, 2, f.comp.NumLayers())

	wrapper := f.layer(t, 1)
	assert.Equal(t, "Pre-comp", wrapper.Name())
	assert.Equal(t, 2.0, wrapper.InPoint())
	assert.Equal(t, 8.0, wrapper.OutPoint())
	assert.Equal(t, 2.0, wrapper.StartTime())

	src, ok := wrapper.Source()
	require.True(t, ok)
	sub := src.(host.Comp)
	assert.Equal(t, 6.0, sub.Duration())
	assert.Equal(t, 0.0, a.InPoint())
	assert.Equal(t, 3.0, a.OutPoint())
	assert.Equal(t, 1.0, b.InPoint())
	assert.Equal(t, 6.0, b.OutPoint())
}

func TestPrecomposeGroupLabel(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	a := f.solid(t, "A", 100, 100, 1, 4)
	f.comp.Select(a)

	_, err := f.e.Precompose(false, "Intro")
	require.NoError(t, err)
	assert.Equal(t, "Intro", f.layer(t, 1).Name())
	comps := f.p.Comps()
	require.Len(t, comps, 2)
	assert.Equal(t, "Intro", comps[1].Name())
}

func TestPrecomposeIndividual(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	a := f.solid(t, "A", 100, 100, 2, 5)
	b := f.solid(t, "B", 100, 100, 3, 8)
	f.comp.Select(a, b)

	_, err := f.e.Precompose(true, "FX")
	require.NoError(t, err)
	require.Equal(t, 2, f.comp.NumLayers())

	first, second := f.layer(t, 1), f.layer(t, 2)
	assert.Equal(t, "FX 1", first.Name())
	assert.Equal(t, 3.0, first.InPoint())
	assert.Equal(t, 8.0, first.OutPoint())
	assert.Equal(t, "FX 2", second.Name())
	assert.Equal(t, 2.0, second.InPoint())
	assert.Equal(t, 5.0, second.OutPoint())

	comps := f.p.Comps()
	require.Len(t, comps, 3)
	assert.Equal(t, "FX Comp 1", comps[1].Name())
	assert.Equal(t, 5.0, comps[1].Duration())
	assert.Equal(t, "FX Comp 2", comps[2].Name())
	assert.Equal(t, 0.0, a.InPoint())
	assert.Equal(t, 0.0, b.InPoint())
}

func TestPrecomposeIndividualUnlabeled(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	a := f.solid(t, "A", 100, 100, 2, 5)
	f.comp.Select(a)

	_, err := f.e.Precompose(true, "")
	require.NoError(t, err)
	assert.Equal(t, "A Comp 1", f.p.Comps()[1].Name())
}

func TestPrecomposePreservesSpan(t *testing.T) {
	spans := [][][2]float64{
		{{0, 10}},
		{{1, 2}, {4, 6}, {3, 9}},
		{{2.5, 3}, {0.5, 1}},
	}
	for _, set := range spans {
		f := newFixture(t, 1920, 1080)
		var sel []*document.Layer
		minIn, maxOut := set[0][0], set[0][1]
		for _, s := range set {
			sel = append(sel, f.solid(t, "L", 100, 100, s[0], s[1]))
			minIn = min(minIn, s[0])
			maxOut = max(maxOut, s[1])
		}
		f.comp.Select(sel...)

		_, err := f.e.Precompose(false, "")
		require.NoError(t, err)
		w := f.layer(t, 1)
		assert.InDelta(t, maxOut-minIn, w.OutPoint()-w.InPoint(), 1e-9)
		assert.InDelta(t, minIn, w.InPoint(), 1e-9)
	}
}

func TestFitToComp(t *testing.T) {
	f := newFixture(t, 1080, 1080)
	wide := f.solid(t, "Wide", 1920, 1080, 0, 10)
	require.NoError(t, wide.SetScale(f64.Vec3{300, 300, 100}))
	locked := f.solid(t, "Locked", 500, 500, 0, 10)
	locked.SetLocked(true)
	cam, err := f.comp.AddCamera("Cam")
	require.NoError(t, err)
	f.comp.Select(wide, locked, cam.(*document.Layer))

	res, err := f.e.FitToComp()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Affected)

	tr := wide.Transform()
	assert.InDelta(t, 56.25, tr.Scale[0], 1e-9)
	assert.InDelta(t, 56.25, tr.Scale[1], 1e-9)
	assert.Equal(t, f64.Vec3{540, 540, 0}, tr.Position)
	assert.LessOrEqual(t, 1920*tr.Scale[0]/100, 1080.0+1e-9)
	assert.LessOrEqual(t, 1080*tr.Scale[1]/100, 1080.0+1e-9)

	assert.Equal(t, f64.Vec3{100, 100, 100}, locked.Transform().Scale)
}

func TestFitToCompTall(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	tall := f.solid(t, "Tall", 1080, 1920, 0, 10)
	f.comp.Select(tall)

	res, err := f.e.FitToComp()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Affected)

	tr := tall.Transform()
	assert.InDelta(t, 56.25, tr.Scale[0], 1e-9)
	assert.InDelta(t, 56.25, tr.Scale[1], 1e-9)
	assert.Equal(t, f64.Vec3{960, 540, 0}, tr.Position)
	assert.LessOrEqual(t, 1080*tr.Scale[0]/100, 1920.0+1e-9)
	assert.LessOrEqual(t, 1920*tr.Scale[1]/100, 1080.0+1e-9)
}

func TestFitToComp3D(t *testing.T) {
	f := newFixture(t, 1080, 1080)
	l := f.solid(t, "Deep", 500, 500, 0, 10)
	require.NoError(t, l.SetThreeD(true))
	require.NoError(t, l.SetScale(f64.Vec3{50, 50, 40}))
	require.NoError(t, l.SetPosition(f64.Vec3{1, 2, 300}))
	f.comp.Select(l)

	_, err := f.e.FitToComp()
	require.NoError(t, err)

	tr := l.Transform()
	assert.InDelta(t, 216, tr.Scale[0], 1e-9)
	assert.InDelta(t, 216, tr.Scale[1], 1e-9)
	assert.Equal(t, 100.0, tr.Scale[2])
	assert.Equal(t, f64.Vec3{540, 540, 0}, tr.Position)
}

func TestFitToCompEmptyBounds(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	text, err := f.comp.AddText("")
	require.NoError(t, err)
	l := text.(*document.Layer)
	require.NoError(t, l.SetScale(f64.Vec3{300, 300, 100}))
	f.comp.Select(l)

	res, err := f.e.FitToComp()
	require.NoError(t, err)
	assert.Equal(t, NoOp, res.Status)
	assert.Equal(t, f64.Vec3{300, 300, 100}, l.Transform().Scale)
	assert.Empty(t, f.p.UndoNames())
}

func TestSetAnchorPoint(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	l := f.solid(t, "A", 100, 100, 0, 10)
	f.comp.Select(l)
	before := l.Transform()

	_, err := f.e.SetAnchorPoint(5)
	require.NoError(t, err)
	assert.Equal(t, f64.Vec3{50, 50, 0}, l.Transform().AnchorPoint)
	assert.Equal(t, before.Position, l.Transform().Position)

	_, err = f.e.SetAnchorPoint(1)
	require.NoError(t, err)
	assert.Equal(t, f64.Vec3{0, 0, 0}, l.Transform().AnchorPoint)
	assert.Equal(t, f64.Vec3{910, 490, 0}, l.Transform().Position)

	require.NoError(t, l.SetScale(f64.Vec3{200, 200, 100}))
	_, err = f.e.SetAnchorPoint(9)
	require.NoError(t, err)
	assert.InDelta(t, 1110, l.Transform().Position[0], 1e-9)
	assert.InDelta(t, 690, l.Transform().Position[1], 1e-9)

	_, err = f.e.SetAnchorPoint(10)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	l.SetLocked(true)
	res, err := f.e.SetAnchorPoint(5)
	require.NoError(t, err)
	assert.Equal(t, NoOp, res.Status)
	assert.Len(t, res.Warnings, 1)
}

func TestMoveLayerPoint(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	l := f.solid(t, "A", 100, 100, 4, 7)
	f.comp.Select(l)
	f.comp.SetTime(6)

	_, err := f.e.MoveLayerPoint("in")
	require.NoError(t, err)
	assert.Equal(t, 6.0, l.InPoint())
	assert.Equal(t, 9.0, l.OutPoint())

	f.comp.SetTime(5)
	_, err = f.e.MoveLayerPoint("out")
	require.NoError(t, err)
	assert.Equal(t, 2.0, l.InPoint())
	assert.Equal(t, 5.0, l.OutPoint())

	_, err = f.e.MoveLayerPoint("middle")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTrimSelectedLayers(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	l := f.solid(t, "A", 100, 100, 2, 5)
	f.comp.Select(l)

	for _, cursor := range []float64{1, 2, 5, 6} {
		f.comp.SetTime(cursor)
		for _, side := range []string{"left", "right"} {
			res, err := f.e.TrimSelectedLayers(side)
			require.NoError(t, err)
			assert.Equal(t, NoOp, res.Status)
			assert.Equal(t, 2.0, l.InPoint())
			assert.Equal(t, 5.0, l.OutPoint())
		}
	}

	f.comp.SetTime(3)
	_, err := f.e.TrimSelectedLayers("left")
	require.NoError(t, err)
	assert.Equal(t, 3.0, l.InPoint())

	f.comp.SetTime(4)
	_, err = f.e.TrimSelectedLayers("right")
	require.NoError(t, err)
	assert.Equal(t, 4.0, l.OutPoint())

	_, err = f.e.TrimSelectedLayers("up")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMoveCTI(t *testing.T) {
	f := newFixture(t, 1920, 1080)

	res, err := f.e.MoveCTI(-5)
	require.NoError(t, err)
	assert.Equal(t, NoOp, res.Status)
	assert.Equal(t, 0.0, f.comp.Time())

	res, err = f.e.MoveCTI(25)
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Status)
	assert.InDelta(t, 1.0, f.comp.Time(), 1e-9)

	_, err = f.e.MoveCTI(1e6)
	require.NoError(t, err)
	assert.Equal(t, 10.0, f.comp.Time())
	assert.Zero(t, f.host.begins)

	for _, delta := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = f.e.MoveCTI(delta)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Equal(t, 10.0, f.comp.Time())
	}
}

func TestDeleteSelectedLayers(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	a := f.solid(t, "A", 100, 100, 0, 10)
	b := f.solid(t, "B", 100, 100, 0, 10)
	f.solid(t, "C", 100, 100, 0, 10)
	b.SetLocked(true)
	f.comp.Select(a, b)

	res, err := f.e.DeleteSelectedLayers()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Affected)
	assert.Len(t, res.Warnings, 1)
	assert.Equal(t, 2, f.comp.NumLayers())
	assert.Equal(t, 0, a.Index())
}

func TestSetBlendingMode(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	a := f.solid(t, "A", 100, 100, 0, 10)
	f.comp.Select(a)

	res, err := f.e.SetBlendingMode("ADDD")
	require.NoError(t, err)
	assert.Equal(t, NoOp, res.Status)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "did you mean ADD")
	assert.Equal(t, host.BlendMode(""), a.BlendMode())

	res, err = f.e.SetBlendingMode("ADD")
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Status)
	assert.Equal(t, host.BlendAdd, a.BlendMode())
	assert.Equal(t, []string{"Sniprr Blend Mode"}, f.p.UndoNames())
}
