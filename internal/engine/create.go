package engine

import (
	"fmt"
	"log"
	"regexp"
	"strconv"

	"github.com/ivlev/sniprr/internal/host"
)

// LayerType is a kind of layer createLayer can make.
type LayerType string

const (
	TypeAdjustment LayerType = "adjustment"
	TypeSolid      LayerType = "solid"
	TypeNull       LayerType = "null"
	TypeCamera     LayerType = "camera"
	TypeText       LayerType = "text"
)

// cameraMenu is the host menu command opening the new camera dialog.
const cameraMenu = "Camera..."

var hexColorRe = regexp.MustCompile(`(?i)^#?([0-9a-f]{2})([0-9a-f]{2})([0-9a-f]{2})$`)

// ResolveColor parses "#RRGGBB" (the hash is optional). Anything else yields
// neutral gray.
func ResolveColor(hex string) host.Color {
	m := hexColorRe.FindStringSubmatch(hex)
	if m == nil {
		return host.Gray
	}
	var c host.Color
	for i := range c {
		v, _ := strconv.ParseUint(m[i+1], 16, 8)
		c[i] = float64(v) / 255
	}
	return c
}

// ResolveName returns name, or the default name for the layer type when it is empty.
func ResolveName(t LayerType, name string) string {
	if name != "" {
		return name
	}
	switch t {
	case TypeAdjustment:
		return "Adjustment Layer"
	case TypeSolid:
		return "Solid"
	case TypeCamera:
		return "Camera"
	case TypeText:
		return "Text"
	case TypeNull:
		return "Null"
	default:
		return "Layer"
	}
}

// CreateLayer adds a layer of type kind. With a selected layer the new layer
// takes its size, timing and place in the stack (directly above it); without
// one it is comp-sized, starts at the time cursor and goes on top.
func (e *Engine) CreateLayer(kind, colorHex, name string) (Result, error) {
	t := LayerType(kind)
	return e.run("createLayer", "Create "+kind, func(comp host.Comp, res *Result) error {
		var target host.Layer
		if sel := comp.SelectedLayers(); len(sel) > 0 {
			target = sel[0]
		}

		w, h, pa := comp.Width(), comp.Height(), comp.PixelAspect()
		duration := comp.Duration()
		if target != nil {
			if src, ok := target.Source(); ok && src.Width() > 0 && src.Height() > 0 {
				w, h, pa = src.Width(), src.Height(), src.PixelAspect()
			}
			duration = target.OutPoint() - target.InPoint()
		}

		finalName := ResolveName(t, name)

		var layer host.Layer
		var err error
		switch t {
		case TypeAdjustment:
			layer, err = comp.AddSolid(host.White, finalName, w, h, pa, duration)
			if err == nil {
				if err = layer.SetAdjustment(true); err == nil {
					err = layer.SetLabel(host.LabelLavender)
				}
			}
		case TypeSolid:
			layer, err = comp.AddSolid(ResolveColor(colorHex), finalName, w, h, pa, duration)
		case TypeNull:
			layer, err = comp.AddNull(duration)
		case TypeText:
			layer, err = comp.AddText(finalName)
		case TypeCamera:
			layer, err = e.addCamera(comp, finalName)
			if err == nil && layer == nil {
				log.Printf("[*] createLayer: camera dialog cancelled")
				return nil
			}
			// Without an explicit name the dialog's choice stands.
			if err == nil && name == "" {
				finalName = layer.Name()
			}
		default:
			return fmt.Errorf("%w: unknown layer type %q", ErrInvalidArgument, kind)
		}
		if err != nil {
			return fmt.Errorf("create %s layer: %w", kind, err)
		}

		if err := layer.SetName(finalName); err != nil {
			return err
		}
		if target != nil {
			if err := layer.SetStartTime(target.StartTime()); err != nil {
				return err
			}
			if err := setSpan(layer, target.InPoint(), target.OutPoint()); err != nil {
				return err
			}
			if err := layer.MoveBefore(target); err != nil {
				return err
			}
		} else if err := layer.SetStartTime(comp.Time()); err != nil {
			return err
		}

		res.Affected = 1
		return nil
	})
}

// addCamera creates a camera headlessly when the composition supports it and
// otherwise through the host's camera dialog. A nil layer with a nil error
// means the user dismissed the dialog.
func (e *Engine) addCamera(comp host.Comp, name string) (host.Layer, error) {
	if ca, ok := comp.(host.CameraAdder); ok {
		return ca.AddCamera(name)
	}
	mi, ok := e.Host.(host.MenuInvoker)
	if !ok {
		return nil, fmt.Errorf("host cannot create cameras")
	}

	before := comp.NumLayers()
	if err := mi.InvokeMenu(cameraMenu); err != nil {
		return nil, err
	}
	if comp.NumLayers() <= before {
		return nil, nil
	}
	sel := comp.SelectedLayers()
	if len(sel) == 0 {
		return nil, fmt.Errorf("new camera is not selected")
	}
	return sel[0], nil
}
