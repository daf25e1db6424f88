package engine

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"

	"github.com/ivlev/sniprr/internal/host"
	"github.com/ivlev/sniprr/internal/preset"
	"github.com/ivlev/sniprr/internal/source"
)

// ImportFile imports a media file and lays it into the active composition at
// the time cursor, above the first selected layer if there is one.
func (e *Engine) ImportFile(path string) (Result, error) {
	return e.run("importFile", "Import", func(comp host.Comp, res *Result) error {
		var target host.Layer
		if sel := comp.SelectedLayers(); len(sel) > 0 {
			target = sel[0]
		}

		item, err := e.Host.ImportFile(path)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		layer, err := comp.AddFootage(item)
		if err != nil {
			return fmt.Errorf("add %s: %w", item.Name(), err)
		}
		if err := layer.SetStartTime(comp.Time()); err != nil {
			return err
		}
		if target != nil {
			if err := layer.MoveBefore(target); err != nil {
				return err
			}
		}

		label := host.LabelGreen
		if source.IsAudioFile(path) {
			label = host.LabelOrange
		}
		if err := layer.SetLabel(label); err != nil {
			return err
		}
		res.Affected = 1
		return nil
	})
}

// ApplyPreset creates a carrier layer per selected layer (or one for the whole
// composition with the [full] tag) and applies the preset file to it.
func (e *Engine) ApplyPreset(path string) (Result, error) {
	return e.run("applyPreset", "Apply Preset", func(comp host.Comp, res *Result) error {
		file, err := resolvePresetPath(path)
		if err != nil {
			return err
		}
		desc := preset.Parse(filepath.Base(file), comp.FrameDuration())

		var targets []host.Layer
		if desc.Full {
			targets = []host.Layer{nil}
		} else if targets, err = selection(comp); err != nil {
			return err
		}
		log.Printf("[*] applyPreset: %q tags=%v style=%s targets=%d", desc.DisplayName, desc.Tags(), desc.Style(), len(targets))

		for _, target := range targets {
			var in, out float64
			if target != nil {
				in, out = target.InPoint(), target.OutPoint()
			}
			start, duration := PresetSpan(desc, comp.Duration(), in, out)

			comp.SetTime(start)
			layer, err := materialize(comp, desc)
			if err != nil {
				return fmt.Errorf("create preset layer: %w", err)
			}

			if target != nil {
				err = layer.MoveBefore(target)
			} else {
				err = layer.MoveToBeginning()
			}
			if err != nil {
				return err
			}

			// The carrier layer stays even when the effect cannot attach.
			if err := layer.ApplyPreset(file); err != nil {
				res.warn("preset not applied to %q: %v", desc.DisplayName, err)
			}

			if err := layer.SetName(desc.DisplayName); err != nil {
				return err
			}
			if err := setSpan(layer, start, start+duration); err != nil {
				return err
			}
			res.Affected++
		}
		return nil
	})
}

// PresetSpan computes where a preset layer starts and how long it lasts,
// given the composition duration and the target layer's in and out points.
// A zero duration tag counts as no tag.
func PresetSpan(d preset.Descriptor, compDuration, in, out float64) (start, duration float64) {
	if d.Full {
		return 0, compDuration
	}

	switch {
	case d.HasDuration && d.Duration > 0:
		duration = d.Duration
	case d.Centered:
		duration = 1.0
	default:
		duration = out - in
	}

	if d.Centered {
		return in - duration/2, duration
	}
	return in, duration
}

func materialize(comp host.Comp, d preset.Descriptor) (host.Layer, error) {
	w, h, pa := comp.Width(), comp.Height(), comp.PixelAspect()

	var layer host.Layer
	var err error
	var label host.Label
	switch d.Style() {
	case preset.StyleNull:
		layer, err = comp.AddNull(0)
		label = host.LabelRed
	case preset.StyleSolid:
		layer, err = comp.AddSolid(host.White, d.DisplayName, w, h, pa, 0)
		label = host.LabelLavender
	case preset.StyleBlack:
		layer, err = comp.AddSolid(host.Black, d.DisplayName, w, h, pa, 0)
		label = host.LabelSandstone
	default:
		layer, err = comp.AddSolid(host.White, d.DisplayName, w, h, pa, 0)
		if err == nil {
			err = layer.SetAdjustment(true)
		}
		label = host.LabelBlue
	}
	if err != nil {
		return nil, err
	}
	if err := layer.SetLabel(label); err != nil {
		return nil, err
	}
	return layer, nil
}

// resolvePresetPath returns path if it exists, else its percent-decoded form.
func resolvePresetPath(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if decoded, err := url.PathUnescape(path); err == nil {
		if _, err := os.Stat(decoded); err == nil {
			return decoded, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
}
