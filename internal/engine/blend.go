package engine

import (
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/ivlev/sniprr/internal/host"
)

// blendModes maps the names the panel sends to host blending modes.
// TODO: wire SCREEN and OVERLAY once the panel has buttons for them.
var blendModes = map[string]host.BlendMode{
	"ADD": host.BlendAdd,
}

// ParseBlendMode looks up a blending mode by panel name.
func ParseBlendMode(name string) (host.BlendMode, bool) {
	m, ok := blendModes[name]
	return m, ok
}

// suggestBlendMode returns the closest known name, if any is near enough.
func suggestBlendMode(name string) string {
	names := make([]string, 0, len(blendModes))
	for n := range blendModes {
		names = append(names, n)
	}
	sort.Strings(names)

	best, bestDist := "", 3
	for _, n := range names {
		if d := levenshtein.ComputeDistance(name, n); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

// SetBlendingMode applies a blending mode to every selected layer. Unknown
// mode names change nothing.
func (e *Engine) SetBlendingMode(name string) (Result, error) {
	return e.run("setBlendingMode", "Blend Mode", func(comp host.Comp, res *Result) error {
		sel, err := selection(comp)
		if err != nil {
			return err
		}
		mode, ok := ParseBlendMode(name)
		if !ok {
			if s := suggestBlendMode(name); s != "" {
				res.warn("unknown blending mode %q (did you mean %s?)", name, s)
			} else {
				res.warn("unknown blending mode %q", name)
			}
			return nil
		}

		for _, l := range sel {
			if err := l.SetBlendMode(mode); err != nil {
				return err
			}
			res.Affected++
		}
		return nil
	})
}
