package engine

import (
	"fmt"

	"github.com/ivlev/sniprr/internal/host"
)

const defaultPrecompName = "Pre-comp"

// layerSpan is what pre-compose needs from a layer, captured before the host
// invalidates indices and selection.
type layerSpan struct {
	index   int
	name    string
	in, out float64
}

// Precompose nests the selected layers into a new composition, either all
// together or one composition per layer. The nested content is trimmed to
// start at zero and the wrapper layer occupies exactly the span the layers
// occupied before.
func (e *Engine) Precompose(individual bool, label string) (Result, error) {
	return e.run("doPrecompose", "Pre-compose", func(comp host.Comp, res *Result) error {
		sel, err := selection(comp)
		if err != nil {
			return err
		}
		spans := make([]layerSpan, len(sel))
		for i, l := range sel {
			spans[i] = layerSpan{index: l.Index(), name: l.Name(), in: l.InPoint(), out: l.OutPoint()}
		}

		if individual {
			for i, s := range spans {
				base := s.name
				if label != "" {
					base = label
				}
				wrapper, sub, err := precompose(comp, []int{s.index}, fmt.Sprintf("%s Comp %d", base, i+1))
				if err != nil {
					return err
				}
				if label != "" {
					if err := wrapper.SetName(fmt.Sprintf("%s %d", label, i+1)); err != nil {
						return err
					}
				}
				if err := trimPrecomp(sub, wrapper, s.in, s.out-s.in); err != nil {
					return err
				}
				res.Affected++
			}
			return nil
		}

		minIn, maxOut := groupSpan(spans)
		indices := make([]int, len(spans))
		for i, s := range spans {
			indices[i] = s.index
		}
		name := defaultPrecompName
		if label != "" {
			name = label
		}

		wrapper, sub, err := precompose(comp, indices, name)
		if err != nil {
			return err
		}
		if label != "" {
			if err := wrapper.SetName(label); err != nil {
				return err
			}
		}
		if err := trimPrecomp(sub, wrapper, minIn, maxOut-minIn); err != nil {
			return err
		}
		res.Affected = 1
		return nil
	})
}

// groupSpan is the union time span of the layers.
func groupSpan(spans []layerSpan) (minIn, maxOut float64) {
	for i, s := range spans {
		if i == 0 || s.in < minIn {
			minIn = s.in
		}
		if i == 0 || s.out > maxOut {
			maxOut = s.out
		}
	}
	return minIn, maxOut
}

// precompose asks the host to nest the layers and returns the wrapper layer,
// which the host leaves as the only selected layer.
func precompose(comp host.Comp, indices []int, name string) (host.Layer, host.Comp, error) {
	sub, err := comp.Precompose(indices, name, true)
	if err != nil {
		return nil, nil, fmt.Errorf("pre-compose %v: %w", indices, err)
	}
	sel := comp.SelectedLayers()
	if len(sel) == 0 {
		return nil, nil, fmt.Errorf("%w: pre-compose left no wrapper layer selected", ErrHost)
	}
	return sel[0], sub, nil
}

// trimPrecomp shortens sub to duration, shifts its content back by minIn and
// places the wrapper at [minIn, minIn+duration] in the parent.
func trimPrecomp(sub host.Comp, wrapper host.Layer, minIn, duration float64) error {
	if err := sub.SetDuration(duration); err != nil {
		return err
	}
	for i := 1; i <= sub.NumLayers(); i++ {
		l, err := sub.Layer(i)
		if err != nil {
			return err
		}
		if err := l.SetStartTime(l.StartTime() - minIn); err != nil {
			return fmt.Errorf("shift %q: %w", l.Name(), err)
		}
	}
	if err := wrapper.SetStartTime(minIn); err != nil {
		return err
	}
	return setSpan(wrapper, minIn, minIn+duration)
}
