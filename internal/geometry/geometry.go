package geometry

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64"

	"github.com/ivlev/sniprr/internal/host"
)

// FitScale returns the uniform scale, in percent, that fits a source of
// srcW x srcH inside a frame of frameW x frameH without overflow.
//
// The dominant dimension decides: a source relatively wider than the frame is
// fitted by width, anything else by height.
func FitScale(srcW, srcH, frameW, frameH float64) float64 {
	if srcW == 0 || srcH == 0 || frameH == 0 {
		return 100
	}
	srcAR := srcW / srcH
	frameAR := frameW / frameH
	if srcAR > frameAR {
		return frameW / srcW * 100
	}
	return frameH / srcH * 100
}

// FrameCenter is the position that centers a layer in the frame.
func FrameCenter(frameW, frameH int) f64.Vec3 {
	return f64.Vec3{float64(frameW) / 2, float64(frameH) / 2, 0}
}

// GridAnchor maps a 1..9 position (3x3, row-major, 1 = top-left,
// 5 = center, 9 = bottom-right) to a point of rect.
func GridAnchor(rect host.Rect, pos int) (f64.Vec2, error) {
	if pos < 1 || pos > 9 {
		return f64.Vec2{}, fmt.Errorf("anchor position %d out of range 1..9", pos)
	}
	col := (pos - 1) % 3
	row := (pos - 1) / 3
	return f64.Vec2{
		rect.Left + rect.Width*float64(col)/2,
		rect.Top + rect.Height*float64(row)/2,
	}, nil
}

// LayerMatrix is the linear part of a layer's transform: scale (percent)
// followed by rotation (degrees), with no translation.
func LayerMatrix(scale f64.Vec2, rotation float64) f64.Aff3 {
	rad := rotation * math.Pi / 180
	sin, cos := math.Sincos(rad)
	sx, sy := scale[0]/100, scale[1]/100
	return f64.Aff3{
		sx * cos, -sy * sin, 0,
		sx * sin, sy * cos, 0,
	}
}

// Apply maps v through m.
func Apply(m f64.Aff3, v f64.Vec2) f64.Vec2 {
	return f64.Vec2{
		m[0]*v[0] + m[1]*v[1] + m[2],
		m[3]*v[0] + m[4]*v[1] + m[5],
	}
}

// Reanchor moves the anchor point of a layer with transform tr to anchor and
// returns the new anchor point and the position that keeps the layer's
// rendered content in place. Depth components pass through unchanged.
func Reanchor(tr host.Transform, anchor f64.Vec2) (newAnchor, newPos f64.Vec3) {
	delta := f64.Vec2{anchor[0] - tr.AnchorPoint[0], anchor[1] - tr.AnchorPoint[1]}
	m := LayerMatrix(f64.Vec2{tr.Scale[0], tr.Scale[1]}, tr.Rotation)
	d := Apply(m, delta)

	newAnchor = f64.Vec3{anchor[0], anchor[1], tr.AnchorPoint[2]}
	newPos = f64.Vec3{tr.Position[0] + d[0], tr.Position[1] + d[1], tr.Position[2]}
	return newAnchor, newPos
}
