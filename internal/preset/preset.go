// Package preset derives placement and sizing intent from animation preset
// file names.
//
// Preset files carry bracketed annotations in their names, for example
// "Glow [full].ffx" or "Flash [white] [10f].ffx". The annotations select what
// kind of layer carries the preset and for how long; they are stripped from
// the name shown in the timeline.
package preset

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Extension is the host's animation preset file extension.
const Extension = ".ffx"

// Unit of an explicit duration tag.
type Unit byte

const (
	Frames  Unit = 'f'
	Seconds Unit = 's'
)

// Style is the kind of layer a preset is materialized on.
type Style int

const (
	// StyleAdjustment is a full-frame adjustment layer, the default.
	StyleAdjustment Style = iota
	StyleNull
	StyleSolid
	StyleBlack
)

func (s Style) String() string {
	switch s {
	case StyleNull:
		return "null"
	case StyleSolid:
		return "solid"
	case StyleBlack:
		return "black"
	default:
		return "adjustment"
	}
}

// Descriptor is the parsed form of a preset file name.
type Descriptor struct {
	// DisplayName is the file name without extension and annotations.
	DisplayName string

	Full     bool
	Null     bool
	Solid    bool
	Black    bool
	Centered bool

	HasDuration   bool
	DurationValue int
	DurationUnit  Unit
	// Duration is the explicit duration in seconds, set when HasDuration.
	Duration float64
}

var (
	extRe        = regexp.MustCompile(`(?i)\.ffx$`)
	annotationRe = regexp.MustCompile(`\[.*?\]`)
	spaceRe      = regexp.MustCompile(`\s+`)

	fullRe     = regexp.MustCompile(`(?i)\[\s*full\s*\]`)
	nullRe     = regexp.MustCompile(`(?i)\[\s*null\s*\]`)
	solidRe    = regexp.MustCompile(`(?i)\[\s*(s|sol|solid|white|flash)\s*\]`)
	blackRe    = regexp.MustCompile(`(?i)\[\s*(black|shadow)\s*\]`)
	centeredRe = regexp.MustCompile(`(?i)\[\s*(c|center|trans)\s*\]`)
	durationRe = regexp.MustCompile(`(?i)\[\s*(\d+)\s*(f|s)\s*\]`)
)

// Parse reads the tags out of a preset file name. The name may be
// percent-encoded. frameDuration converts frame-based duration tags to seconds.
func Parse(fileName string, frameDuration float64) Descriptor {
	name := fileName
	if decoded, err := url.PathUnescape(fileName); err == nil {
		name = decoded
	}
	lower := strings.ToLower(name)

	display := extRe.ReplaceAllString(name, "")
	display = annotationRe.ReplaceAllString(display, "")
	display = spaceRe.ReplaceAllString(display, " ")

	d := Descriptor{
		DisplayName: strings.TrimSpace(display),
		Full:        fullRe.MatchString(lower),
		Null:        nullRe.MatchString(lower),
		Solid:       solidRe.MatchString(lower),
		Black:       blackRe.MatchString(lower),
		Centered:    centeredRe.MatchString(lower),
	}

	// Only the first duration tag counts.
	if m := durationRe.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			d.HasDuration = true
			d.DurationValue = v
			d.DurationUnit = Unit(m[2][0])
			if d.DurationUnit == Frames {
				d.Duration = float64(v) * frameDuration
			} else {
				d.Duration = float64(v)
			}
		}
	}
	return d
}

// Style resolves the layer kind with precedence null > solid > black > adjustment.
func (d Descriptor) Style() Style {
	switch {
	case d.Null:
		return StyleNull
	case d.Solid:
		return StyleSolid
	case d.Black:
		return StyleBlack
	default:
		return StyleAdjustment
	}
}

// Tags lists the recognized tags, mostly for logging.
func (d Descriptor) Tags() []string {
	var tags []string
	if d.Full {
		tags = append(tags, "full")
	}
	if d.Null {
		tags = append(tags, "null")
	}
	if d.Solid {
		tags = append(tags, "solid")
	}
	if d.Black {
		tags = append(tags, "black")
	}
	if d.Centered {
		tags = append(tags, "centered")
	}
	if d.HasDuration {
		tags = append(tags, strconv.Itoa(d.DurationValue)+string(d.DurationUnit))
	}
	return tags
}

// IsPresetFile reports whether path names a preset file.
func IsPresetFile(path string) bool {
	return extRe.MatchString(path)
}
