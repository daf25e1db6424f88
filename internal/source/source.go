// Package source inspects media files before they are imported into a
// project: still images, PDF documents, and audio or video clips.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Info describes an importable file.
type Info struct {
	Name        string
	Path        string
	Width       int
	Height      int
	PixelAspect float64
	// Duration is zero for stills.
	Duration float64
	HasVideo bool
	HasAudio bool
	// Pages is the page count of a document, zero otherwise.
	Pages int
}

type kind int

const (
	kindUnknown kind = iota
	kindImage
	kindPDF
	kindMedia
)

var (
	imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}
	mediaExtensions = []string{".mp3", ".wav", ".aiff", ".aif", ".m4a", ".ogg", ".aac", ".flac", ".mp4", ".mov", ".m4v", ".avi", ".mkv", ".webm"}
)

// IsAudioFile reports whether the file name has an audio-only extension the
// host labels as audio.
func IsAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav", ".aiff":
		return true
	}
	return false
}

func kindOf(path string) kind {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		return kindPDF
	}
	for _, e := range imageExtensions {
		if ext == e {
			return kindImage
		}
	}
	for _, e := range mediaExtensions {
		if ext == e {
			return kindMedia
		}
	}
	return kindUnknown
}

// Probe reads the size and duration of a file.
func Probe(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	if fi.IsDir() {
		return Info{}, fmt.Errorf("%s is a directory", path)
	}

	var info Info
	switch kindOf(path) {
	case kindImage:
		info, err = probeImage(path)
	case kindPDF:
		info, err = probePDF(path)
	case kindMedia:
		info, err = probeMedia(path)
	default:
		return Info{}, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return Info{}, fmt.Errorf("probe %s: %w", filepath.Base(path), err)
	}

	info.Name = filepath.Base(path)
	info.Path = path
	if info.PixelAspect == 0 {
		info.PixelAspect = 1
	}
	return info, nil
}
