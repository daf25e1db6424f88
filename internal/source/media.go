package source

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

type ffprobeOutput struct {
	Streams []struct {
		CodecType         string `json:"codec_type"`
		Width             int    `json:"width"`
		Height            int    `json:"height"`
		SampleAspectRatio string `json:"sample_aspect_ratio"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func probeMedia(path string) (Info, error) {
	cmd := exec.Command("ffprobe", "-v", "error",
		"-show_entries", "stream=codec_type,width,height,sample_aspect_ratio:format=duration",
		"-of", "json", path)
	out, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbeOutput(out)
}

func parseProbeOutput(out []byte) (Info, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return Info{}, fmt.Errorf("ffprobe output: %w", err)
	}

	var info Info
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			if info.HasVideo {
				continue
			}
			info.HasVideo = true
			info.Width, info.Height = s.Width, s.Height
			info.PixelAspect = parseRatio(s.SampleAspectRatio)
		case "audio":
			info.HasAudio = true
		}
	}
	if !info.HasVideo && !info.HasAudio {
		return Info{}, fmt.Errorf("no audio or video streams")
	}
	if probe.Format.Duration != "" {
		d, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
		if err != nil {
			return Info{}, fmt.Errorf("duration %q: %w", probe.Format.Duration, err)
		}
		info.Duration = d
	}
	return info, nil
}

// parseRatio reads an ffprobe "num:den" ratio; unknown ratios are square.
func parseRatio(s string) float64 {
	num, den, ok := strings.Cut(s, ":")
	if !ok {
		return 1
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || n <= 0 || d <= 0 {
		return 1
	}
	return n / d
}
