// Package probe reads stream characteristics of media files with ffprobe.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when the ffprobe binary cannot be located.
var ErrNotFound = errors.New("ffprobe binary not found")

// Info is the subset of ffprobe output used for classification.
type Info struct {
	Duration       time.Duration
	AudioLanguages []string
	SubtitleCodecs []string
}

// HasAudioLanguage reports whether any audio stream is tagged with one of
// langs. Comparison ignores case.
func (i Info) HasAudioLanguage(langs ...string) bool {
	return containsFold(i.AudioLanguages, langs)
}

// HasSubtitleCodec reports whether any subtitle stream uses one of codecs.
func (i Info) HasSubtitleCodec(codecs ...string) bool {
	return containsFold(i.SubtitleCodecs, codecs)
}

func containsFold(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

type result struct {
	Streams []stream `json:"streams"`
	Format  format   `json:"format"`
}

type stream struct {
	Index     int               `json:"index"`
	CodecName string            `json:"codec_name"`
	CodecType string            `json:"codec_type"`
	Duration  string            `json:"duration"`
	Tags      map[string]string `json:"tags"`
}

type format struct {
	Filename string `json:"filename"`
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

// Parse decodes an ffprobe JSON document (-show_format -show_streams).
func Parse(data []byte) (Info, error) {
	var r result
	if err := json.Unmarshal(data, &r); err != nil {
		return Info{}, fmt.Errorf("ffprobe parse: %w", err)
	}

	info := Info{Duration: seconds(r.Format.Duration)}
	for _, s := range r.Streams {
		switch strings.ToLower(s.CodecType) {
		case "audio":
			if lang := strings.TrimSpace(s.Tags["language"]); lang != "" {
				info.AudioLanguages = append(info.AudioLanguages, strings.ToLower(lang))
			}
		case "subtitle":
			if s.CodecName != "" {
				info.SubtitleCodecs = append(info.SubtitleCodecs, strings.ToLower(s.CodecName))
			}
		}
		// Some containers only report duration per stream.
		if info.Duration == 0 {
			info.Duration = seconds(s.Duration)
		}
	}
	return info, nil
}

func seconds(value string) time.Duration {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(parsed) || parsed < 0 {
		return 0
	}
	return time.Duration(parsed * float64(time.Second))
}

// FFProbe runs the ffprobe binary.
type FFProbe struct {
	Binary  string
	Timeout time.Duration
}

// New returns an FFProbe using binary, or "ffprobe" from PATH when empty.
func New(binary string, timeout time.Duration) *FFProbe {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFProbe{Binary: binary, Timeout: timeout}
}

// Probe inspects path. A missing binary yields ErrNotFound.
func (p *FFProbe) Probe(ctx context.Context, path string) (Info, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Info{}, errors.New("ffprobe inspect: empty path")
	}
	binary, err := exec.LookPath(p.Binary)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %s", ErrNotFound, p.Binary)
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Info{}, fmt.Errorf("ffprobe inspect %s: %w: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Info{}, fmt.Errorf("ffprobe inspect %s: %w", path, err)
	}
	return Parse(output)
}
