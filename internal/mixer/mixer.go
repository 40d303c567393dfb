// Package mixer abstracts the external audio mixing service. The edit core
// invokes it with absolute-time windows and volume parameters derived from
// audio overlays; it never blocks on the result.
package mixer

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Options describes one mix pass: overlay the audio file onto the video
// between Start and End at the given volume, with optional fades.
type Options struct {
	Start   float64
	End     float64
	Volume  float64
	FadeIn  float64
	FadeOut float64
}

// Mixer combines a video file with an audio overlay into a new output file.
type Mixer interface {
	Mix(ctx context.Context, videoPath, audioPath, outputPath string, opts Options) error
}

// FFmpegMixer builds an ffmpeg filter graph for the mix.
type FFmpegMixer struct {
	binary string
	logger *slog.Logger
}

func NewFFmpegMixer(binary string, logger *slog.Logger) *FFmpegMixer {
	return &FFmpegMixer{binary: binary, logger: logger}
}

func (m *FFmpegMixer) Mix(ctx context.Context, videoPath, audioPath, outputPath string, opts Options) error {
	if opts.End <= opts.Start {
		return fmt.Errorf("invalid mix window [%v,%v]", opts.Start, opts.End)
	}
	cmd := exec.CommandContext(ctx, m.binary,
		"-i", videoPath,
		"-i", audioPath,
		"-filter_complex", filterGraph(opts),
		"-c:v", "copy",
		"-y", outputPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg mix failed: %w: %s", err, output)
	}

	m.logger.Info("mixed audio overlay",
		"video", videoPath, "audio", audioPath,
		"start", opts.Start, "end", opts.End, "volume", normalizeVolume(opts.Volume))
	return nil
}

// filterGraph builds the ffmpeg filter chain: trim the overlay audio to
// the window length, apply volume and fades, then adelay into place and
// mix with the video's own audio. The fades run on the trimmed, 0-based
// audio before adelay shifts it, so the fade-in sits at 0 and the fade-out
// ends at the window length.
func filterGraph(opts Options) string {
	length := opts.End - opts.Start

	filters := []string{fmt.Sprintf("volume=%.2f", normalizeVolume(opts.Volume))}
	if opts.FadeIn > 0 {
		filters = append(filters, fmt.Sprintf("afade=t=in:st=0:d=%.3f", opts.FadeIn))
	}
	if opts.FadeOut > 0 {
		filters = append(filters, fmt.Sprintf("afade=t=out:st=%.3f:d=%.3f", length-opts.FadeOut, opts.FadeOut))
	}
	filters = append(filters, fmt.Sprintf("adelay=%d|%d", int(opts.Start*1000), int(opts.Start*1000)))

	return fmt.Sprintf("[1:a]atrim=0:%.3f,%s[ov];[0:a][ov]amix=inputs=2:duration=first",
		length, strings.Join(filters, ","))
}

func normalizeVolume(v float64) float64 {
	if v <= 0 || v > 1 {
		return 1
	}
	return v
}

// StubMixer logs requests; used when ffmpeg is unavailable.
type StubMixer struct {
	logger *slog.Logger
}

func NewStubMixer(logger *slog.Logger) *StubMixer {
	return &StubMixer{logger: logger}
}

func (m *StubMixer) Mix(ctx context.Context, videoPath, audioPath, outputPath string, opts Options) error {
	m.logger.Info("mixer stub: mix requested",
		"video", videoPath, "audio", audioPath, "start", opts.Start, "end", opts.End)
	return nil
}
