package frames

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/reelcut/reelcut-agent/internal/timeline"
)

// FFmpegExtractor shells out to ffmpeg to grab one thumbnail per sample
// point across the requested range.
type FFmpegExtractor struct {
	binary    string
	outputDir string
	logger    *slog.Logger
}

func NewFFmpegExtractor(binary, outputDir string, logger *slog.Logger) *FFmpegExtractor {
	return &FFmpegExtractor{binary: binary, outputDir: outputDir, logger: logger}
}

func (e *FFmpegExtractor) ExtractFrames(ctx context.Context, mediaURI string, count int, start, end float64) ([]Frame, error) {
	if count <= 0 || end <= start {
		return nil, fmt.Errorf("invalid extraction range [%v,%v] x%d", start, end, count)
	}
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create frames dir: %w", err)
	}

	interval := (end - start) / float64(count)
	frames := make([]Frame, 0, count)
	for i := 0; i < count; i++ {
		at := start + interval*float64(i)
		id := timeline.NewID()
		out := filepath.Join(e.outputDir, id+".jpg")

		cmd := exec.CommandContext(ctx, e.binary,
			"-ss", fmt.Sprintf("%.3f", at),
			"-i", mediaURI,
			"-frames:v", "1",
			"-q:v", "4",
			"-y", out,
		)
		if output, err := cmd.CombinedOutput(); err != nil {
			return nil, fmt.Errorf("ffmpeg thumbnail at %.3fs failed: %w: %s", at, err, output)
		}

		frames = append(frames, Frame{ID: id, Time: at, Thumbnail: out})
	}

	e.logger.Info("extracted preview frames",
		"count", len(frames), "start", start, "end", end)
	return frames, nil
}
