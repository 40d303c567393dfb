// Package frames abstracts the preview-thumbnail extraction service. The
// edit core calls it after every trim change and treats the result as
// replacing the prior thumbnail set.
package frames

import (
	"context"
	"log/slog"
)

// Frame is one extracted preview thumbnail.
type Frame struct {
	ID        string  `json:"id"`
	Time      float64 `json:"time"`
	Thumbnail string  `json:"thumbnail_ref"`
}

// Extractor produces count thumbnails sampled across [start, end] of the
// given media.
type Extractor interface {
	ExtractFrames(ctx context.Context, mediaURI string, count int, start, end float64) ([]Frame, error)
}

// StubExtractor logs requests and returns an empty set; used when ffmpeg is
// unavailable.
type StubExtractor struct {
	logger *slog.Logger
}

func NewStubExtractor(logger *slog.Logger) *StubExtractor {
	return &StubExtractor{logger: logger}
}

func (e *StubExtractor) ExtractFrames(ctx context.Context, mediaURI string, count int, start, end float64) ([]Frame, error) {
	e.logger.Info("frame extraction stub: extraction requested",
		"media_uri", mediaURI, "count", count, "start", start, "end", end)
	return nil, nil
}
