package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/reelcut/reelcut-agent/internal/timeline"
)

type CatalogService interface {
	SaveVideo(ctx context.Context, title, mediaURI string, duration float64) (*Video, error)
	GetVideo(ctx context.Context, id string) (*Video, error)
	GetVideos(ctx context.Context) ([]*Video, error)
	RemoveVideo(ctx context.Context, id string) error
	MarkUploaded(ctx context.Context, id, key string) error
	CountVideos(ctx context.Context) (int, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) SaveVideo(ctx context.Context, title, mediaURI string, duration float64) (*Video, error) {
	if strings.TrimSpace(mediaURI) == "" {
		return nil, fmt.Errorf("media URI is required")
	}
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}
	if strings.TrimSpace(title) == "" {
		title = "Untitled"
	}

	video := &Video{
		ID:        timeline.NewID(),
		Title:     title,
		MediaURI:  mediaURI,
		Duration:  duration,
		CreatedAt: time.Now(),
	}

	if err := s.repo.CreateVideo(ctx, video); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("video saved", "video_id", video.ID, "duration", duration)
	}
	return video, nil
}

func (s *Service) GetVideo(ctx context.Context, id string) (*Video, error) {
	return s.repo.GetVideo(ctx, id)
}

func (s *Service) GetVideos(ctx context.Context) ([]*Video, error) {
	return s.repo.ListVideos(ctx)
}

func (s *Service) RemoveVideo(ctx context.Context, id string) error {
	return s.repo.DeleteVideo(ctx, id)
}

func (s *Service) MarkUploaded(ctx context.Context, id, key string) error {
	video, err := s.repo.GetVideo(ctx, id)
	if err != nil {
		return err
	}
	if video == nil {
		return fmt.Errorf("video not found")
	}
	return s.repo.UpdateVideoUploadedKey(ctx, id, key)
}

func (s *Service) CountVideos(ctx context.Context) (int, error) {
	return s.repo.CountVideos(ctx)
}
