// Package upload issues presigned S3 PUT URLs so the mobile client can
// upload rendered videos directly to object storage. The agent itself never
// proxies file bytes.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrNotConfigured = errors.New("upload credentials not configured")

// Target is an upload destination the client PUTs the file to.
type Target struct {
	URL       string
	Key       string
	Bucket    string
	Region    string
	ExpiresIn int
}

// Service issues upload targets.
type Service interface {
	RequestUploadTarget(ctx context.Context, fileName, contentType string) (*Target, error)
}

type presignAPI interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Presigner signs PUT URLs against a configured bucket with static
// credentials.
type S3Presigner struct {
	client presignAPI
	bucket string
	region string
	prefix string
	expiry time.Duration
	logger *slog.Logger
	now    func() time.Time
}

type PresignerConfig struct {
	Bucket    string
	Region    string
	Prefix    string
	AccessKey string
	SecretKey string
	Expiry    time.Duration
	Logger    *slog.Logger
}

func NewS3Presigner(cfg PresignerConfig) *S3Presigner {
	client := s3.New(s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	})

	return &S3Presigner{
		client: s3.NewPresignClient(client),
		bucket: cfg.Bucket,
		region: cfg.Region,
		prefix: cfg.Prefix,
		expiry: cfg.Expiry,
		logger: cfg.Logger,
		now:    time.Now,
	}
}

// RequestUploadTarget builds an object key under the configured prefix and
// signs a PUT URL for it.
func (p *S3Presigner) RequestUploadTarget(ctx context.Context, fileName, contentType string) (*Target, error) {
	if fileName == "" {
		return nil, fmt.Errorf("fileName is required")
	}
	if contentType == "" {
		contentType = "video/mp4"
	}

	key := p.buildKey(fileName)

	req, err := p.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = p.expiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	p.logger.Info("issued upload target", "key", key, "expires_in", int(p.expiry.Seconds()))

	return &Target{
		URL:       req.URL,
		Key:       key,
		Bucket:    p.bucket,
		Region:    p.region,
		ExpiresIn: int(p.expiry.Seconds()),
	}, nil
}

// buildKey produces "<prefix><utc timestamp>-<sanitized name>". The
// timestamp keeps keys unique across repeated uploads of the same file.
func (p *S3Presigner) buildKey(fileName string) string {
	prefix := p.prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	stamp := p.now().UTC().Format("20060102-150405")
	return prefix + stamp + "-" + sanitizeFileName(fileName)
}

// sanitizeFileName keeps letters, digits, dots, dashes and underscores;
// everything else becomes an underscore. S3 keys tolerate more, but
// presigned URLs shared with mobile HTTP stacks are happier this way.
func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsControl(r) {
			continue
		}
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) && r < 128 {
			b.WriteRune(r)
			continue
		}
		switch r {
		case '.', '-', '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), "_.")
	if cleaned == "" {
		return "upload"
	}
	return cleaned
}

// StubPresigner is used when credentials are absent; every request fails
// with ErrNotConfigured so the API surfaces a clean error payload.
type StubPresigner struct {
	logger *slog.Logger
}

func NewStubPresigner(logger *slog.Logger) *StubPresigner {
	return &StubPresigner{logger: logger}
}

func (p *StubPresigner) RequestUploadTarget(ctx context.Context, fileName, contentType string) (*Target, error) {
	p.logger.Warn("upload target requested without credentials", "file_name", fileName)
	return nil, ErrNotConfigured
}
