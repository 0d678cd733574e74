package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/Tattzy25/real-code-homie/config"
	"github.com/Tattzy25/real-code-homie/internal/domain"
)

const (
	presignTTL    = 15 * time.Minute
	maxUploadSize = 10 << 20
)

// allowedExtensions limits uploads to what the chat UI can attach.
var allowedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".txt": true, ".md": true, ".json": true, ".pdf": true, ".zip": true,
}

// Uploader hands out presigned PUT URLs so attachment bytes never pass
// through the chat service.
type Uploader struct {
	presign       *s3.PresignClient
	bucket        string
	publicBaseURL string
}

func NewUploader(cfg *config.S3Config) (*Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Uploader{
		presign:       s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// PresignedUpload is one granted upload slot.
type PresignedUpload struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
	FileURL   string `json:"fileUrl"`
}

func (u *Uploader) NewUpload(ctx context.Context, userID, filename, contentType string, size int64) (*PresignedUpload, error) {
	ext := strings.ToLower(path.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: file type %q not allowed", domain.ErrInvalidRequest, ext)
	}
	if size <= 0 || size > maxUploadSize {
		return nil, fmt.Errorf("%w: file size %d exceeds %d bytes", domain.ErrInvalidRequest, size, maxUploadSize)
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("uploads/%s/%d/%02d/%s%s", userID, now.Year(), now.Month(), uuid.New(), ext)

	input := &s3.PutObjectInput{
		Bucket:        &u.bucket,
		Key:           &key,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := u.presign.PresignPutObject(ctx, input, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	return &PresignedUpload{
		Key:       key,
		UploadURL: req.URL,
		FileURL:   u.publicBaseURL + "/" + key,
	}, nil
}
