package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"lead-intake-backend/internal/env"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// EvidenceStore persists visitor uploads (scene photos, plate shots,
// documents) to an S3 bucket and hands back the object URL stored on the
// session transcript.
type EvidenceStore struct {
	svc      *s3.Client
	bucket   string
	endpoint string
}

func NewEvidenceStore() (*EvidenceStore, error) {
	region := env.Get(env.AWSRegion)
	credOne := env.Get(env.AWSID)
	credTwo := env.Get(env.AWSSecret)
	credThree := env.Get(env.AWSToken)
	endpoint := env.Get(env.S3Endpoint)
	bucket := env.Get(env.EvidenceBucket)

	if bucket == "" {
		return nil, fmt.Errorf("evidence bucket not configured")
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	if credOne != "" && credTwo != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(credOne, credTwo, credThree)),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	clientOpts := []func(*s3.Options){}
	if endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &EvidenceStore{
		svc:      s3.NewFromConfig(cfg, clientOpts...),
		bucket:   bucket,
		endpoint: endpoint,
	}, nil
}

// Put uploads the evidence object under a session-scoped key and returns
// the URL to store on the transcript.
func (s *EvidenceStore) Put(ctx context.Context, sessionID, filename string, body io.Reader) (string, error) {
	key := fmt.Sprintf("%s/%s%s", sessionID, uuid.NewString(), safeExt(filename))

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.svc.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put evidence object: %w", err)
	}

	return s.objectURL(key), nil
}

func (s *EvidenceStore) objectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.endpoint, "/"), s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}

func safeExt(filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(filename)))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic", ".pdf":
		return ext
	}
	return ""
}
