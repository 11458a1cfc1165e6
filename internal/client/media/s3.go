package media

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/atinyakov/TrueFit/internal/client/api"
	"github.com/atinyakov/TrueFit/internal/models"
)

// PresignTTL is how long the returned GET URL stays valid.
const PresignTTL = time.Hour

const s3Failed = "failed to upload image to S3"

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type getPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3 stores images in a bucket and hands out presigned GET URLs.
type S3 struct {
	bucket  string
	client  objectPutter
	presign getPresigner
	newKey  func(name string) string
}

// NewS3 loads the default AWS configuration for region.
func NewS3(ctx context.Context, region, bucket string) (*S3, error) {
	if bucket == "" {
		return nil, errors.New("AWS bucket name is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return newS3(bucket, client, s3.NewPresignClient(client)), nil
}

func newS3(bucket string, client objectPutter, presign getPresigner) *S3 {
	return &S3{
		bucket:  bucket,
		client:  client,
		presign: presign,
		newKey: func(name string) string {
			return "wardrobe/" + uuid.NewString() + "-" + filepath.Base(name)
		},
	}
}

func (s *S3) Upload(ctx context.Context, file models.File) (Upload, error) {
	if err := api.CheckFileSize(file, api.MaxWardrobeImageSize); err != nil {
		return Upload{}, err
	}

	key := s.newKey(file.Name)
	contentType := mime.TypeByExtension(filepath.Ext(file.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          file.Content,
		ContentLength: aws.Int64(file.Size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return Upload{}, &UploadError{Message: s3Failed, Cause: err}
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignTTL))
	if err != nil {
		return Upload{}, &UploadError{Message: s3Failed, Cause: fmt.Errorf("sign request: %w", err)}
	}

	return Upload{SecureURL: req.URL, PublicID: key}, nil
}
