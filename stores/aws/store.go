package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"widget-canvas/core"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

const (
	canvasObject = "canvas_state.json"
	imageObject  = "header_image"
)

// objectAPI is the subset of the S3 client the store uses.
type objectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Store struct {
	s3Client objectAPI
	bucket   string
	prefix   string
}

// NewStore creates an S3-backed store keeping both objects under prefix in bucketName.
// Credentials and region come from the default AWS configuration chain.
func NewStore(ctx context.Context, bucketName, prefix string) (*s3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return newStore(s3.NewFromConfig(cfg), bucketName, prefix), nil
}

func newStore(client objectAPI, bucketName, prefix string) *s3Store {
	return &s3Store{
		s3Client: client,
		bucket:   bucketName,
		prefix:   prefix,
	}
}

func (s *s3Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// get returns ok=false when the object does not exist.
func (s *s3Store) get(ctx context.Context, key string) ([]byte, bool, error) {
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *s3Store) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	return err
}

// CanvasStore implementation
func (s *s3Store) SaveCanvas(ctx context.Context, doc *core.CanvasDocument) error {
	key := s.key(canvasObject)
	log := logrus.WithFields(logrus.Fields{"bucket": s.bucket, "key": key})

	data, err := core.EncodeCanvas(doc)
	if err != nil {
		log.WithError(err).Error("Failed to encode canvas")
		return err
	}

	if err := s.put(ctx, key, data, "application/json"); err != nil {
		log.WithError(err).Error("Failed to upload canvas")
		return core.IOError("Failed to write canvas data", err)
	}

	log.Info("Canvas saved successfully")
	return nil
}

func (s *s3Store) LoadCanvas(ctx context.Context) (*core.CanvasDocument, error) {
	key := s.key(canvasObject)
	log := logrus.WithFields(logrus.Fields{"bucket": s.bucket, "key": key})

	data, ok, err := s.get(ctx, key)
	if err != nil {
		log.WithError(err).Error("Failed to download canvas")
		return nil, core.IOError("Failed to read canvas data", err)
	}
	if !ok {
		log.Info("Canvas object does not exist, returning default canvas")
		return core.DefaultDocument(), nil
	}

	return core.DecodeCanvas(data)
}

// HeaderImageStore implementation
func (s *s3Store) SaveHeaderImage(ctx context.Context, dataURL string) error {
	key := s.key(imageObject)
	log := logrus.WithFields(logrus.Fields{"bucket": s.bucket, "key": key})

	data, err := core.ParseDataURL(dataURL)
	if err != nil {
		log.WithError(err).Warn("Rejected header image")
		return err
	}

	if err := s.put(ctx, key, data, "application/octet-stream"); err != nil {
		log.WithError(err).Error("Failed to upload header image")
		return core.IOError("Failed to write header image", err)
	}

	log.WithField("data_length", len(data)).Info("Header image saved successfully")
	return nil
}

func (s *s3Store) LoadHeaderImage(ctx context.Context) (string, bool, error) {
	key := s.key(imageObject)

	data, ok, err := s.get(ctx, key)
	if err != nil {
		logrus.WithFields(logrus.Fields{"bucket": s.bucket, "key": key}).WithError(err).Error("Failed to download header image")
		return "", false, core.IOError("Failed to read header image", err)
	}
	if !ok {
		return "", false, nil
	}
	return core.EncodePNGDataURL(data), true, nil
}

// DeleteHeaderImage relies on S3 treating deletes of missing keys as success.
func (s *s3Store) DeleteHeaderImage(ctx context.Context) error {
	key := s.key(imageObject)

	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{"bucket": s.bucket, "key": key}).WithError(err).Error("Failed to delete header image")
		return core.IOError("Failed to delete header image", err)
	}
	return nil
}
