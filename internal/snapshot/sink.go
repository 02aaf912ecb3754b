package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/vango-dev/hostbridge/internal/errors"
)

// Sink receives snapshots.
type Sink interface {
	Write(ctx context.Context, s Snapshot) error
}

// WriterSink writes one JSON snapshot per line.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Write implements Sink.
func (s *WriterSink) Write(_ context.Context, snap Snapshot) error {
	data, err := MarshalJSON(snap)
	if err != nil {
		return errors.New("E050").Wrap(err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(data); err != nil {
		return errors.New("E050").Wrap(err)
	}
	return nil
}

// PutObjectAPI is the part of the S3 client used by S3Sink.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads every snapshot as a JSON object named
// "<prefix><seq>.json".
type S3Sink struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewS3Sink creates a sink uploading to bucket.
func NewS3Sink(client PutObjectAPI, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key for snap.
func (s *S3Sink) Key(snap Snapshot) string {
	return fmt.Sprintf("%s%08d.json", s.prefix, snap.Seq)
}

// Write implements Sink.
func (s *S3Sink) Write(ctx context.Context, snap Snapshot) error {
	data, err := MarshalJSON(snap)
	if err != nil {
		return errors.New("E050").Wrap(err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.Key(snap)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"nodes": fmt.Sprint(snap.Nodes),
		},
	})
	if err != nil {
		return errors.New("E050").
			WithDetail("PutObject " + s.bucket + "/" + s.Key(snap) + " failed").
			Wrap(err)
	}
	return nil
}

// S3Options configures NewS3Client.
type S3Options struct {
	Region   string
	Endpoint string
}

// NewS3Client builds an S3 client with static credentials read from
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN. A
// custom endpoint switches to path-style addressing.
func NewS3Client(opts S3Options) *s3.Client {
	region := opts.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	return s3.New(s3.Options{
		Region:      region,
		Credentials: aws.CredentialsProviderFunc(envCredentials),
	}, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
}

func envCredentials(context.Context) (aws.Credentials, error) {
	creds := aws.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return aws.Credentials{}, errors.New("E050").
			WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set for the S3 sink")
	}
	return creds, nil
}
