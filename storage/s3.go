package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"prestamos/config"
)

// S3Store implements Store on a single S3 (or MinIO) bucket. Keys map to object keys directly.
type S3Store struct {
	client    *s3.Client
	bucket    string
	region    string
	endpoint  string
	pathStyle bool
	publicURL string
}

// NewS3Store builds the client from the default AWS credential chain.
// Extra options are applied to the S3 client, tests use them to swap the transport.
func NewS3Store(ctx context.Context, cfg config.S3Config, optFns ...func(*s3.Options)) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	opts := append([]func(*s3.Options){func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}}, optFns...)
	client := s3.NewFromConfig(awsCfg, opts...)

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		region:    region,
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		pathStyle: cfg.PathStyle,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

func (s *S3Store) Driver() Driver { return DriverS3 }

// Put buffers the body so the SDK can compute length and checksums up front.
func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return Info{}, fmt.Errorf("read object body: %w", err)
	}
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return Info{}, fmt.Errorf("put %s: %w", key, err)
	}
	return Info{Key: key, Size: int64(len(body)), ContentType: opts.ContentType, LastModified: time.Now().UTC()}, nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]Info, error) {
	var infos []Info
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, obj := range out.Contents {
			infos = append(infos, Info{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
		if aws.ToBool(out.IsTruncated) && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// URL returns the stable download URL of key. It is not pre-signed; the bucket
// (or the configured public URL) must allow reads.
func (s *S3Store) URL(_ context.Context, key string) (string, error) {
	escaped := escapeKey(key)
	switch {
	case s.publicURL != "":
		return s.publicURL + "/" + escaped, nil
	case s.endpoint != "" && s.pathStyle:
		return s.endpoint + "/" + s.bucket + "/" + escaped, nil
	case s.endpoint != "":
		u, err := url.Parse(s.endpoint)
		if err != nil {
			return "", fmt.Errorf("parse endpoint: %w", err)
		}
		return u.Scheme + "://" + s.bucket + "." + u.Host + "/" + escaped, nil
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped), nil
	}
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
