// Package storage puts public objects into an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrNotConfigured is returned when no bucket is set.
var ErrNotConfigured = errors.New("storage: bucket not configured")

// Config describes the bucket and how to reach it.
type Config struct {
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	// Endpoint is host[:port] or a URL; empty means AWS S3 in Region.
	Endpoint string
	// PublicBaseURL, when set, replaces the bucket URL in returned links
	// (a CDN in front of the bucket).
	PublicBaseURL string
}

// Object describes a stored object.
type Object struct {
	Key string
	URL string
}

// Client uploads objects with public-read visibility.
type Client struct {
	config Config
	mc     *minio.Client
	logger echo.Logger
}

// New creates a Client. It does not contact the service.
func New(cfg Config, logger echo.Logger) (*Client, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	raw := cfg.Endpoint
	if raw == "" {
		raw = "https://s3." + cfg.Region + ".amazonaws.com"
	}
	endpoint, secure, err := normaliseEndpoint(raw)
	if err != nil {
		return nil, fmt.Errorf("storage endpoint: %w", err)
	}
	opts := &minio.Options{
		Secure: secure,
		Region: cfg.Region,
	}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		opts.Creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		opts.Creds = credentials.NewEnvAWS()
	}
	mc, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, err
	}
	return &Client{config: cfg, mc: mc, logger: logger}, nil
}

// Put stores size bytes from r at key with the given content type and
// returns the object's public URL.
func (c *Client) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (Object, error) {
	if c.config.Bucket == "" {
		return Object{}, ErrNotConfigured
	}
	_, err := c.mc.PutObject(ctx, c.config.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"x-amz-acl": "public-read"},
	})
	if err != nil {
		c.logger.Errorf("put %s/%s failed: %v", c.config.Bucket, key, err)
		return Object{}, err
	}
	obj := Object{Key: key, URL: PublicURL(c.config, key)}
	c.logger.Infof("stored %s (%d bytes)", obj.URL, size)
	return obj, nil
}

// PublicURL returns the URL an object at key is served from. Without a
// PublicBaseURL this is https://<bucket>.s3.<region>.amazonaws.com/<key>.
func PublicURL(cfg Config, key string) string {
	escaped := escapeKey(key)
	if base := strings.TrimRight(cfg.PublicBaseURL, "/"); base != "" {
		return base + "/" + escaped
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.Bucket, region, escaped)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	// Accept either "minio:9000" or "http://minio:9000" / "https://s3.amazonaws.com".
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		return u.Host, u.Scheme == "https", nil
	}

	// A bare host:port is a local S3-compatible server.
	return raw, false, nil
}
