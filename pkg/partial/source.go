package partial

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/fragment/internal/errors"
)

// DefaultMaxBytes caps the size of a fetched partial.
const DefaultMaxBytes = 4 << 20

// readLimited reads r up to max bytes and fails if there is more.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		max = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > max {
		return nil, fmt.Errorf("partial exceeds %d bytes", max)
	}
	return body, nil
}

// HTTPSource fetches partials over HTTP(S).
type HTTPSource struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client

	// MaxBytes defaults to DefaultMaxBytes.
	MaxBytes int64

	// Header is added to every request.
	Header http.Header
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range s.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "text/html")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New("E131").
			WithDetail(fmt.Sprintf("GET %s returned %s.", u, resp.Status))
	}
	return readLimited(resp.Body, s.MaxBytes)
}

// S3API is the part of the S3 client S3Source uses.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source fetches s3://bucket/key partials.
type S3Source struct {
	Client S3API

	// MaxBytes defaults to DefaultMaxBytes.
	MaxBytes int64
}

// NewS3Source creates an S3 source.
func NewS3Source(client S3API) *S3Source {
	return &S3Source{Client: client}
}

// Fetch implements Source.
func (s *S3Source) Fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, errors.New("E133").WithDetail("S3 partial URL " + u.String() + " needs both a bucket and a key.")
	}

	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	return readLimited(out.Body, s.MaxBytes)
}

// FileSource reads file:// partials from a file system. The URL path is
// taken relative to the file system root.
type FileSource struct {
	FS fs.FS

	// MaxBytes defaults to DefaultMaxBytes.
	MaxBytes int64
}

// NewFileSource serves partials from the directory root.
func NewFileSource(root string) *FileSource {
	return &FileSource{FS: os.DirFS(root)}
}

// Fetch implements Source.
func (s *FileSource) Fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	name := strings.TrimPrefix(u.Path, "/")
	if !fs.ValidPath(name) || name == "." {
		return nil, errors.New("E133").WithDetail("File partial path " + u.Path + " is not a valid relative path.")
	}

	f, err := s.FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readLimited(f, s.MaxBytes)
}
