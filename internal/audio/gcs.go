package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// GCSStore keeps audio objects in a Google Cloud Storage bucket.
type GCSStore struct {
	client    *storage.Client
	bucket    string
	publicURL string
}

// NewGCSStore connects to bucket. credentialsJSON holds a service account
// key; when empty, application default credentials are used. publicURL
// overrides the default https://storage.googleapis.com/<bucket>/ prefix.
func NewGCSStore(ctx context.Context, bucket, credentialsJSON, publicURL string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("missing GCS bucket name")
	}

	var opts []option.ClientOption
	if credentialsJSON != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(credentialsJSON), storage.ScopeReadWrite)
		if err != nil {
			return nil, fmt.Errorf("failed to parse GCS credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	} else {
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	if publicURL == "" {
		publicURL = "https://storage.googleapis.com/" + bucket + "/"
	}
	if !strings.HasSuffix(publicURL, "/") {
		publicURL += "/"
	}
	return &GCSStore{client: client, bucket: bucket, publicURL: publicURL}, nil
}

func objectKey(name string) string {
	return audioDir + "/" + name
}

func (s *GCSStore) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.Bucket(s.bucket).Object(objectKey(name)).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", name, err)
}

func (s *GCSStore) Put(ctx context.Context, name string, data []byte) error {
	w := s.client.Bucket(s.bucket).Object(objectKey(name)).NewWriter(ctx)
	w.ContentType = "audio/mpeg"
	w.CacheControl = "public, max-age=31536000"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return nil
}

func (s *GCSStore) URL(name string) string {
	return s.publicURL + objectKey(name)
}

// Close releases the storage client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
