package audio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Store persists generated audio files and resolves their public URLs.
type Store interface {
	Exists(ctx context.Context, name string) (bool, error)
	Put(ctx context.Context, name string, data []byte) error
	URL(name string) string
}

// audioDir is the subdirectory of the media root holding generated audio.
const audioDir = "audio"

// LocalStore keeps audio under <mediaRoot>/audio, served by the HTTP server
// under <mediaURL>audio/.
type LocalStore struct {
	root     string
	mediaURL string
}

// NewLocalStore creates the audio directory if needed.
func NewLocalStore(mediaRoot, mediaURL string) (*LocalStore, error) {
	dir := filepath.Join(mediaRoot, audioDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}
	if !strings.HasSuffix(mediaURL, "/") {
		mediaURL += "/"
	}
	return &LocalStore{root: dir, mediaURL: mediaURL}, nil
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, filepath.Base(name))
}

func (s *LocalStore) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(s.path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Put writes through a temporary file so readers never see a partial MP3.
func (s *LocalStore) Put(_ context.Context, name string, data []byte) error {
	tmp, err := os.CreateTemp(s.root, ".tmp-*.mp3")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return os.Rename(tmp.Name(), s.path(name))
}

func (s *LocalStore) URL(name string) string {
	return s.mediaURL + audioDir + "/" + name
}

// List returns the MP3 files currently stored.
func (s *LocalStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".mp3" && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Remove deletes a stored file. Removing a missing file is not an error.
func (s *LocalStore) Remove(name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove audio file: %w", err)
	}
	return nil
}
