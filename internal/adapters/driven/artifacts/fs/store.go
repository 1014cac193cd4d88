package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/docsmith-labs/docsort-cli/internal/core/domain"
	"github.com/docsmith-labs/docsort-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ArtifactStore = (*Store)(nil)

const (
	convertedDirName = "converted"
	briefsDirName    = "briefs"

	// hashPrefixLen is how much of the content hash goes into artifact
	// file names. Twelve hex characters keep names short while leaving
	// collisions out of practical reach.
	hashPrefixLen = 12
)

// Store persists artifacts under a workspace directory.
type Store struct {
	workspace string
}

// NewStore creates the artifact directories under workspace.
func NewStore(workspace string) (*Store, error) {
	for _, dir := range []string{convertedDirName, briefsDirName} {
		if err := os.MkdirAll(filepath.Join(workspace, dir), 0o755); err != nil {
			return nil, fmt.Errorf("creating artifact directory %s: %w", dir, err)
		}
	}
	return &Store{workspace: workspace}, nil
}

// Workspace returns the root directory artifacts live under.
func (s *Store) Workspace() string {
	return s.workspace
}

// WriteConverted persists converted text and returns its path.
func (s *Store) WriteConverted(contentHash, text string) (string, error) {
	return s.write(convertedDirName, contentHash, text)
}

// ReadConverted returns the converted text for a hash.
func (s *Store) ReadConverted(contentHash string) (string, error) {
	return s.read(convertedDirName, contentHash)
}

// WriteBrief persists a brief and returns its path.
func (s *Store) WriteBrief(contentHash, text string) (string, error) {
	return s.write(briefsDirName, contentHash, text)
}

// ReadBrief returns the brief for a hash.
func (s *Store) ReadBrief(contentHash string) (string, error) {
	return s.read(briefsDirName, contentHash)
}

// artifactPath maps a hash to its file inside dir.
func (s *Store) artifactPath(dir, contentHash string) (string, error) {
	if len(contentHash) < hashPrefixLen {
		return "", fmt.Errorf("%w: content hash %q too short", domain.ErrInvalidInput, contentHash)
	}
	return filepath.Join(s.workspace, dir, contentHash[:hashPrefixLen]+".md"), nil
}

func (s *Store) write(dir, contentHash, text string) (string, error) {
	path, err := s.artifactPath(dir, contentHash)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return path, nil
}

func (s *Store) read(dir, contentHash string) (string, error) {
	path, err := s.artifactPath(dir, contentHash)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: artifact %s", domain.ErrNotFound, filepath.Base(path))
		}
		return "", fmt.Errorf("reading artifact: %w", err)
	}
	return string(data), nil
}
