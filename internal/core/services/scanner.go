package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docsmith-labs/docsort-cli/internal/core/domain"
	"github.com/docsmith-labs/docsort-cli/internal/logger"
)

// Scanner enumerates candidate documents under one or more roots.
// Filtering rules come from the scan configuration; the scanner itself
// holds no mutable state and is safe for reuse.
type Scanner struct {
	allowedExts   map[string]struct{}
	excludedDirs  map[string]struct{}
	excludedFiles map[string]struct{}
}

// NewScanner creates a scanner from the given configuration.
func NewScanner(cfg domain.ScanConfig) *Scanner {
	s := &Scanner{
		allowedExts:   make(map[string]struct{}, len(cfg.AllowedExtensions)),
		excludedDirs:  make(map[string]struct{}, len(cfg.ExcludedDirs)),
		excludedFiles: make(map[string]struct{}, len(cfg.ExcludedFiles)),
	}
	for _, ext := range cfg.AllowedExtensions {
		s.allowedExts[strings.ToLower(ext)] = struct{}{}
	}
	for _, dir := range cfg.ExcludedDirs {
		s.excludedDirs[dir] = struct{}{}
	}
	for _, name := range cfg.ExcludedFiles {
		s.excludedFiles[name] = struct{}{}
	}
	return s
}

// Scan walks the roots and returns the matching files with their content
// hashes computed. Missing roots and permission failures become warnings;
// the scan itself only fails on a cancelled context. The result is sorted
// by descending size, path ascending as tiebreak, so repeated scans of an
// unchanged tree produce identical output.
func (s *Scanner) Scan(ctx context.Context, roots []string) (*domain.ScanResult, error) {
	result := &domain.ScanResult{}

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			result.Warnings = append(result.Warnings, domain.ScanWarning{
				Path: root, Reason: fmt.Sprintf("cannot resolve path: %v", err),
			})
			continue
		}
		result.Roots = append(result.Roots, abs)

		info, err := os.Stat(abs)
		if err != nil {
			result.Warnings = append(result.Warnings, domain.ScanWarning{
				Path: abs, Reason: "path does not exist",
			})
			logger.Warn("skipping %s: %v", abs, err)
			continue
		}

		if info.IsDir() {
			if err := s.scanDir(ctx, abs, result); err != nil {
				return nil, err
			}
			continue
		}

		if err := s.addFile(ctx, abs, info.Size(), result); err != nil {
			return nil, err
		}
	}

	sort.Slice(result.Files, func(i, j int) bool {
		if result.Files[i].SizeBytes != result.Files[j].SizeBytes {
			return result.Files[i].SizeBytes > result.Files[j].SizeBytes
		}
		return result.Files[i].Path < result.Files[j].Path
	})

	return result, nil
}

// scanDir walks one directory root, honouring the deny-lists.
func (s *Scanner) scanDir(ctx context.Context, root string, result *domain.ScanResult) error {
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			result.Warnings = append(result.Warnings, domain.ScanWarning{
				Path: path, Reason: fmt.Sprintf("not accessible: %v", err),
			})
			logger.Warn("skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if _, excluded := s.excludedDirs[name]; excluded || strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			result.Warnings = append(result.Warnings, domain.ScanWarning{
				Path: path, Reason: fmt.Sprintf("not accessible: %v", err),
			})
			return nil
		}
		return s.addFile(ctx, path, info.Size(), result)
	})

	if walkErr != nil && ctx.Err() != nil {
		return walkErr
	}
	return nil
}

// addFile filters a single file and appends its record with the content
// hash computed.
func (s *Scanner) addFile(ctx context.Context, path string, size int64, result *domain.ScanResult) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	name := filepath.Base(path)
	if _, excluded := s.excludedFiles[name]; excluded {
		return nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	if _, allowed := s.allowedExts[ext]; !allowed {
		return nil
	}

	hash, err := hashFile(path)
	if err != nil {
		result.Warnings = append(result.Warnings, domain.ScanWarning{
			Path: path, Reason: fmt.Sprintf("cannot hash: %v", err),
		})
		logger.Warn("skipping %s: %v", path, err)
		return nil
	}

	result.Files = append(result.Files, domain.FileRecord{
		Path:        path,
		Extension:   ext,
		SizeBytes:   size,
		ContentHash: hash,
	})
	return nil
}

// hashFile computes the streamed SHA-256 of a file. Memory use is bounded
// regardless of file size.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
