package scanner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Sunspark/MauroDataCollector/internal/files/filesystem"
	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

// Scanner discovers input files.
// Scanner is safe for concurrent use as long as the provider is.
type Scanner struct {
	fsProvider filesystem.FileSystemProvider
}

var _ mauro.FileScanner = (*Scanner)(nil)

// NewScanner creates a scanner over the OS filesystem.
func NewScanner() *Scanner {
	return &Scanner{fsProvider: filesystem.NewOSFileSystem()}
}

// NewScannerWithFS creates a scanner with a custom filesystem provider.
// Panics if fsProvider is nil.
func NewScannerWithFS(fsProvider filesystem.FileSystemProvider) *Scanner {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Scanner{fsProvider: fsProvider}
}

// Discover returns the files selected by sel.
func (s *Scanner) Discover(sel mauro.InputSelection) ([]string, error) {
	switch sel.Kind {
	case mauro.InputSingleFile:
		return s.single(sel.Path)
	case mauro.InputDirectory:
		return s.directory(sel.Path, sel.Extension)
	}
	return nil, fmt.Errorf("unknown input selection kind %d", sel.Kind)
}

func (s *Scanner) single(path string) ([]string, error) {
	info, err := s.fsProvider.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("input file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("input file %s is a directory", path)
	}
	return []string{path}, nil
}

func (s *Scanner) directory(dir, ext string) ([]string, error) {
	info, err := s.fsProvider.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input directory %s is not a directory", dir)
	}

	entries, err := s.fsProvider.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	ext = NormalizeExtension(ext)
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// NormalizeExtension returns ext with a leading dot, or the default extension when empty.
func NormalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return mauro.DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
