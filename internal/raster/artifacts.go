package raster

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/ulam-spiral/internal/fsutil"
	"github.com/banshee-data/ulam-spiral/internal/monitoring"
	"github.com/banshee-data/ulam-spiral/internal/security"
	"github.com/banshee-data/ulam-spiral/internal/ulam"
)

// Suffixes are appended to the output stem, one per encoder variant.
type Suffixes struct {
	Symbolic string
	Literal  string
}

// DefaultSuffixes produce "<stem>1" and "<stem>2".
var DefaultSuffixes = Suffixes{Symbolic: "1", Literal: "2"}

// ArtifactPath joins dir, stem and suffix the way WriteArtifacts names files.
func ArtifactPath(dir, stem, suffix string) string {
	name := stem + suffix
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// WriteArtifacts writes both P3 variants of g and returns the paths written,
// symbolic first. When dir is set it is created and every path must resolve
// inside it.
func WriteArtifacts(fsys fsutil.FileSystem, dir, stem string, sfx Suffixes, g *ulam.Grid) ([]string, error) {
	if stem == "" {
		return nil, errors.New("output stem must not be empty")
	}
	if sfx.Symbolic == sfx.Literal {
		return nil, fmt.Errorf("symbolic and literal suffixes must differ, both are %q", sfx.Symbolic)
	}
	if dir != "" {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	outputs := []struct {
		suffix string
		encode func(io.Writer, *ulam.Grid) error
	}{
		{sfx.Symbolic, EncodeSymbolic},
		{sfx.Literal, EncodeLiteral},
	}

	paths := make([]string, 0, len(outputs))
	for _, out := range outputs {
		path := ArtifactPath(dir, stem, out.suffix)
		if dir != "" {
			if err := validateArtifactPath(fsys, path, dir); err != nil {
				return paths, err
			}
		}
		if err := writeFile(fsys, path, g, out.encode); err != nil {
			return paths, err
		}
		monitoring.Logf("wrote %dx%d pixel map to %s", g.Size, g.Size, path)
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(fsys fsutil.FileSystem, path string, g *ulam.Grid, encode func(io.Writer, *ulam.Grid) error) (err error) {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	if err := encode(f, g); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// validateArtifactPath keeps path inside dir. Symlinks are only resolved on
// the real filesystem; other implementations get the lexical check alone.
func validateArtifactPath(fsys fsutil.FileSystem, path, dir string) error {
	if err := security.ValidatePathLexically(path, dir); err != nil {
		return err
	}
	switch fsys.(type) {
	case fsutil.OSFileSystem, *fsutil.OSFileSystem:
		return security.ValidatePathWithinDirectory(path, dir)
	}
	return nil
}
