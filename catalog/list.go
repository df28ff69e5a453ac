package catalog

import (
	"cmp"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// List returns the artifacts directly under rootPath whose name contains
// typeTag, newest first. The result is a snapshot: callers must not list
// again during the same retention run.
func List(
	ctx context.Context,
	rootPath string,
	typeTag string,
	logger zerolog.Logger,
	opts ...ListOption,
) ([]Artifact, error) {
	o := listOptions{location: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}
	if o.location == nil {
		o.location = time.UTC
	}

	logger = logger.With().Str("root", rootPath).Str("tag", typeTag).Logger()

	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, &CatalogError{Root: rootPath, Err: err}
	}
	if !info.IsDir() {
		return nil, &CatalogError{Root: rootPath, Err: errors.New("not a directory")}
	}

	entries, err := os.ReadDir(rootPath)
	if err != nil {
		return nil, &CatalogError{Root: rootPath, Err: err}
	}

	parser := NameParser{Location: o.location, UnixSeconds: o.unixSeconds}
	artifacts := make([]Artifact, 0, len(entries))
	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil, &CatalogError{Root: rootPath, Err: ctx.Err()}
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if typeTag != "" && !strings.Contains(name, typeTag) {
			continue
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			logger.Debug().Str("name", name).Msg("skipping symlink")
			continue
		}
		if isExcluded(name, o.excludes) {
			logger.Debug().Str("name", name).Msg("skipping excluded entry")
			continue
		}

		a, err := newArtifact(rootPath, entry, parser)
		if err != nil {
			logger.Warn().Err(err).Str("name", name).Msg("could not stat entry")
			continue
		}
		if a.TimestampErr != nil {
			logger.Warn().Err(a.TimestampErr).Str("name", name).Msg("malformed timestamp in artifact name")
		}
		artifacts = append(artifacts, a)
	}

	slices.SortFunc(artifacts, func(a, b Artifact) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Identifier, b.Identifier)
	})

	logger.Debug().Int("artifacts", len(artifacts)).Msg("listed backup artifacts")
	return artifacts, nil
}

func newArtifact(rootPath string, entry fs.DirEntry, parser NameParser) (Artifact, error) {
	info, err := entry.Info()
	if err != nil {
		return Artifact{}, err
	}

	path := filepath.Join(rootPath, entry.Name())
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	a := Artifact{
		Identifier: entry.Name(),
		Path:       path,
		IsDir:      info.IsDir(),
	}

	if a.IsDir {
		a.SizeBytes = dirSize(path)
	} else {
		a.SizeBytes = info.Size()
	}

	t, found, err := parser.Parse(entry.Name())
	switch {
	case err != nil:
		a.TimestampSource = TimestampFromName
		a.TimestampErr = err
	case found:
		a.CreatedAt = t
		a.TimestampSource = TimestampFromName
	default:
		a.CreatedAt = info.ModTime()
		a.TimestampSource = TimestampFromMTime
	}

	return a, nil
}

// dirSize sums the regular files below path. Unreadable entries are skipped
// since the size is only reported.
func dirSize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

func isExcluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := filepath.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
