package ggtest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/ggtest/screenshot"
)

// AssertGolden compares shot with the golden image
// <golden dir>/<sanitized name>.png and fails t on a difference.
//
// Set GGTEST_UPDATE=1 to create or update golden images. On mismatch the
// actual frame is written next to the golden image with an .actual.png
// suffix.
func AssertGolden(t testing.TB, shot *screenshot.Screenshot, name string, opts ...Option) {
	t.Helper()
	o := newOptions(opts)
	path := GoldenPath(o.goldenDir, name)

	if shouldUpdate() {
		if err := UpdateGolden(path, shot); err != nil {
			t.Fatalf("ggtest: golden: %v", err)
		}
		t.Logf("ggtest: golden: updated %s", path)
		return
	}

	err := CheckGolden(path, shot)
	switch {
	case err == nil:
	case errors.Is(err, ErrGoldenMissing):
		t.Fatalf("ggtest: golden: %s not found\nRun with %s=1 to create it.\nActual frame: %s",
			path, EnvUpdate, shot)
	case errors.Is(err, ErrGoldenMismatch):
		actual := strings.TrimSuffix(path, ".png") + ".actual.png"
		if werr := screenshot.Save(actual, shot); werr != nil {
			t.Logf("ggtest: golden: write actual frame: %v", werr)
		}
		t.Fatalf("ggtest: golden: %v\nActual frame written to %s\nRun with %s=1 to update.",
			err, actual, EnvUpdate)
	default:
		t.Fatalf("ggtest: golden: %v", err)
	}
}

// CheckGolden compares shot with the PNG at path after normalizing shot
// through an encode-decode round trip. It returns an error matching
// ErrGoldenMissing or ErrGoldenMismatch, or a decode error.
func CheckGolden(path string, shot *screenshot.Screenshot) error {
	golden, err := screenshot.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrGoldenMissing, path)
	}
	if err != nil {
		return err
	}
	actual, err := screenshot.RoundTrip(shot)
	if err != nil {
		return err
	}
	if !actual.Equal(golden) {
		return fmt.Errorf("%w: %s: golden %s, actual %s", ErrGoldenMismatch, path, golden, actual)
	}
	return nil
}

// UpdateGolden writes shot to path as PNG, creating parent directories.
func UpdateGolden(path string, shot *screenshot.Screenshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // golden dirs are shared test fixtures
		return fmt.Errorf("create golden directory: %w", err)
	}
	return screenshot.Save(path, shot)
}

// GoldenPath returns the golden image path for name under dir.
func GoldenPath(dir, name string) string {
	return filepath.Join(dir, sanitizeName(name)+".png")
}

// sanitizeName maps name to a portable file name. The name is normalized
// to NFC first so equivalent spellings share one file.
func sanitizeName(name string) string {
	name = norm.NFC.String(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := strings.Trim(b.String(), ".")
	if s == "" {
		return "unnamed"
	}
	return s
}

// UpdateRequested reports whether GGTEST_UPDATE asks for golden images to
// be rewritten.
func UpdateRequested() bool { return shouldUpdate() }

// shouldUpdate reports whether GGTEST_UPDATE is set to a truthy value.
func shouldUpdate() bool {
	switch strings.ToLower(os.Getenv(EnvUpdate)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
