package ggtest

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/gogpu/ggtest/screenshot"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"counter", "counter"},
		{"counter three", "counter_three"},
		{"a/b\\c", "a_b_c"},
		{"..hidden", "hidden"},
		{"", "unnamed"},
		{"caf\u00e9", "caf_"},
		{"cafe\u0301", "caf_"},
	}
	for _, tt := range tests {
		if got := sanitizeName(tt.in); got != tt.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShouldUpdate(t *testing.T) {
	for _, v := range []string{"1", "true", "YES"} {
		t.Setenv(EnvUpdate, v)
		if !shouldUpdate() {
			t.Errorf("shouldUpdate() = false for %q", v)
		}
	}
	for _, v := range []string{"", "0", "no"} {
		t.Setenv(EnvUpdate, v)
		if shouldUpdate() {
			t.Errorf("shouldUpdate() = true for %q", v)
		}
	}
}

func testFrame(t *testing.T, fill byte) *screenshot.Screenshot {
	t.Helper()
	dims := screenshot.NewBufferDimensions(3, 2, 4)
	payload := make([]byte, dims.Size())
	for i := range payload {
		payload[i] = fill
	}
	s, err := screenshot.New(payload, 3, 2, screenshot.RGBA, screenshot.GPUReadback)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestCheckGolden(t *testing.T) {
	dir := t.TempDir()
	path := GoldenPath(dir, "frame")

	if err := CheckGolden(path, testFrame(t, 0x10)); !errors.Is(err, ErrGoldenMissing) {
		t.Fatalf("missing golden: got %v, want ErrGoldenMissing", err)
	}
	if err := UpdateGolden(filepath.Join(dir, "nested", "frame.png"), testFrame(t, 0x10)); err != nil {
		t.Fatalf("UpdateGolden into new dir: %v", err)
	}
	if err := UpdateGolden(path, testFrame(t, 0x10)); err != nil {
		t.Fatal(err)
	}
	if err := CheckGolden(path, testFrame(t, 0x10)); err != nil {
		t.Errorf("same frame: %v", err)
	}
	if err := CheckGolden(path, testFrame(t, 0x20)); !errors.Is(err, ErrGoldenMismatch) {
		t.Errorf("different frame: got %v, want ErrGoldenMismatch", err)
	}
}
