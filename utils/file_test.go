package utils

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "path.csv")

	test.That(t, WriteFileAtomic(fn, []byte("first\n"), 0o644), test.ShouldBeNil)
	test.That(t, WriteFileAtomic(fn, []byte("second\n"), 0o644), test.ShouldBeNil)

	content, err := os.ReadFile(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(content), test.ShouldEqual, "second\n")

	entries, err := os.ReadDir(dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, entries, test.ShouldHaveLength, 1)
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "missing", "path.csv")
	err := WriteFileAtomic(fn, []byte("x"), 0o644)
	test.That(t, err, test.ShouldNotBeNil)
	_, statErr := os.Stat(fn)
	test.That(t, os.IsNotExist(statErr), test.ShouldBeTrue)
}

func TestClamp(t *testing.T) {
	test.That(t, Clamp(5, 0, 1), test.ShouldEqual, 1.)
	test.That(t, Clamp(-5, 0, 1), test.ShouldEqual, 0.)
	test.That(t, Clamp(0.5, 0, 1), test.ShouldEqual, 0.5)
	test.That(t, AllFinite([]float64{1, 2}), test.ShouldBeTrue)
}
