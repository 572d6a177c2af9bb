package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"go.viam.com/tdcr/motionplan"
	"go.viam.com/tdcr/session"
)

const straightScene = "../config/testdata/straight.yaml"

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := NewApp(&out)
	err := app.Run(append([]string{"tdcr"}, args...))
	return out.String(), err
}

func copyScene(t *testing.T, dst string) {
	t.Helper()
	data, err := os.ReadFile(straightScene)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, os.MkdirAll(filepath.Dir(dst), 0o750), test.ShouldBeNil)
	test.That(t, os.WriteFile(dst, data, 0o600), test.ShouldBeNil)
}

func TestPlanCommand(t *testing.T) {
	dir := t.TempDir()
	pathFile := filepath.Join(dir, "path.csv")
	plotFile := filepath.Join(dir, "path.png")
	renderFile := filepath.Join(dir, "render.png")

	out, err := runApp(t, "plan", "--scene", straightScene, "--out", pathFile, "--plot", plotFile,
		"--render", renderFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "LENGTH")
	test.That(t, out, test.ShouldContainSubstring, "state: succeeded")

	path, err := session.LoadPath(pathFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(path), test.ShouldBeGreaterThanOrEqualTo, 1)

	for _, file := range []string{plotFile, renderFile} {
		info, err := os.Stat(file)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
	}
}

func TestPlanCommandErrors(t *testing.T) {
	_, err := runApp(t, "plan")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = runApp(t, "plan", "--scene", filepath.Join(t.TempDir(), "missing.yaml"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSolveCommand(t *testing.T) {
	out, err := runApp(t, "solve", "--scene", straightScene)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "DISPLAY X")
	test.That(t, out, test.ShouldContainSubstring, "curvature:")

	out, err = runApp(t, "solve", "--scene", straightScene, "--no-obstacles")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "iterations:")
}

func TestShowCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "path.csv")
	path := motionplan.Path{
		{Length: 0.1, Tendon: 0, Curvature: []float64{0, 0, 0}},
		{Length: 0.105, Tendon: 0.0005, Curvature: []float64{0.26, 0.26, 0.26}},
	}
	test.That(t, session.SavePath(file, path), test.ShouldBeNil)

	out, err := runApp(t, "show", "--path", file)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "0.105")

	_, err = runApp(t, "show", "--path", filepath.Join(t.TempDir(), "missing.csv"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.yaml")
	second := filepath.Join(dir, "second.yaml")
	copyScene(t, first)
	copyScene(t, second)
	outDir := filepath.Join(dir, "paths")

	out, err := runApp(t, "batch", "--out-dir", outDir, "--jobs", "2", first, second, first)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "succeeded")
	test.That(t, out, test.ShouldContainSubstring, "MEAN STEPS")

	for _, name := range []string{"first.csv", "second.csv"} {
		path, err := session.LoadPath(filepath.Join(outDir, name))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(path), test.ShouldBeGreaterThanOrEqualTo, 1)
	}
}

func TestBatchCommandErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := runApp(t, "batch", "--out-dir", dir)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "at least one scene")

	a := filepath.Join(dir, "a", "scene.yaml")
	b := filepath.Join(dir, "b", "scene.yaml")
	copyScene(t, a)
	copyScene(t, b)
	_, err = runApp(t, "batch", "--out-dir", dir, a, b)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "same path file")
}

func TestLogFlags(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "tdcr.log")
	_, err := runApp(t, "--debug", "--log-level", "tdcr.session=warn", "--log-file", logFile,
		"plan", "--scene", straightScene, "--out", filepath.Join(dir, "path.csv"))
	test.That(t, err, test.ShouldBeNil)
	logged, err := os.ReadFile(logFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(logged), test.ShouldContainSubstring, "wrote path")

	_, err = runApp(t, "--log-level", "no-level-here", "show", "--path", logFile)
	test.That(t, err, test.ShouldNotBeNil)
}
