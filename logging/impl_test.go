package logging

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestLevels(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.SetLevel(WARN)

	logger.Debug("dropped")
	logger.Infof("dropped %d", 1)
	logger.Warnw("kept", "segment", 3)
	logger.Errorf("kept %s", "too")

	test.That(t, observed.Len(), test.ShouldEqual, 2)
	entries := observed.All()
	test.That(t, entries[0].Message, test.ShouldEqual, "kept")
	test.That(t, entries[0].ContextMap()["segment"], test.ShouldEqual, int64(3))
	test.That(t, entries[1].Message, test.ShouldEqual, "kept too")
}

func TestLevelFromString(t *testing.T) {
	level, err := LevelFromString("DEBUG")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, DEBUG)

	level, err = LevelFromString("warning")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, WARN)

	_, err = LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSublogger(t *testing.T) {
	logger := NewBlankLogger("tdcr")
	var buf bytes.Buffer
	logger.AddAppender(NewWriterAppender(&buf))

	sub := logger.Sublogger("planner")
	sub.Infow("step", "index", 1)

	line := buf.String()
	parts := strings.Split(strings.TrimSuffix(line, "\n"), "\t")
	test.That(t, len(parts), test.ShouldEqual, 6)
	test.That(t, parts[1], test.ShouldEqual, "INFO")
	test.That(t, parts[2], test.ShouldEqual, "tdcr.planner")
	test.That(t, parts[4], test.ShouldEqual, "step")
	test.That(t, parts[5], test.ShouldEqual, `{"index": 1}`)
}

func TestUnpairedKey(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.Infow("msg", "lonely")
	test.That(t, observed.Len(), test.ShouldEqual, 1)
	test.That(t, observed.All()[0].ContextMap()["lonely"], test.ShouldEqual, "unpaired log key")
}

func TestAsZap(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.AsZap().Infow("through zap", "ok", true)
	test.That(t, observed.Len(), test.ShouldEqual, 1)
	test.That(t, observed.All()[0].Message, test.ShouldEqual, "through zap")
}

func TestFileAppender(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "tdcr.log")
	appender := NewFileAppender(fn, 1, 1)
	logger := NewBlankLogger("file")
	logger.AddAppender(appender)
	logger.Info("written")
	test.That(t, logger.Sync(), test.ShouldBeNil)
	test.That(t, appender.Close(), test.ShouldBeNil)

	matches, err := filepath.Glob(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, matches, test.ShouldHaveLength, 1)
}
