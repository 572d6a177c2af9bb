package logging

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// e.g. "plan", "plan.ik" or "plan.*".
var levelPatternRegexp = regexp.MustCompile(`^([a-zA-Z0-9]+([_-]*[a-zA-Z0-9]+)*|\*)(\.([a-zA-Z0-9]+([_-]*[a-zA-Z0-9]+)*|\*))*$`)

// LevelPattern sets the level of every logger whose name matches Pattern. A '*' in the pattern
// matches any run of characters, dots included.
type LevelPattern struct {
	Pattern string `json:"pattern"`
	Level   string `json:"level"`
}

// ParseLevelPattern parses "pattern=level".
func ParseLevelPattern(s string) (LevelPattern, error) {
	pattern, level, ok := strings.Cut(s, "=")
	if !ok {
		return LevelPattern{}, errors.Errorf("level pattern %q is not of the form pattern=level", s)
	}
	lp := LevelPattern{Pattern: strings.TrimSpace(pattern), Level: strings.TrimSpace(level)}
	if _, err := lp.compile(); err != nil {
		return LevelPattern{}, err
	}
	return lp, nil
}

func (lp LevelPattern) compile() (*regexp.Regexp, error) {
	if !levelPatternRegexp.MatchString(lp.Pattern) {
		return nil, errors.Errorf("invalid logger pattern %q", lp.Pattern)
	}
	if _, err := LevelFromString(lp.Level); err != nil {
		return nil, err
	}
	var matcher strings.Builder
	matcher.WriteRune('^')
	for _, ch := range lp.Pattern {
		switch ch {
		case '*':
			matcher.WriteString(`.*`)
		case '.':
			matcher.WriteString(`\.`)
		default:
			matcher.WriteRune(ch)
		}
	}
	matcher.WriteRune('$')
	return regexp.Compile(matcher.String())
}

// A Registry tracks named loggers so their levels can be set by pattern. Subloggers of a logger
// created by the registry register themselves.
type Registry struct {
	mu       sync.RWMutex
	loggers  map[string]Logger
	patterns []LevelPattern
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{loggers: map[string]Logger{}}
}

// NewLogger returns a registered logger writing to stdout at level.
func (lr *Registry) NewLogger(name string, level Level) Logger {
	logger := NewLogger(name).(*impl)
	logger.SetLevel(level)
	logger.registry = lr
	return lr.Register(name, logger)
}

// Register adds logger under name and applies any matching pattern to it. If a logger is already
// registered under name, that logger is returned instead.
func (lr *Registry) Register(name string, logger Logger) Logger {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if existing, ok := lr.loggers[name]; ok {
		return existing
	}
	lr.loggers[name] = logger
	if level, ok := matchLevel(lr.patterns, name); ok {
		logger.SetLevel(level)
	}
	return logger
}

// LoggerNamed returns the logger registered under name.
func (lr *Registry) LoggerNamed(name string) (Logger, bool) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	logger, ok := lr.loggers[name]
	return logger, ok
}

// Names returns the sorted names of every registered logger.
func (lr *Registry) Names() []string {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	names := make([]string, 0, len(lr.loggers))
	for name := range lr.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetPatterns replaces the level patterns and applies them to registered loggers. Later patterns
// win over earlier ones. Loggers no pattern matches keep their level.
func (lr *Registry) SetPatterns(patterns []LevelPattern) error {
	for _, lp := range patterns {
		if _, err := lp.compile(); err != nil {
			return err
		}
	}
	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.patterns = append([]LevelPattern(nil), patterns...)
	for name, logger := range lr.loggers {
		if level, ok := matchLevel(lr.patterns, name); ok {
			logger.SetLevel(level)
		}
	}
	return nil
}

// matchLevel returns the level of the last pattern matching name. Patterns must be valid.
func matchLevel(patterns []LevelPattern, name string) (Level, bool) {
	var (
		level Level
		found bool
	)
	for _, lp := range patterns {
		r, err := lp.compile()
		if err != nil || !r.MatchString(name) {
			continue
		}
		level, _ = LevelFromString(lp.Level)
		found = true
	}
	return level, found
}
