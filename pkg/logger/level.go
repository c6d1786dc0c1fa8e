package logger

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"
)

// LevelTrace is below slog.LevelDebug, matching the usual TRACE < DEBUG ordering.
const LevelTrace = slog.Level(-8)

// ErrUnknownLevel is returned when a severity name cannot be parsed.
var ErrUnknownLevel = errors.New("logger: unknown level")

// Level is a severity threshold that can be decoded from its name.
// Ordering: TRACE < DEBUG < INFO < WARN < ERROR.
type Level slog.Level

// ParseLevel parses a severity name: TRACE, DEBUG, INFO, WARN (or WARNING)
// and ERROR, case-insensitive. Offsets understood by slog, such as "WARN+2",
// are accepted as well.
func ParseLevel(name string) (slog.Level, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	switch s {
	case "":
		return 0, fmt.Errorf("%w: empty name", ErrUnknownLevel)
	case "TRACE":
		return LevelTrace, nil
	case "WARNING":
		return slog.LevelWarn, nil
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.Join(fmt.Errorf("%w: %q", ErrUnknownLevel, name), err)
	}
	return l, nil
}

// Level returns the slog level.
func (l Level) Level() slog.Level {
	return slog.Level(l)
}

func (l Level) String() string {
	if slog.Level(l) == LevelTrace {
		return "TRACE"
	}
	return slog.Level(l).String()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	v, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = Level(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Level) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	return l.UnmarshalText([]byte(name))
}
