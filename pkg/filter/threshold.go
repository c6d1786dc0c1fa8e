package filter

import "log/slog"

// Threshold denies events below level and is neutral otherwise.
func Threshold(level slog.Leveler) Filter {
	return thresholdFilter{level: level.Level()}
}

type thresholdFilter struct {
	level slog.Level
}

func (f thresholdFilter) Decide(ev Event) Decision {
	if ev.Level < f.level {
		return Deny
	}
	return Neutral
}
