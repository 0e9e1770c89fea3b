package models

import "fmt"

type Mode string

const (
	ModeCat  Mode = "cat"
	ModeDog  Mode = "dog"
	ModeBoth Mode = "both"

	DefaultMode = ModeBoth
)

var ModesList = [...]Mode{ModeCat, ModeDog, ModeBoth}

func ParseMode(s string) (Mode, error) {
	for _, m := range ModesList {
		if string(m) == s {
			return m, nil
		}
	}
	return DefaultMode, fmt.Errorf("unknown mode: %q", s)
}

// Matches reports whether a detection with the given label is drawn in this mode.
func (m Mode) Matches(label string) bool {
	switch m {
	case ModeCat, ModeDog:
		return label == string(m)
	default:
		return true
	}
}

func (m Mode) Notice() string {
	switch m {
	case ModeCat:
		return "No cats detected!"
	case ModeDog:
		return "No dogs detected!"
	default:
		return "No cats or dogs detected!"
	}
}
