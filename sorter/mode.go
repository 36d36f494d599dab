package sorter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned by ParseMode for names outside the supported set.
var ErrUnknownMode = errors.New("unknown sort mode")

// Mode selects the value pixels are sorted by.
type Mode int

const (
	Red Mode = iota
	Green
	Blue
	Alpha
	Hue
	Saturation
	Lightness
)

var modeNames = [...]string{
	Red:        "red",
	Green:      "green",
	Blue:       "blue",
	Alpha:      "alpha",
	Hue:        "hue",
	Saturation: "saturation",
	Lightness:  "lightness",
}

// Modes returns every supported mode in declaration order.
func Modes() []Mode {
	modes := make([]Mode, len(modeNames))
	for i := range modeNames {
		modes[i] = Mode(i)
	}
	return modes
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode returns the mode with the given name. Matching is case-insensitive.
func ParseMode(name string) (Mode, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for i, n := range modeNames {
		if n == lower {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q (valid modes: %s)", ErrUnknownMode, name, strings.Join(modeNames[:], ", "))
}
