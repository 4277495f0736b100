package frame

import "fmt"

// AspectRatio is one of the two standard capture aspect ratios.
type AspectRatio int

const (
	AspectRatio4x3 AspectRatio = iota
	AspectRatio16x9
)

func (a AspectRatio) String() string {
	switch a {
	case AspectRatio4x3:
		return "4:3"
	case AspectRatio16x9:
		return "16:9"
	default:
		return fmt.Sprintf("AspectRatio(%d)", int(a))
	}
}

// MarshalText renders the ratio as "4:3" or "16:9".
func (a AspectRatio) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses "4:3" or "16:9".
func (a *AspectRatio) UnmarshalText(text []byte) error {
	switch string(text) {
	case "4:3":
		*a = AspectRatio4x3
	case "16:9":
		*a = AspectRatio16x9
	default:
		return fmt.Errorf("unknown aspect ratio %q", text)
	}
	return nil
}

// SelectAspectRatio picks the standard ratio nearest to the display's ratio.
// Orientation does not matter; an exact tie resolves to 4:3.
func SelectAspectRatio(width, height int) (AspectRatio, error) {
	if width <= 0 || height <= 0 {
		return AspectRatio4x3, fmt.Errorf("display %dx%d: %w", width, height, ErrInvalidArgument)
	}

	long, short := int64(width), int64(height)
	if short > long {
		long, short = short, long
	}

	// |L/S - 4/3| <= |L/S - 16/9|, scaled by 9S so the midpoint compares exactly.
	if 3*abs64(3*long-4*short) <= abs64(9*long-16*short) {
		return AspectRatio4x3, nil
	}
	return AspectRatio16x9, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
