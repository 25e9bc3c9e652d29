package core

// Color represents a terminal color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors for board elements.
const (
	ColorDefault Color = iota
	ColorBlack
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorGray
	ColorDarkGray
	ColorCharcoal
	ColorBrightWhite
	ColorBrightYellow
	ColorOrange
)

// ANSI returns the 256-color palette index used to draw c.
// ColorDefault has no index and returns "".
func (c Color) ANSI() string {
	switch c {
	case ColorBlack:
		return "16"
	case ColorRed:
		return "1"
	case ColorGreen:
		return "2"
	case ColorYellow:
		return "3"
	case ColorBlue:
		return "4"
	case ColorMagenta:
		return "5"
	case ColorCyan:
		return "6"
	case ColorWhite:
		return "252"
	case ColorGray:
		return "245"
	case ColorDarkGray:
		return "238"
	case ColorCharcoal:
		return "235"
	case ColorBrightWhite:
		return "15"
	case ColorBrightYellow:
		return "11"
	case ColorOrange:
		return "208"
	default:
		return ""
	}
}
