package core

// Color is the foreground color of a screen cell. The platform maps it to
// a terminal color.
type Color uint8

const (
	ColorDefault      Color = iota
	ColorGreen              // pipe shafts
	ColorBrightGreen        // pipe lips
	ColorBrightYellow       // birds
	ColorOrange             // beaks
	ColorBrown              // ground
	ColorRed                // guide lines
	ColorWhite              // HUD

	colorCount
)

// Valid reports whether c is a known color.
func (c Color) Valid() bool { return c < colorCount }
