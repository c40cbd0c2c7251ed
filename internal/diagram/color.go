package diagram

import (
	"fmt"
	"strings"
)

// Color is an 8-bit RGBA color. The text form is "#RRGGBBAA"; decoding also
// accepts "#RRGGBB" with an implied opaque alpha, which is what older save
// files contain.
type Color struct {
	R, G, B, A uint8
}

// DefaultPalette is the eight-color cycle assigned to new entities when the
// user does not pick a color explicitly.
var DefaultPalette = []Color{
	{0x00, 0xBC, 0xD4, 0xFF}, // turquoise
	{0x21, 0x96, 0xF3, 0xFF}, // blue
	{0xE9, 0x1E, 0x63, 0xFF}, // pink
	{0xF4, 0x43, 0x36, 0xFF}, // red
	{0x8B, 0xC3, 0x4A, 0xFF}, // light green
	{0xFF, 0xC1, 0x07, 0xFF}, // amber
	{0x9C, 0x27, 0xB0, 0xFF}, // purple
	{0xFF, 0x57, 0x22, 0xFF}, // deep orange
}

// BlobAlpha is the fill alpha applied to palette colors when they are used
// for scope blobs, keeping swimlanes visible underneath.
const BlobAlpha = 80

// WithAlpha returns the color with its alpha channel replaced.
func (c Color) WithAlpha(a uint8) Color {
	c.A = a
	return c
}

// Hex returns the "#RRGGBBAA" form of the color.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// ParseColor parses "#RRGGBB" or "#RRGGBBAA".
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(s, "#")
	var c Color
	switch len(s) {
	case 6:
		c.A = 0xFF
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
	case 8:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A); err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
	default:
		return Color{}, fmt.Errorf("invalid color %q: expected #RRGGBB or #RRGGBBAA", s)
	}
	return c, nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
