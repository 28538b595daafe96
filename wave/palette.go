package wave

import (
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// palette holds the SGR parameters for the ocean colours, in wave order.
var palette = [][]color.Attribute{
	{color.FgBlue},
	{color.FgCyan},
	{color.FgHiCyan},
	{color.FgHiBlue},
	{38, 5, 39}, // deep sky blue
	{38, 5, 45}, // turquoise
	{38, 5, 23}, // sea green
	{38, 5, 24}, // deep turquoise
	{38, 5, 31}, // medium blue
	{38, 5, 37}, // teal
}

// PaletteSize is the number of distinct wave colours.
var PaletteSize = len(palette)

func slot(i int) int {
	if i < 1 {
		i = 1
	}
	return (i - 1) % len(palette)
}

// Colour returns the display colour for wave i. Indices wrap around the palette.
func Colour(i int) *color.Color {
	return color.New(palette[slot(i)]...)
}

// Paint returns the colour for wave i with colouring forced on or off,
// independent of whether stdout is a terminal.
func Paint(i int, enabled bool) *color.Color {
	c := Colour(i)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func isTerminal(w any) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Code returns the SGR parameter string for wave i, e.g. "38;5;39".
func Code(i int) string {
	attrs := palette[slot(i)]
	parts := make([]string, len(attrs))
	for n, a := range attrs {
		parts[n] = strconv.Itoa(int(a))
	}
	return strings.Join(parts, ";")
}
