package tui

import (
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"     _                   _                       ",
	"  __| |_ ___  _ _ _  _ | |___  ___  _ __  ",
	" (_-<  _/ _ \\| '_| || || / _ \\/ _ \\| '  \\ ",
	" /__/\\__\\___/|_|  \\_, ||_\\___/\\___/|_|_|_|",
	"                  |__/                     ",
}

// Indigo to rose.
var bannerColors = []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6"}

// Banner returns the storyloom ASCII banner colored for the given profile.
// termenv.Ascii yields plain text.
func Banner(p termenv.Profile) string {
	var sb strings.Builder
	for i, line := range bannerLines {
		s := termenv.String(line)
		if p != termenv.Ascii {
			s = s.Foreground(p.Color(bannerColors[i%len(bannerColors)]))
		}
		sb.WriteString(s.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// DefaultBanner colors the banner for the detected terminal.
func DefaultBanner() string {
	return Banner(termenv.ColorProfile())
}

// Padding returns how many blank lines to print before a scene so that it
// sits ratio of the way down a terminal of the given height.
func Padding(height int, ratio float64) int {
	if height <= 0 || ratio <= 0 {
		return 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return int(float64(height) * ratio)
}
