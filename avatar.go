package main

import (
	"fmt"
	"html"
	"strings"
)

// Palette for generated placeholder avatars. Indexed by the seed's first rune
// so the same user always gets the same color.
var avatarPalette = [...]string{
	"#e74c3c", // red
	"#e67e22", // orange
	"#f1c40f", // yellow
	"#2ecc71", // green
	"#1abc9c", // teal
	"#3498db", // blue
	"#9b59b6", // purple
	"#34495e", // slate
}

const avatarSize = 96

// generateFallbackAvatar renders a deterministic placeholder: a colored circle
// with the seed's uppercased first character centered on it. It has no
// external dependencies and never fails; an empty seed behaves as "U".
func generateFallbackAvatar(seed string) []byte {
	r := firstRune(seed)
	color := avatarPalette[int(r)%len(avatarPalette)]
	label := html.EscapeString(strings.ToUpper(string(r)))

	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<circle cx="%d" cy="%d" r="%d" fill="%s"/>`+
			`<text x="%d" y="%d" dy=".35em" text-anchor="middle" font-family="sans-serif" font-size="%d" fill="#ffffff">%s</text>`+
			`</svg>`,
		avatarSize, avatarSize, avatarSize, avatarSize,
		avatarSize/2, avatarSize/2, avatarSize/2, color,
		avatarSize/2, avatarSize/2, avatarSize*7/16, label,
	)
	return []byte(svg)
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 'U'
}
