package siteconfig

import "slices"

// knownIcons is the icon set of the default theme
var knownIcons = []string{
	"discord",
	"facebook",
	"github",
	"instagram",
	"linkedin",
	"mastodon",
	"npm",
	"slack",
	"twitter",
	"x",
	"youtube",
}

// KnownIcons returns a copy of the icon set of the default theme
func KnownIcons() []string {
	return slices.Clone(knownIcons)
}

// IsKnownIcon reports whether icon is part of the default theme's icon set
func IsKnownIcon(icon string) bool {
	return slices.Contains(knownIcons, icon)
}
