// Package report renders the accumulated aggregates into chart images
// and assembles them into a PDF document.
package report

import (
	"sort"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// The well-known sound groups keep fixed colors so reports stay
// comparable across runs; any other group gets a deterministic color
// from the fallback palette.
var customGroups = []string{
	"environment", "birds", "animals", "insects", "weather",
	"people", "music", "vehicles", "alert",
}

var customColors = map[string]drawing.Color{
	"environment": drawing.ColorFromHex("008000"), // green
	"birds":       drawing.ColorFromHex("90EE90"), // light green
	"animals":     drawing.ColorFromHex("B6885C"),
	"insects":     drawing.ColorFromHex("FF55BC"),
	"weather":     drawing.ColorFromHex("ADD8E6"), // light blue
	"people":      drawing.ColorFromHex("3D02C5"),
	"music":       drawing.ColorFromHex("05ABD7"),
	"vehicles":    drawing.ColorFromHex("808080"), // gray
	"alert":       drawing.ColorFromHex("FF0000"), // red
}

var fallbackPalette = []drawing.Color{
	drawing.ColorFromHex("4C72B0"),
	drawing.ColorFromHex("DD8452"),
	drawing.ColorFromHex("55A868"),
	drawing.ColorFromHex("C44E52"),
	drawing.ColorFromHex("8172B3"),
	drawing.ColorFromHex("937860"),
	drawing.ColorFromHex("DA8BC3"),
	drawing.ColorFromHex("8C8C8C"),
	drawing.ColorFromHex("CCB974"),
	drawing.ColorFromHex("64B5CD"),
}

// pastelPalette colors the per-group class pies.
var pastelPalette = []drawing.Color{
	drawing.ColorFromHex("A1C9F4"),
	drawing.ColorFromHex("FFB482"),
	drawing.ColorFromHex("8DE5A1"),
	drawing.ColorFromHex("FF9F9B"),
	drawing.ColorFromHex("D0BBFF"),
	drawing.ColorFromHex("DEBB9B"),
	drawing.ColorFromHex("FAB0E4"),
	drawing.ColorFromHex("CFCFCF"),
}

// groupOrder lists the custom groups first, then any extra groups in
// sorted order so output is stable run to run.
func groupOrder(seen map[string]bool) []string {
	var order []string
	for _, g := range customGroups {
		if seen[g] {
			order = append(order, g)
		}
	}
	var extras []string
	for g := range seen {
		if _, ok := customColors[g]; !ok {
			extras = append(extras, g)
		}
	}
	sort.Strings(extras)
	return append(order, extras...)
}

// groupColor resolves a group to its fixed or fallback color. extras
// must be the sorted extra-group list from groupOrder so fallback
// assignment is deterministic.
func groupColor(group string, extras []string) drawing.Color {
	if c, ok := customColors[group]; ok {
		return c
	}
	for i, g := range extras {
		if g == group {
			return fallbackPalette[i%len(fallbackPalette)]
		}
	}
	return fallbackPalette[0]
}

// extraGroups returns the non-custom tail of an ordered group list.
func extraGroups(order []string) []string {
	var extras []string
	for _, g := range order {
		if _, ok := customColors[g]; !ok {
			extras = append(extras, g)
		}
	}
	return extras
}
