package main

import (
	"strings"

	"github.com/muesli/termenv"
)

// colorProfile maps a TERM value to the richest profile it advertises.
func colorProfile(term string) termenv.Profile {
	switch {
	case term == "" || term == "dumb":
		return termenv.Ascii
	case strings.Contains(term, "truecolor") || strings.Contains(term, "24bit") || strings.Contains(term, "direct"):
		return termenv.TrueColor
	case strings.Contains(term, "256color"):
		return termenv.ANSI256
	default:
		return termenv.ANSI
	}
}
