package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

type colorMode string

const (
	colorAuto colorMode = "auto"
	colorOn   colorMode = "on"
	colorOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorAuto, nil
	case "on":
		return colorOn, nil
	case "off":
		return colorOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

// applyColorMode decides whether output is colored and sets fatih/color's
// global switch accordingly.
func applyColorMode(mode colorMode) bool {
	var enabled bool
	switch mode {
	case colorOn:
		enabled = true
	case colorOff:
		enabled = false
	default:
		enabled = isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == ""
	}
	color.NoColor = !enabled
	return enabled
}
