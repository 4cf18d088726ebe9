package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// placeOverlay draws box centered on top of base. base is padded or cut to
// width x height first so the splice lines up.
func placeOverlay(base, box string, width, height int) string {
	if width <= 0 || height <= 0 || box == "" {
		return base
	}

	baseLines := normalizeLines(base, width, height)
	boxLines := strings.Split(strings.TrimRight(box, "\n"), "\n")

	boxW := 0
	for _, line := range boxLines {
		boxW = max(boxW, lipgloss.Width(line))
	}
	boxW = min(boxW, width)
	if len(boxLines) > height {
		boxLines = boxLines[:height]
	}

	top := (height - len(boxLines)) / 2
	left := (width - boxW) / 2

	for i, line := range boxLines {
		row := top + i
		if w := lipgloss.Width(line); w > boxW {
			line = ansi.Cut(line, 0, boxW)
		} else if w < boxW {
			line += strings.Repeat(" ", boxW-w)
		}
		leftSlice := ansi.Cut(baseLines[row], 0, left)
		rightSlice := ansi.Cut(baseLines[row], left+boxW, width)
		baseLines[row] = leftSlice + line + ansi.ResetStyle + rightSlice
	}

	return strings.Join(baseLines, "\n")
}

func normalizeLines(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}

	for i, line := range lines {
		lineWidth := lipgloss.Width(line)
		if lineWidth > width {
			lines[i] = ansi.Cut(line, 0, width)
			continue
		}
		if lineWidth < width {
			lines[i] = line + strings.Repeat(" ", width-lineWidth)
		}
	}
	return lines
}
