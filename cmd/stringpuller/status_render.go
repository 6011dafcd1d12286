package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"stringpuller/internal/deps"
	"stringpuller/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

var statusLabels = map[statusKind]string{
	statusInfo:  "INFO",
	statusOK:    "OK",
	statusWarn:  "WARN",
	statusError: "ERROR",
}

var statusColors = map[statusKind]string{
	statusInfo:  ansiBlue,
	statusOK:    ansiGreen,
	statusWarn:  ansiYellow,
	statusError: ansiRed,
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	badge := "[" + statusLabels[kind] + "]"
	if message != "" {
		badge += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", badge)
	if colorize {
		return statusColors[kind] + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func directoryLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	return lines
}

// dependencyLines renders binaries. A missing optional binary is a warning,
// a missing required one an error.
func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses))
	for _, st := range statuses {
		if st.Available {
			lines = append(lines, renderStatusLine(st.Name, statusOK, "Ready ("+st.Command+")", colorize))
			continue
		}
		kind := statusError
		detail := st.Detail
		if st.Optional {
			kind = statusWarn
			detail += "; WAV conversion unavailable"
		}
		lines = append(lines, renderStatusLine(st.Name, kind, detail, colorize))
	}
	return lines
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
