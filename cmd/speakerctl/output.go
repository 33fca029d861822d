package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/speakerhub/pkg/apiclient"
	"github.com/dmitrymomot/speakerhub/pkg/console"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

// render writes v as JSON or YAML, or calls table for the human format.
func render(w io.Writer, format string, v any, table func(io.Writer) error) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return table(w)
	}
}

// badge renders the login stage.
func badge(s console.Status) string {
	switch s {
	case console.FullyConnected:
		return successStyle.Render("● connected")
	case console.SystemOnly:
		return warningStyle.Render("◐ vendor not connected")
	default:
		return errorStyle.Render("○ logged out")
	}
}

func done(w io.Writer, format string, msg string) error {
	if format != formatTable {
		return nil
	}
	_, err := fmt.Fprintln(w, successStyle.Render("✓"), msg)
	return err
}

// describe turns client errors into a line with a hint on what to run next.
func describe(err error) string {
	var resp *apiclient.ResponseError
	switch {
	case errors.Is(err, console.ErrNotAuthenticated):
		return "not logged in, run: speakerctl login"
	case errors.Is(err, apiclient.ErrAuthExpired):
		return "session expired, run: speakerctl login"
	case errors.Is(err, console.ErrVendorNotConnected):
		return "vendor account not connected, run: speakerctl vendor login"
	case errors.Is(err, apiclient.ErrTransientNetwork):
		return "gateway unreachable: " + err.Error()
	case errors.As(err, &resp) && resp.Code != "":
		return fmt.Sprintf("%s (%s)", resp.Error(), resp.Code)
	default:
		return strings.TrimSpace(err.Error())
	}
}
