package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/aretw0/parley/pkg/domain"
)

// PrintBanner writes the Parley banner and the service it talks to.
func PrintBanner(w io.Writer, version, target string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  ___           _          ", "#818cf8"},
		{" | _ \\__ _ _ _| |___ _  _ ", "#a78bfa"},
		{" |  _/ _` | '_| / -_) || |", "#c084fc"},
		{" |_| \\__,_|_| |_\\___|\\_, |", "#e879f9"},
		{"                     |__/ ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	meta := termenv.String(fmt.Sprintf(" v%s  %s", version, target)).Faint()
	fmt.Fprintln(w, meta)
	fmt.Fprintln(w)
}

// LabelStyler colors role labels: the user in cyan, the bot in violet.
func LabelStyler(profile termenv.Profile) func(role domain.Role, label string) string {
	return func(role domain.Role, label string) string {
		color := "#a78bfa"
		if role == domain.RoleUser {
			color = "#22d3ee"
		}
		return termenv.String(label).Foreground(profile.Color(color)).Bold().String()
	}
}
