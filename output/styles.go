// Package output colors terminal text by role, degrading to plain text on
// writers that are not terminals.
package output

import (
	"io"

	"github.com/muesli/termenv"
)

// Role names what a piece of text means, not how it looks.
type Role int

const (
	RolePlain Role = iota
	RoleHeading
	RoleMuted
	RoleGood
	RoleBad
	RoleInfo
	RolePath
)

type look struct {
	color string // ANSI color index; empty keeps the terminal default
	bold  bool
	faint bool
}

var palette = map[Role]look{
	RoleHeading: {bold: true},
	RoleMuted:   {faint: true},
	RoleGood:    {color: "2", bold: true},
	RoleBad:     {color: "1", bold: true},
	RoleInfo:    {color: "4"},
	RolePath:    {color: "6"},
}

// Styles renders text for one writer, matched to its color profile.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates Styles for w. Options are passed to termenv, e.g.
// termenv.WithProfile to force a profile.
func NewStyles(w io.Writer, opts ...termenv.OutputOption) *Styles {
	return &Styles{
		output: termenv.NewOutput(w, opts...),
	}
}

// Render styles text for role.
func (s *Styles) Render(role Role, text string) string {
	l, ok := palette[role]
	if !ok {
		return text
	}

	styled := s.output.String(text)
	if l.color != "" {
		styled = styled.Foreground(s.output.Color(l.color))
	}
	if l.bold {
		styled = styled.Bold()
	}
	if l.faint {
		styled = styled.Faint()
	}
	return styled.String()
}

// Timing styles a duration: red when slow, muted otherwise.
func (s *Styles) Timing(text string, slow bool) string {
	if slow {
		return s.output.String(text).Foreground(s.output.Color("1")).String()
	}
	return s.Render(RoleMuted, text)
}
