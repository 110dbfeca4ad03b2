package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/webhub/internal/domain/build"
)

// RenderAbout renders build info and the resolved paths, one per line.
func (t *Theme) RenderAbout(info build.Info, paths map[string]string) string {
	key := t.Subtle
	val := t.Highlight
	icon := lipgloss.NewStyle().Foreground(t.Accent)

	title := t.Title.Render("webhub")
	if info.Dev() {
		title += " " + t.BadgeMuted.Render("development build")
	}
	lines := []string{
		fmt.Sprintf("%s %s", icon.Render(IconGlobe), title),
		fmt.Sprintf("  %s %s", key.Render("Version"), val.Render(info.Version)),
		fmt.Sprintf("  %s %s", key.Render("Commit "), val.Render(info.Commit)),
		fmt.Sprintf("  %s %s", key.Render("Built  "), val.Render(info.BuildDate)),
		fmt.Sprintf("  %s %s", key.Render("Go     "), val.Render(info.GoVersion)),
	}
	if len(paths) > 0 {
		lines = append(lines, "")
		for _, name := range []string{"config", "data", "cache", "socket"} {
			if p, ok := paths[name]; ok {
				lines = append(lines, fmt.Sprintf("  %s %s", key.Render(fmt.Sprintf("%-7s", name)), t.Normal.Render(p)))
			}
		}
	}
	lines = append(lines, "", "  "+key.Render(build.RepoURL()))
	return strings.Join(lines, "\n")
}
