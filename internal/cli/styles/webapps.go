package styles

import (
	"fmt"
	"strings"

	"github.com/bnema/webhub/internal/domain/entity"
)

// WebAppsRenderer renders non-interactive output of the webapp commands
// (e.g. `webhub list`, `add`, `remove`).
type WebAppsRenderer struct {
	theme *Theme
}

func NewWebAppsRenderer(theme *Theme) *WebAppsRenderer {
	return &WebAppsRenderer{theme: theme}
}

func (r *WebAppsRenderer) RenderEmptyList() string {
	return r.theme.Subtle.Render("No webapps registered. Add one with `webhub add <name> <url>`.")
}

// RenderList renders the webapps in display order. open marks the ids with a
// live window.
func (r *WebAppsRenderer) RenderList(apps []entity.WebApp, open map[string]bool) string {
	if len(apps) == 0 {
		return r.RenderEmptyList()
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s", r.theme.Highlight.Render(IconGlobe), r.theme.Title.Render("Webapps")))
	b.WriteString(r.theme.Subtle.Render(fmt.Sprintf(" (%d)", len(apps))))
	b.WriteString("\n\n")

	for _, app := range apps {
		b.WriteString(r.renderOne(app, open[app.ID]))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *WebAppsRenderer) renderOne(app entity.WebApp, open bool) string {
	status := " "
	statusStyle := r.theme.Subtle
	if open {
		status = "●"
		statusStyle = r.theme.Highlight
	}

	line1 := fmt.Sprintf("%s %s  %s",
		statusStyle.Render(status),
		r.theme.Title.Render(app.Name),
		r.theme.Subtle.Render(app.ID),
	)

	badges := []string{r.theme.BadgeMuted.Render(fmt.Sprintf("%dx%d", app.Width, app.Height))}
	if app.Shortcut != "" {
		badges = append(badges, r.theme.Badge.Render(app.Shortcut))
	}
	if app.UseProxy {
		badges = append(badges, r.theme.BadgeMuted.Render("proxy"))
	}
	if app.HasScript() {
		badges = append(badges, r.theme.BadgeMuted.Render(scriptLabel(app)))
	}

	line2 := fmt.Sprintf("  %s  %s", r.theme.ListItemDesc.Render(app.URL), strings.Join(badges, " "))
	return line1 + "\n" + line2
}

func scriptLabel(app entity.WebApp) string {
	var when []string
	if app.InjectOnLoad {
		when = append(when, "load")
	}
	if app.InjectOnShortcut {
		when = append(when, "shortcut")
	}
	if len(when) == 0 {
		return "script"
	}
	return "script:" + strings.Join(when, "+")
}

func (r *WebAppsRenderer) RenderAdded(app entity.WebApp) string {
	out := fmt.Sprintf("%s Added %s %s",
		r.theme.SuccessStyle.Render(IconCheck),
		r.theme.Highlight.Render(app.Name),
		r.theme.Subtle.Render(app.ID),
	)
	if app.Shortcut != "" {
		out += fmt.Sprintf("\n  %s %s", r.theme.Subtle.Render(IconKeyboard), app.Shortcut)
	}
	return out
}

func (r *WebAppsRenderer) RenderUpdated(app entity.WebApp) string {
	return fmt.Sprintf("%s Updated %s %s",
		r.theme.SuccessStyle.Render(IconCheck),
		r.theme.Highlight.Render(app.Name),
		r.theme.Subtle.Render(app.ID),
	)
}

func (r *WebAppsRenderer) RenderRemoved(app entity.WebApp) string {
	return fmt.Sprintf("%s Removed %s %s",
		r.theme.SuccessStyle.Render(IconTrash),
		r.theme.Highlight.Render(app.Name),
		r.theme.Subtle.Render(app.ID),
	)
}

func (r *WebAppsRenderer) RenderReordered(apps []entity.WebApp) string {
	names := make([]string, len(apps))
	for i, app := range apps {
		names[i] = app.Name
	}
	return fmt.Sprintf("%s New order: %s",
		r.theme.SuccessStyle.Render(IconCheck),
		r.theme.Normal.Render(strings.Join(names, " → ")),
	)
}

func (r *WebAppsRenderer) RenderLimit(n int) string {
	return fmt.Sprintf("%s At most %s webapp windows stay open",
		r.theme.SuccessStyle.Render(IconWindow),
		r.theme.Highlight.Render(fmt.Sprintf("%d", n)),
	)
}

// RenderProxy renders the proxy setting with the password masked.
func (r *WebAppsRenderer) RenderProxy(p entity.ProxyConfig) string {
	if !p.Enabled {
		return fmt.Sprintf("%s Proxy %s", r.theme.Subtle.Render(IconShield), r.theme.Subtle.Render("disabled"))
	}
	eff := entity.EffectiveProxy{
		Type:     p.ProxyType,
		Host:     p.Host,
		Port:     p.Port,
		Username: p.Username,
		Password: p.Password,
	}
	return fmt.Sprintf("%s Proxy %s", r.theme.Highlight.Render(IconShield), r.theme.Normal.Render(eff.Redacted()))
}

func (r *WebAppsRenderer) RenderOpened(name string, result entity.ToggleResult) string {
	verb := "Opened"
	switch result {
	case entity.ToggleHidden:
		verb = "Hid"
	case entity.ToggleShownExisting:
		verb = "Showed"
	}
	return fmt.Sprintf("%s %s %s", r.theme.SuccessStyle.Render(IconPlay), verb, r.theme.Highlight.Render(name))
}

func (r *WebAppsRenderer) RenderClosed(name string) string {
	return fmt.Sprintf("%s Closed %s", r.theme.SuccessStyle.Render(IconWindow), r.theme.Highlight.Render(name))
}

func (r *WebAppsRenderer) RenderSchema(path string) string {
	return fmt.Sprintf("%s Schema written to %s", r.theme.SuccessStyle.Render(IconConfig), r.theme.Subtle.Render(path))
}

func (r *WebAppsRenderer) RenderError(err error) string {
	return fmt.Sprintf("%s %v", r.theme.ErrorStyle.Render(IconX), err)
}
