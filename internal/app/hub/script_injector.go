package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/sobek"

	"github.com/bnema/webhub/internal/application/port"
	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/logging"
)

// readyCheckTemplate runs the user script once the DOM is parsed and reports
// exceptions to the page console instead of the engine.
const readyCheckTemplate = `(function() {
    var userScript = %s;
    function run() {
        try {
            (0, eval)(userScript);
        } catch (e) {
            console.error('[webhub] injected script failed:', e);
        }
    }
    if (document.readyState === 'complete' || document.readyState === 'interactive') {
        run();
    } else {
        document.addEventListener('DOMContentLoaded', run, { once: true });
    }
})();`

// InjectionTrigger names the moment a script is delivered.
type InjectionTrigger string

const (
	TriggerLoad     InjectionTrigger = "load"
	TriggerShortcut InjectionTrigger = "shortcut"
)

// ScriptInjector delivers user scripts into webapp windows.
// The once-per-window guard for on-load delivery lives with the window state in the pool.
type ScriptInjector struct{}

// NewScriptInjector creates a ScriptInjector.
func NewScriptInjector() *ScriptInjector {
	return &ScriptInjector{}
}

// ValidateScript checks that script parses as JavaScript. An empty script is valid.
func (s *ScriptInjector) ValidateScript(script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}
	if _, err := sobek.Compile("inject.js", script, false); err != nil {
		return fmt.Errorf("%w: inject script does not parse: %v", entity.ErrInvalidConfig, err)
	}
	return nil
}

// WrapScript returns script wrapped in the DOM-ready check.
func (s *ScriptInjector) WrapScript(script string) string {
	// json.Marshal yields a valid JS string literal and escapes U+2028/U+2029.
	literal, err := json.Marshal(script)
	if err != nil {
		panic(fmt.Sprintf("hub: encode script literal: %v", err))
	}
	return fmt.Sprintf(readyCheckTemplate, literal)
}

// InjectOnLoad delivers the on-load script. Callers must have claimed the window's
// on-load flag first so delivery happens once per window.
func (s *ScriptInjector) InjectOnLoad(ctx context.Context, win port.NativeWindow, webappID, script string) error {
	return s.inject(ctx, win, webappID, script, TriggerLoad)
}

// InjectOnShortcut delivers the script on every shortcut recall.
func (s *ScriptInjector) InjectOnShortcut(ctx context.Context, win port.NativeWindow, webappID, script string) error {
	return s.inject(ctx, win, webappID, script, TriggerShortcut)
}

func (s *ScriptInjector) inject(ctx context.Context, win port.NativeWindow, webappID, script string, trigger InjectionTrigger) error {
	log := logging.FromContext(ctx)

	if strings.TrimSpace(script) == "" {
		return nil
	}
	if win == nil {
		return fmt.Errorf("%w: webapp %s has no live window", entity.ErrInjectionFailed, webappID)
	}

	if err := win.EvaluateScript(ctx, s.WrapScript(script)); err != nil {
		log.Warn().Err(err).Str("webapp_id", webappID).Str("trigger", string(trigger)).Msg("script injection failed")
		return fmt.Errorf("%w: webapp %s (%s): %v", entity.ErrInjectionFailed, webappID, trigger, err)
	}

	log.Debug().Str("webapp_id", webappID).Str("trigger", string(trigger)).Int("bytes", len(script)).Msg("script injected")
	return nil
}
