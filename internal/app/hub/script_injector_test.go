package hub_test

import (
	"errors"
	"testing"

	"github.com/grafana/sobek"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bnema/webhub/internal/app/hub"
	mock_port "github.com/bnema/webhub/internal/application/port/mocks"
	"github.com/bnema/webhub/internal/domain/entity"
)

func TestScriptInjector_ValidateScript(t *testing.T) {
	inj := hub.NewScriptInjector()

	tests := []struct {
		name    string
		script  string
		wantErr bool
	}{
		{name: "empty", script: ""},
		{name: "blank", script: "  \n\t"},
		{name: "statement", script: "document.title = 'x';"},
		{name: "dom query", script: "document.querySelector('#compose').click()"},
		{name: "unbalanced", script: "function() {", wantErr: true},
		{name: "garbage", script: "let = = 1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := inj.ValidateScript(tt.script)
			if tt.wantErr {
				assert.ErrorIs(t, err, entity.ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestScriptInjector_WrapScriptCompiles(t *testing.T) {
	inj := hub.NewScriptInjector()
	scripts := []string{
		"console.log('hi')",
		"var s = \"quotes ' and \\\" and </script>\";",
		"// trailing comment",
		"x = '\u2028line separator'",
	}
	for _, s := range scripts {
		wrapped := inj.WrapScript(s)
		_, err := sobek.Compile("wrapped.js", wrapped, false)
		assert.NoError(t, err, "wrapping %q", s)
	}
}

func TestScriptInjector_WrappedScriptRunsUserCode(t *testing.T) {
	inj := hub.NewScriptInjector()
	vm := sobek.New()

	_, err := vm.RunString(`var ran = 0; var document = { readyState: 'complete' }; var console = { error: function() {} };`)
	require.NoError(t, err)

	_, err = vm.RunString(inj.WrapScript("ran = ran + 1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), vm.Get("ran").ToInteger())

	_, err = vm.RunString(inj.WrapScript("throw new Error('boom')"))
	assert.NoError(t, err, "page exceptions stay inside the page")
}

func TestScriptInjector_Inject(t *testing.T) {
	ctx := testContext()
	inj := hub.NewScriptInjector()
	ctrl := gomock.NewController(t)

	t.Run("delivers wrapped script", func(t *testing.T) {
		win := mock_port.NewMockNativeWindow(ctrl)
		win.EXPECT().EvaluateScript(gomock.Any(), inj.WrapScript("go()")).Return(nil)
		assert.NoError(t, inj.InjectOnShortcut(ctx, win, "a", "go()"))
	})

	t.Run("empty script is a no-op", func(t *testing.T) {
		win := mock_port.NewMockNativeWindow(ctrl)
		assert.NoError(t, inj.InjectOnLoad(ctx, win, "a", ""))
	})

	t.Run("engine error", func(t *testing.T) {
		win := mock_port.NewMockNativeWindow(ctrl)
		win.EXPECT().EvaluateScript(gomock.Any(), gomock.Any()).Return(errors.New("web process crashed"))
		err := inj.InjectOnLoad(ctx, win, "a", "go()")
		assert.ErrorIs(t, err, entity.ErrInjectionFailed)
	})

	t.Run("no window", func(t *testing.T) {
		err := inj.InjectOnShortcut(ctx, nil, "a", "go()")
		assert.ErrorIs(t, err, entity.ErrInjectionFailed)
	})
}
