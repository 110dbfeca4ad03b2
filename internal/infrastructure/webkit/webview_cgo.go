package webkit

/*
#cgo pkg-config: webkitgtk-6.0 gtk4
#include <webkit/webkit.h>

// network-session is construct-only, so it has to be passed to g_object_new.
static inline WebKitWebView* new_web_view_with_session(WebKitNetworkSession* session) {
	return WEBKIT_WEB_VIEW(g_object_new(
		WEBKIT_TYPE_WEB_VIEW,
		"network-session", session,
		NULL
	));
}
*/
import "C"

import (
	"runtime"
	"unsafe"

	webkit "github.com/diamondburned/gotk4-webkitgtk/pkg/webkit/v6"
	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// newWebViewWithSession creates a WebView bound to session. gotk4 keeps its
// wrapper constructor private, so the wrapper hierarchy is assembled here.
func newWebViewWithSession(session *webkit.NetworkSession) *webkit.WebView {
	if session == nil {
		return webkit.NewWebView()
	}

	sessionObj := coreglib.InternObject(session)
	native := C.new_web_view_with_session((*C.WebKitNetworkSession)(unsafe.Pointer(sessionObj.Native())))
	runtime.KeepAlive(session)
	if native == nil {
		return nil
	}

	obj := coreglib.Take(unsafe.Pointer(native))
	widget := gtk.Widget{
		InitiallyUnowned: coreglib.InitiallyUnowned{Object: obj},
		Object:           obj,
		Accessible:       gtk.Accessible{Object: obj},
		Buildable:        gtk.Buildable{Object: obj},
		ConstraintTarget: gtk.ConstraintTarget{Object: obj},
	}
	return &webkit.WebView{WebViewBase: webkit.WebViewBase{Widget: widget}}
}
