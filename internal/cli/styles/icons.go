package styles

// Nerd Font icons (requires a Nerd Font to display correctly)
const (
	IconGlobe    = "\uf0ac" // globe
	IconCheck    = "\uf00c" // check
	IconX        = "\uf00d" // x
	IconWarning  = "\uf071" // warning
	IconInfo     = "\uf05a" // info
	IconTrash    = "\uf1f8" // trash
	IconConfig   = "\ue615" // config
	IconKeyboard = "\uf11c" // keyboard
	IconShield   = "\uf132" // shield (proxy)
	IconWindow   = "\uf2d2" // window
	IconCursor   = "\uf054" // chevron-right
	IconPlay     = "\uf04b" // play (open)
)
