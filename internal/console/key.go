package console

import "unicode"

// Key is a single byte read from the input. Its String form matches the names used by
// bubbles key bindings, so a Key can be passed straight to key.Matches.
type Key rune

const (
	KeyCtrlC  Key = 0x03
	KeyEscape Key = 0x1b
)

func (k Key) String() string {
	switch k {
	case KeyCtrlC:
		return "ctrl+c"
	case KeyEscape:
		return "esc"
	case ' ':
		return " "
	default:
		return string(unicode.ToLower(rune(k)))
	}
}
