package typedef

import (
	"strconv"
	"strings"
)

// Keybinds stores the user-configurable keys: the four movement inputs the
// forced-key toggles are labelled with, and the editor/console shortcuts.
type Keybinds struct {
	Forward    string `json:"forward,omitempty"`
	Left       string `json:"left,omitempty"`
	Back       string `json:"back,omitempty"`
	Right      string `json:"right,omitempty"`
	PathEditor string `json:"pathEditor,omitempty"`
	Chat       string `json:"chat,omitempty"`
}

// DefaultKeybinds returns the baseline key configuration.
func DefaultKeybinds() Keybinds {
	return Keybinds{
		Forward:    "W",
		Left:       "A",
		Back:       "S",
		Right:      "D",
		PathEditor: "P",
		Chat:       "T",
	}
}

// ForKey returns the binding for a movement key.
func (k Keybinds) ForKey(fk ForcedKey) string {
	switch fk {
	case KeyForward:
		return k.Forward
	case KeyLeft:
		return k.Left
	case KeyBack:
		return k.Back
	case KeyRight:
		return k.Right
	}
	return ""
}

// Label is the short text shown on a forced-key toggle.
func (k Keybinds) Label(fk ForcedKey) string {
	if b := k.ForKey(fk); b != "" {
		return b
	}
	return "?"
}

// CanonicalizeBinding trims, uppercases, and validates supported key names.
// Allowed values: empty string (disabled), single letters A-Z, function keys F1-F12, and common names like SPACE, ESCAPE, ENTER, TAB, BACKSPACE, DELETE, INSERT, HOME, END, PAGEUP, PAGEDOWN, and arrow keys (UP/DOWN/LEFT/RIGHT).
// Returns the canonical uppercase name and true when valid.
func CanonicalizeBinding(binding string) (string, bool) {
	val := strings.TrimSpace(binding)
	if val == "" {
		return "", true // empty means unbound/disabled
	}
	upper := strings.ToUpper(val)

	// Single-letter A-Z
	if len(upper) == 1 {
		ch := upper[0]
		if ch >= 'A' && ch <= 'Z' {
			return upper, true
		}
	}

	// Function keys F1-F12
	if strings.HasPrefix(upper, "F") && len(upper) > 1 {
		if n, err := strconv.Atoi(upper[1:]); err == nil && n >= 1 && n <= 12 {
			return "F" + strconv.Itoa(n), true
		}
	}

	switch upper {
	case "SPACE", "SPACEBAR":
		return "SPACE", true
	case "ESC", "ESCAPE":
		return "ESCAPE", true
	case "ENTER", "RETURN":
		return "ENTER", true
	case "TAB":
		return "TAB", true
	case "BACKSPACE":
		return "BACKSPACE", true
	case "DELETE", "DEL":
		return "DELETE", true
	case "INSERT", "INS":
		return "INSERT", true
	case "HOME":
		return "HOME", true
	case "END":
		return "END", true
	case "PAGEUP", "PGUP":
		return "PAGEUP", true
	case "PAGEDOWN", "PGDN":
		return "PAGEDOWN", true
	case "UP", "ARROWUP":
		return "UP", true
	case "DOWN", "ARROWDOWN":
		return "DOWN", true
	case "LEFT", "ARROWLEFT":
		return "LEFT", true
	case "RIGHT", "ARROWRIGHT":
		return "RIGHT", true
	default:
		return "", false
	}
}

// NormalizeKeybinds uppercases, canonicalizes, and fills defaults when missing or invalid.
func NormalizeKeybinds(k *Keybinds) {
	if k == nil {
		return
	}
	defaults := DefaultKeybinds()
	normalize := func(target *string, fallback string) {
		if *target != "" {
			if val, ok := CanonicalizeBinding(*target); ok {
				*target = val
				return
			}
		}
		*target = fallback
	}

	normalize(&k.Forward, defaults.Forward)
	normalize(&k.Left, defaults.Left)
	normalize(&k.Back, defaults.Back)
	normalize(&k.Right, defaults.Right)
	normalize(&k.PathEditor, defaults.PathEditor)
	normalize(&k.Chat, defaults.Chat)
}
