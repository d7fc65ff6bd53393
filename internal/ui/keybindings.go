package ui

// KeyMode represents the keybinding mode for the UI.
type KeyMode string

const (
	// KeyModeVim enables vim-style keybindings (j/k/h/l navigation, / search).
	KeyModeVim KeyMode = "vim"
	// KeyModeEmacs uses ctrl/alt chords for navigation.
	KeyModeEmacs KeyMode = "emacs"
)

// DefaultKeyMode is the default keybinding mode.
const DefaultKeyMode = KeyModeVim

// ValidKeyModes lists all valid key modes for validation.
var ValidKeyModes = []KeyMode{KeyModeVim, KeyModeEmacs}

// IsValidKeyMode checks if a key mode string is valid.
func IsValidKeyMode(mode string) bool {
	for _, m := range ValidKeyModes {
		if string(m) == mode {
			return true
		}
	}
	return false
}

// Action is what a key press asks the tree view to do.
type Action string

const (
	ActionNone           Action = ""
	ActionDown           Action = "down"
	ActionUp             Action = "up"
	ActionPageDown       Action = "page_down"
	ActionPageUp         Action = "page_up"
	ActionTop            Action = "top"
	ActionBottom         Action = "bottom"
	ActionPendingG       Action = "pending_g" // Waiting for second key in gg sequence
	ActionCollapse       Action = "collapse"
	ActionExpand         Action = "expand"
	ActionToggleExpand   Action = "toggle_expand"
	ActionToggleSelect   Action = "toggle_select"
	ActionToggleLock     Action = "toggle_lock"
	ActionSelectAll      Action = "select_all"
	ActionDeselectAll    Action = "deselect_all"
	ActionInvert         Action = "invert"
	ActionSelectMatched  Action = "select_matched"
	ActionLockSelected   Action = "lock_selected"
	ActionUnlockVisible  Action = "unlock_visible"
	ActionSearch         Action = "search"
	ActionClearSearch    Action = "clear_search"
	ActionNextHit        Action = "next_hit"
	ActionPrevHit        Action = "prev_hit"
	ActionToggleMatchKey Action = "toggle_match_key"
	ActionToggleMatchVal Action = "toggle_match_value"
	ActionToggleExprMode Action = "toggle_expression"
	ActionToggleCascade  Action = "toggle_cascade"
	ActionExport         Action = "export"
	ActionCopy           Action = "copy"
	ActionHelp           Action = "help"
	ActionQuit           Action = "quit"
)

// commonKeyBindings apply in every mode.
var commonKeyBindings = map[string]Action{
	"down":      ActionDown,
	"up":        ActionUp,
	"pgdown":    ActionPageDown,
	"pgup":      ActionPageUp,
	"home":      ActionTop,
	"end":       ActionBottom,
	"left":      ActionCollapse,
	"right":     ActionExpand,
	"enter":     ActionToggleExpand,
	"space":     ActionToggleSelect,
	"tab":       ActionNextHit,
	"shift+tab": ActionPrevHit,
	"esc":       ActionClearSearch,
	"f1":        ActionHelp,
	"ctrl+c":    ActionQuit,
}

// VimKeyBindings maps keys to actions for vim mode.
var VimKeyBindings = map[string]Action{
	"j":      ActionDown,
	"k":      ActionUp,
	"h":      ActionCollapse,
	"l":      ActionExpand,
	"ctrl+d": ActionPageDown,
	"ctrl+u": ActionPageUp,
	"g":      ActionPendingG,
	"G":      ActionBottom,
	"x":      ActionToggleLock,
	"a":      ActionSelectAll,
	"A":      ActionDeselectAll,
	"i":      ActionInvert,
	"m":      ActionSelectMatched,
	"L":      ActionLockSelected,
	"U":      ActionUnlockVisible,
	"/":      ActionSearch,
	"n":      ActionNextHit,
	"N":      ActionPrevHit,
	"K":      ActionToggleMatchKey,
	"V":      ActionToggleMatchVal,
	"e":      ActionToggleExprMode,
	"c":      ActionToggleCascade,
	"w":      ActionExport,
	"y":      ActionCopy,
	"?":      ActionHelp,
	"q":      ActionQuit,
}

// EmacsKeyBindings maps keys to actions for emacs mode.
var EmacsKeyBindings = map[string]Action{
	"ctrl+n": ActionDown,
	"ctrl+p": ActionUp,
	"ctrl+b": ActionCollapse,
	"ctrl+f": ActionExpand,
	"ctrl+v": ActionPageDown,
	"alt+v":  ActionPageUp,
	"alt+<":  ActionTop,
	"alt+>":  ActionBottom,
	"ctrl+l": ActionToggleLock,
	"alt+a":  ActionSelectAll,
	"alt+d":  ActionDeselectAll,
	"alt+i":  ActionInvert,
	"alt+m":  ActionSelectMatched,
	"alt+l":  ActionLockSelected,
	"alt+u":  ActionUnlockVisible,
	"ctrl+s": ActionSearch,
	"ctrl+r": ActionPrevHit,
	"ctrl+g": ActionClearSearch, // Cancel in emacs
	"alt+k":  ActionToggleMatchKey,
	"alt+e":  ActionToggleMatchVal,
	"alt+x":  ActionToggleExprMode,
	"alt+c":  ActionToggleCascade,
	"ctrl+w": ActionExport,
	"alt+w":  ActionCopy,
	"ctrl+q": ActionQuit,
}

// resolveKey returns the action bound to keyStr in the model's key mode.
// In vim mode a lone g waits for a second g.
func (m *Model) resolveKey(keyStr string) Action {
	if m.pendingKey == "g" {
		m.pendingKey = ""
		if keyStr == "g" {
			return ActionTop
		}
	}
	bindings := VimKeyBindings
	if m.keyMode == KeyModeEmacs {
		bindings = EmacsKeyBindings
	}
	if action, ok := bindings[keyStr]; ok {
		if action == ActionPendingG {
			m.pendingKey = "g"
			return ActionNone
		}
		return action
	}
	if action, ok := commonKeyBindings[keyStr]; ok {
		return action
	}
	return ActionNone
}
