package navigator

import (
	"fmt"
	"sort"
)

// Action names a navigator transition
type Action string

const (
	ActionSliceForward        Action = "sliceForward"
	ActionSliceBackward       Action = "sliceBackward"
	ActionWindowLevelForward  Action = "windowLevelForward"
	ActionWindowLevelBackward Action = "windowLevelBackward"
	ActionWindowForward       Action = "windowForward"
	ActionWindowBackward      Action = "windowBackward"
)

// Actions lists every transition in a stable order
var Actions = []Action{
	ActionSliceForward,
	ActionSliceBackward,
	ActionWindowLevelForward,
	ActionWindowLevelBackward,
	ActionWindowForward,
	ActionWindowBackward,
}

// Bindings maps key names to actions. Key names follow the windowing
// toolkit's names ("Up", "Down", "Prior", ...).
type Bindings map[string]Action

// DefaultBindings returns the stock key table
func DefaultBindings() Bindings {
	return Bindings{
		"Up":    ActionSliceForward,
		"Down":  ActionSliceBackward,
		"Right": ActionWindowLevelForward,
		"Left":  ActionWindowLevelBackward,
		"Prior": ActionWindowForward,
		"Next":  ActionWindowBackward,
	}
}

// BindingsFromConfig builds a key table from an action -> key map. Actions
// missing from keys keep no binding.
func BindingsFromConfig(keys map[string]string) (Bindings, error) {
	b := Bindings{}

	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		action := Action(name)
		if !action.valid() {
			return nil, fmt.Errorf("unknown navigator action %q", name)
		}

		key := keys[name]
		if key == "" {
			continue
		}
		if prev, ok := b[key]; ok {
			return nil, fmt.Errorf("key %q bound to both %s and %s", key, prev, action)
		}
		b[key] = action
	}

	return b, nil
}

func (a Action) valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// Run executes action on the navigator
func (n *Navigator) Run(action Action) (msg string, changed bool) {
	switch action {
	case ActionSliceForward:
		return n.SliceForward()
	case ActionSliceBackward:
		return n.SliceBackward()
	case ActionWindowLevelForward:
		return n.WindowLevelForward()
	case ActionWindowLevelBackward:
		return n.WindowLevelBackward()
	case ActionWindowForward:
		return n.WindowForward()
	case ActionWindowBackward:
		return n.WindowBackward()
	}
	return "", false
}

// Dispatch runs the action bound to key. It reports false for unbound keys.
func (n *Navigator) Dispatch(b Bindings, key string) (msg string, bound bool) {
	action, ok := b[key]
	if !ok {
		return "", false
	}
	msg, _ = n.Run(action)
	return msg, true
}
