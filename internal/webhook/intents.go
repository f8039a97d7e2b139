package webhook

import (
	"fmt"
	"sort"

	"eatopia/internal/apperr"
)

// Intent is a conversation step the webhook can fulfil
type Intent int

const (
	IntentUnknown Intent = iota
	IntentAddToOrder
	IntentRemoveFromOrder
	IntentCompleteOrder
	IntentTrackOrder
)

// intentKinds are the config keys naming each intent
var intentKinds = map[string]Intent{
	"add_to_order":      IntentAddToOrder,
	"remove_from_order": IntentRemoveFromOrder,
	"complete_order":    IntentCompleteOrder,
	"track_order":       IntentTrackOrder,
}

func (i Intent) String() string {
	for kind, intent := range intentKinds {
		if intent == i {
			return kind
		}
	}
	return "unknown"
}

// IntentTable resolves platform display names to intents. It is read-only
// after construction.
type IntentTable struct {
	byName map[string]Intent
}

// NewIntentTable builds a table from a kind to display name mapping. Every
// kind must be mapped exactly once, to a distinct non-empty name.
func NewIntentTable(mapping map[string]string) (*IntentTable, error) {
	kinds := make([]string, 0, len(mapping))
	for kind := range mapping {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	byName := make(map[string]Intent, len(mapping))
	for _, kind := range kinds {
		intent, ok := intentKinds[kind]
		if !ok {
			return nil, fmt.Errorf("%w: %q", apperr.ErrUnknownIntent, kind)
		}
		name := mapping[kind]
		if name == "" {
			return nil, fmt.Errorf("intent %q has an empty display name", kind)
		}
		if other, taken := byName[name]; taken {
			return nil, fmt.Errorf("%w: %q used by %s and %s", apperr.ErrDuplicateIntent, name, other, intent)
		}
		byName[name] = intent
	}

	for kind := range intentKinds {
		if _, ok := mapping[kind]; !ok {
			return nil, fmt.Errorf("intent %q has no display name", kind)
		}
	}

	return &IntentTable{byName: byName}, nil
}

// Resolve returns the intent for a display name, or IntentUnknown
func (t *IntentTable) Resolve(displayName string) Intent {
	return t.byName[displayName]
}
