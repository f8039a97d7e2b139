package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eatopia/internal/apperr"
	"eatopia/internal/config"
)

func TestNewIntentTableDefaults(t *testing.T) {
	table, err := NewIntentTable(config.DefaultIntents())
	require.NoError(t, err)

	assert.Equal(t, IntentAddToOrder, table.Resolve("order.add-context: ongoing-order"))
	assert.Equal(t, IntentRemoveFromOrder, table.Resolve("order.remove - context: ongoing-order"))
	assert.Equal(t, IntentCompleteOrder, table.Resolve("order-complete-context:ongoing order"))
	assert.Equal(t, IntentTrackOrder, table.Resolve("track.order-context: ordering-ongoing"))

	assert.Equal(t, IntentUnknown, table.Resolve("order.add-context:ongoing-order"))
	assert.Equal(t, IntentUnknown, table.Resolve("Default Welcome Intent"))
}

func TestNewIntentTableRejectsBadMappings(t *testing.T) {
	withChange := func(change func(m map[string]string)) map[string]string {
		m := config.DefaultIntents()
		change(m)
		return m
	}

	tests := []struct {
		name    string
		mapping map[string]string
		wantErr error
	}{
		{
			name:    "unknown kind",
			mapping: withChange(func(m map[string]string) { m["cancel_order"] = "order.cancel" }),
			wantErr: apperr.ErrUnknownIntent,
		},
		{
			name: "duplicate display name",
			mapping: withChange(func(m map[string]string) {
				m["track_order"] = m["add_to_order"]
			}),
			wantErr: apperr.ErrDuplicateIntent,
		},
		{
			name:    "empty display name",
			mapping: withChange(func(m map[string]string) { m["complete_order"] = "" }),
		},
		{
			name:    "unmapped kind",
			mapping: withChange(func(m map[string]string) { delete(m, "remove_from_order") }),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIntentTable(tt.mapping)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestIntentString(t *testing.T) {
	assert.Equal(t, "complete_order", IntentCompleteOrder.String())
	assert.Equal(t, "unknown", IntentUnknown.String())
}
