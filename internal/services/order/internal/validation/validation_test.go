package validation

import (
	"errors"
	"testing"

	"eatopia/internal/models"
)

func TestValidateAddRequest(t *testing.T) {
	tests := []struct {
		name       string
		items      []string
		quantities []int
		wantField  string
	}{
		{
			name:       "valid request",
			items:      []string{"Pizza", "Samosa"},
			quantities: []int{2, 1},
		},
		{
			name:       "more items than quantities",
			items:      []string{"Pizza", "Samosa"},
			quantities: []int{2},
			wantField:  "number",
		},
		{
			name:       "more quantities than items",
			items:      []string{"Pizza"},
			quantities: []int{2, 3},
			wantField:  "number",
		},
		{
			name:      "no items",
			wantField: "food-item",
		},
		{
			name:       "blank item name",
			items:      []string{"Pizza", "  "},
			quantities: []int{1, 1},
			wantField:  "food-item[1]",
		},
		{
			name:       "zero quantity",
			items:      []string{"Pizza"},
			quantities: []int{0},
			wantField:  "number[0]",
		},
		{
			name:       "negative quantity",
			items:      []string{"Pizza", "Samosa"},
			quantities: []int{1, -2},
			wantField:  "number[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := ValidateAddRequest(tt.items, tt.quantities)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateAddRequest() unexpected error = %v", err)
				}
				if order.Len() != len(tt.items) {
					t.Errorf("ValidateAddRequest() order has %d items, want %d", order.Len(), len(tt.items))
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateAddRequest() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("ValidateAddRequest() field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestValidateAddRequestLaterDuplicateWins(t *testing.T) {
	order, err := ValidateAddRequest([]string{"Pizza", "Samosa", "Pizza"}, []int{1, 2, 4})
	if err != nil {
		t.Fatalf("ValidateAddRequest() unexpected error = %v", err)
	}
	want := models.NewOrder(
		models.OrderItem{Name: "Pizza", Quantity: 4},
		models.OrderItem{Name: "Samosa", Quantity: 2},
	)
	if models.FormatOrder(order) != models.FormatOrder(want) {
		t.Errorf("ValidateAddRequest() = %q, want %q", models.FormatOrder(order), models.FormatOrder(want))
	}
}

func TestValidateRemoveRequest(t *testing.T) {
	if err := ValidateRemoveRequest([]string{"Pizza"}); err != nil {
		t.Errorf("ValidateRemoveRequest() unexpected error = %v", err)
	}
	if err := ValidateRemoveRequest(nil); err == nil {
		t.Error("ValidateRemoveRequest(nil) expected error")
	}
	if err := ValidateRemoveRequest([]string{""}); err == nil {
		t.Error("ValidateRemoveRequest(blank) expected error")
	}
}
