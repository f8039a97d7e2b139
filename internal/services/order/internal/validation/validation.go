package validation

import (
	"fmt"
	"strings"

	"eatopia/internal/models"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateAddRequest pairs food items with quantities position by position
// and returns them as a partial order.
func ValidateAddRequest(items []string, quantities []int) (models.Order, error) {
	if len(items) != len(quantities) {
		return models.Order{}, ValidationError{
			Field:   "number",
			Message: fmt.Sprintf("got %d quantities for %d food items", len(quantities), len(items)),
		}
	}

	if len(items) == 0 {
		return models.Order{}, ValidationError{
			Field:   "food-item",
			Message: "items cannot be empty",
		}
	}

	var order models.Order
	for i, name := range items {
		if err := validateItem(name, quantities[i], i); err != nil {
			return models.Order{}, err
		}
		order.Set(name, quantities[i])
	}
	return order, nil
}

// ValidateRemoveRequest requires at least one non-blank item name
func ValidateRemoveRequest(items []string) error {
	if len(items) == 0 {
		return ValidationError{
			Field:   "food-item",
			Message: "items cannot be empty",
		}
	}
	for i, name := range items {
		if strings.TrimSpace(name) == "" {
			return ValidationError{
				Field:   fmt.Sprintf("food-item[%d]", i),
				Message: "item name is required",
			}
		}
	}
	return nil
}

func validateItem(name string, quantity, index int) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError{
			Field:   fmt.Sprintf("food-item[%d]", index),
			Message: "item name is required",
		}
	}

	if quantity <= 0 {
		return ValidationError{
			Field:   fmt.Sprintf("number[%d]", index),
			Message: "item quantity must be greater than 0",
		}
	}
	return nil
}
