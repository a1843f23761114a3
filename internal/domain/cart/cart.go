package cart

import (
	"github.com/shopspring/decimal"
)

// Product is the snapshot of a menu item taken when it is added to the cart.
// The cart is not live-priced: Name and UnitPrice are never re-fetched.
type Product struct {
	ID           string
	Name         string
	UnitPrice    decimal.Decimal
	RestaurantID string
}

// SelectedOption is one customization group and the values chosen in it,
// e.g. {"Size", ["Large"]}.
type SelectedOption struct {
	OptionName   string   `json:"option_name"`
	ChosenValues []string `json:"chosen_values"`
}

// Line is one distinct purchasable entry: a product plus a customization
// combination, with its own quantity.
type Line struct {
	LineID          string           `json:"line_id"`
	ProductID       string           `json:"product_id"`
	Name            string           `json:"name"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	Quantity        int              `json:"quantity"`
	SelectedOptions []SelectedOption `json:"selected_options,omitempty"`
	RestaurantID    string           `json:"restaurant_id"`
}

// Subtotal returns UnitPrice × Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// State is the cart aggregate. OwnerRestaurantID is empty exactly when
// Lines is empty; otherwise every line belongs to that restaurant.
type State struct {
	Lines              []Line `json:"lines"`
	OwnerRestaurantID  string `json:"owner_restaurant_id,omitempty"`
	LastAddedProductID string `json:"last_added_product_id,omitempty"`
}

// TotalPrice is the sum of unit price × quantity over all lines.
func (s State) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// TotalItemCount is the sum of quantities over all lines.
func (s State) TotalItemCount() int {
	count := 0
	for _, line := range s.Lines {
		count += line.Quantity
	}
	return count
}

func (s State) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Line returns the line with the given id.
func (s State) Line(lineID string) (Line, bool) {
	for _, line := range s.Lines {
		if line.LineID == lineID {
			return line, true
		}
	}
	return Line{}, false
}

func (s State) clone() State {
	out := State{
		OwnerRestaurantID:  s.OwnerRestaurantID,
		LastAddedProductID: s.LastAddedProductID,
	}
	if s.Lines != nil {
		out.Lines = make([]Line, len(s.Lines))
		for i, line := range s.Lines {
			line.SelectedOptions = cloneOptions(line.SelectedOptions)
			out.Lines[i] = line
		}
	}
	return out
}

// normalize restores the empty-cart invariant: no lines means no owner.
func (s *State) normalize() {
	if len(s.Lines) == 0 {
		s.Lines = nil
		s.OwnerRestaurantID = ""
		s.LastAddedProductID = ""
	}
}

func (s *State) indexOf(lineID string) int {
	for i, line := range s.Lines {
		if line.LineID == lineID {
			return i
		}
	}
	return -1
}
