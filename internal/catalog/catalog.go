package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/hours"
	"github.com/example/storefront/internal/payment"
)

var (
	ErrRestaurantNotFound  = errors.New("restaurant not found")
	ErrMenuItemNotFound    = errors.New("menu item not found")
	ErrItemUnavailable     = errors.New("menu item is not available")
	ErrUnknownChoice       = errors.New("unknown option or choice")
	ErrSelectionOutOfRange = errors.New("wrong number of choices for option")
)

type Restaurant struct {
	ID                    string             `json:"id"`
	Slug                  string             `json:"slug"`
	Name                  string             `json:"name"`
	Address               string             `json:"address,omitempty"`
	PhoneNumber           string             `json:"phone_number,omitempty"`
	Currency              string             `json:"currency"`
	OpeningHours          string             `json:"opening_hours_json,omitempty"`
	ReservationsEnabled   bool               `json:"reservations_enabled"`
	QRCodeOrderingEnabled bool               `json:"qr_code_ordering_enabled"`
	PaymentCapability     payment.Capability `json:"payment_capability"`
}

// Schedule parses the restaurant's opening hours. A restaurant whose hours
// cannot be parsed is treated as having none.
func (r Restaurant) Schedule() hours.Schedule {
	s, err := hours.ParseSchedule(r.OpeningHours)
	if err != nil {
		return nil
	}
	return s
}

type Choice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OptionGroup is one customization question, e.g. "Size" with 1..1 choices.
type OptionGroup struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	MinChoices int      `json:"min_choices"`
	MaxChoices int      `json:"max_choices"`
	Choices    []Choice `json:"choices"`
}

type MenuItem struct {
	ID           string          `json:"id"`
	RestaurantID string          `json:"restaurant_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category,omitempty"`
	Price        decimal.Decimal `json:"price"`
	IsAvailable  bool            `json:"is_available"`
	Options      []OptionGroup   `json:"options,omitempty"`
}

// CartProduct returns the snapshot the cart stores for this item.
func (m MenuItem) CartProduct() cart.Product {
	return cart.Product{
		ID:           m.ID,
		Name:         m.Name,
		UnitPrice:    m.Price,
		RestaurantID: m.RestaurantID,
	}
}

// Customize turns a selection of choice ids, keyed by option group id, into
// the cart's selected options. Groups keep menu order, choices keep group
// order, and groups with nothing chosen are left out. Every group's min/max
// bounds are enforced, including groups absent from selections.
func (m MenuItem) Customize(selections map[string][]string) ([]cart.SelectedOption, error) {
	groups := make(map[string]OptionGroup, len(m.Options))
	for _, g := range m.Options {
		groups[g.ID] = g
	}
	for groupID := range selections {
		if _, ok := groups[groupID]; !ok {
			return nil, fmt.Errorf("%w: option %q", ErrUnknownChoice, groupID)
		}
	}

	var selected []cart.SelectedOption
	for _, g := range m.Options {
		chosen := make(map[string]bool)
		for _, id := range selections[g.ID] {
			chosen[id] = true
		}

		var values []string
		for _, c := range g.Choices {
			if chosen[c.ID] {
				values = append(values, c.Name)
				delete(chosen, c.ID)
			}
		}
		if len(chosen) > 0 {
			unknown := make([]string, 0, len(chosen))
			for id := range chosen {
				unknown = append(unknown, id)
			}
			sort.Strings(unknown)
			return nil, fmt.Errorf("%w: %s has no choice %q", ErrUnknownChoice, g.Name, unknown[0])
		}
		if len(values) < g.MinChoices || len(values) > g.MaxChoices {
			return nil, fmt.Errorf("%w: %s needs %d to %d, got %d",
				ErrSelectionOutOfRange, g.Name, g.MinChoices, g.MaxChoices, len(values))
		}
		if len(values) > 0 {
			selected = append(selected, cart.SelectedOption{OptionName: g.Name, ChosenValues: values})
		}
	}
	return selected, nil
}

// Source reads restaurants and their menus.
type Source interface {
	ListRestaurants(ctx context.Context) ([]Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*Restaurant, error)
	GetRestaurantBySlug(ctx context.Context, slug string) (*Restaurant, error)
	GetMenu(ctx context.Context, restaurantID string) ([]MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (*MenuItem, error)
}

// FormatPrice renders amount with two decimals followed by the currency
// code, e.g. "9.50 EUR".
func FormatPrice(amount decimal.Decimal, currency string) string {
	if currency == "" {
		return amount.StringFixed(2)
	}
	return amount.StringFixed(2) + " " + currency
}

// DefaultRecommendations is how many items Recommend returns when no limit
// is given.
const DefaultRecommendations = 3

// Recommend suggests available items to go with productID: items from other
// categories first, then the rest of the menu, skipping anything in exclude.
func Recommend(menu []MenuItem, productID string, exclude map[string]bool, limit int) []MenuItem {
	if limit <= 0 {
		limit = DefaultRecommendations
	}
	category := ""
	for _, item := range menu {
		if item.ID == productID {
			category = item.Category
			break
		}
	}

	var other, same []MenuItem
	for _, item := range menu {
		if item.ID == productID || !item.IsAvailable || exclude[item.ID] {
			continue
		}
		if item.Category != category {
			other = append(other, item)
		} else {
			same = append(same, item)
		}
	}

	picks := append(other, same...)
	if len(picks) > limit {
		picks = picks[:limit]
	}
	return picks
}

// DescribeOptions renders selected options as "Size: Large" lines, one per
// chosen value.
func DescribeOptions(opts []cart.SelectedOption) []string {
	var lines []string
	for _, o := range opts {
		for _, v := range o.ChosenValues {
			lines = append(lines, o.OptionName+": "+v)
		}
	}
	return lines
}
