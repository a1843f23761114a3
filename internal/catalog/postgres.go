package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/storefront/internal/payment"
)

// PostgresSource reads the catalog tables created by the migrations.
// Option groups live in a JSONB column on menu_items.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

const restaurantColumns = `id, slug, name, address, phone_number, currency, opening_hours_json,
	reservations_enabled, qr_code_ordering_enabled, payment_capability`

const menuItemColumns = `id, restaurant_id, name, description, category, price, is_available, options`

type scanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(row scanner) (Restaurant, error) {
	var r Restaurant
	var capability string
	err := row.Scan(&r.ID, &r.Slug, &r.Name, &r.Address, &r.PhoneNumber, &r.Currency, &r.OpeningHours,
		&r.ReservationsEnabled, &r.QRCodeOrderingEnabled, &capability)
	r.PaymentCapability = payment.Capability(capability)
	return r, err
}

func scanMenuItem(row scanner) (MenuItem, error) {
	var item MenuItem
	var options []byte
	if err := row.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Description, &item.Category,
		&item.Price, &item.IsAvailable, &options); err != nil {
		return item, err
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &item.Options); err != nil {
			return item, fmt.Errorf("failed to decode options of %s: %w", item.ID, err)
		}
	}
	return item, nil
}

func (s *PostgresSource) ListRestaurants(ctx context.Context) ([]Restaurant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	defer rows.Close()

	var list []Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

func (s *PostgresSource) GetRestaurant(ctx context.Context, id string) (*Restaurant, error) {
	return s.getRestaurant(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id)
}

func (s *PostgresSource) GetRestaurantBySlug(ctx context.Context, slug string) (*Restaurant, error) {
	return s.getRestaurant(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE slug = $1`, slug)
}

func (s *PostgresSource) getRestaurant(ctx context.Context, query, arg string) (*Restaurant, error) {
	r, err := scanRestaurant(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}
	return &r, nil
}

func (s *PostgresSource) GetMenu(ctx context.Context, restaurantID string) ([]MenuItem, error) {
	if _, err := s.GetRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE restaurant_id = $1 ORDER BY position, name`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu: %w", err)
	}
	defer rows.Close()

	var menu []MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		menu = append(menu, item)
	}
	return menu, rows.Err()
}

func (s *PostgresSource) GetMenuItem(ctx context.Context, id string) (*MenuItem, error) {
	item, err := scanMenuItem(s.db.QueryRowContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMenuItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	return &item, nil
}
