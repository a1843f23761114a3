package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemorySource is an in-process Source used by tests and local seeding.
type MemorySource struct {
	mu          sync.RWMutex
	restaurants map[string]Restaurant
	slugs       map[string]string
	items       map[string]MenuItem
	menus       map[string][]string
}

func NewMemorySource() *MemorySource {
	return &MemorySource{
		restaurants: make(map[string]Restaurant),
		slugs:       make(map[string]string),
		items:       make(map[string]MenuItem),
		menus:       make(map[string][]string),
	}
}

// AddRestaurant inserts or replaces a restaurant.
func (m *MemorySource) AddRestaurant(r Restaurant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.restaurants[r.ID]; ok {
		delete(m.slugs, old.Slug)
	}
	m.restaurants[r.ID] = r
	if r.Slug != "" {
		m.slugs[r.Slug] = r.ID
	}
}

// AddMenuItem inserts or replaces a menu item. New items go to the end of
// their restaurant's menu.
func (m *MemorySource) AddMenuItem(item MenuItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		m.menus[item.RestaurantID] = append(m.menus[item.RestaurantID], item.ID)
	}
	m.items[item.ID] = item
}

func (m *MemorySource) ListRestaurants(ctx context.Context) ([]Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]Restaurant, 0, len(m.restaurants))
	for _, r := range m.restaurants {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (m *MemorySource) GetRestaurant(ctx context.Context, id string) (*Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.restaurants[id]
	if !ok {
		return nil, ErrRestaurantNotFound
	}
	return &r, nil
}

func (m *MemorySource) GetRestaurantBySlug(ctx context.Context, slug string) (*Restaurant, error) {
	m.mu.RLock()
	id, ok := m.slugs[slug]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrRestaurantNotFound
	}
	return m.GetRestaurant(ctx, id)
}

func (m *MemorySource) GetMenu(ctx context.Context, restaurantID string) ([]MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.restaurants[restaurantID]; !ok {
		return nil, ErrRestaurantNotFound
	}
	ids := m.menus[restaurantID]
	menu := make([]MenuItem, 0, len(ids))
	for _, id := range ids {
		menu = append(menu, m.items[id])
	}
	return menu, nil
}

func (m *MemorySource) GetMenuItem(ctx context.Context, id string) (*MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, ErrMenuItemNotFound
	}
	return &item, nil
}
