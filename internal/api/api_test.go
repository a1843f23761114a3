package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/command"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/customer"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/reservation"
	"github.com/example/storefront/internal/infrastructure/cartstore"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/projection"
	"github.com/example/storefront/internal/query"
)

const (
	testSecret  = "test-secret-key-that-is-long-enough"
	lunchHours  = `{"MONDAY":[{"open":"11:00","close":"12:00"}]}`
	diner       = "r-diner"
	sushiBar    = "r-sushi"
	lunchSpot   = "r-lunch"
	burgerID    = "m-burger"
	friesID     = "m-fries"
	colaID      = "m-cola"
	wrapID      = "m-wrap"
	soupID      = "m-soup"
	nigiriID    = "m-nigiri"
	lunchBoxID  = "m-lunchbox"
)

type testServer struct {
	router    http.Handler
	handlers  *Handlers
	source    *catalog.MemorySource
	jwt       *auth.JWTService
	publisher *store.LocalPublisher
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedCatalog(source *catalog.MemorySource) {
	source.AddRestaurant(catalog.Restaurant{ID: diner, Slug: "diner", Name: "Diner", Currency: "EUR"})
	source.AddRestaurant(catalog.Restaurant{ID: sushiBar, Slug: "sushi", Name: "Sushi Bar", Currency: "EUR", ReservationsEnabled: true})
	source.AddRestaurant(catalog.Restaurant{ID: lunchSpot, Slug: "lunch", Name: "Lunch Spot", Currency: "EUR", OpeningHours: lunchHours})

	source.AddMenuItem(catalog.MenuItem{
		ID: burgerID, RestaurantID: diner, Name: "Burger", Category: "Mains", Price: price("9.50"), IsAvailable: true,
		Options: []catalog.OptionGroup{{
			ID: "size", Name: "Size", MinChoices: 0, MaxChoices: 1,
			Choices: []catalog.Choice{{ID: "regular", Name: "Regular"}, {ID: "large", Name: "Large"}},
		}},
	})
	source.AddMenuItem(catalog.MenuItem{ID: friesID, RestaurantID: diner, Name: "Fries", Category: "Sides", Price: price("3.00"), IsAvailable: true})
	source.AddMenuItem(catalog.MenuItem{ID: soupID, RestaurantID: diner, Name: "Soup", Category: "Starters", Price: price("4.00"), IsAvailable: false})
	source.AddMenuItem(catalog.MenuItem{ID: colaID, RestaurantID: diner, Name: "Cola", Category: "Drinks", Price: price("2.50"), IsAvailable: true})
	source.AddMenuItem(catalog.MenuItem{ID: wrapID, RestaurantID: diner, Name: "Wrap", Category: "Mains", Price: price("8.00"), IsAvailable: true})
	source.AddMenuItem(catalog.MenuItem{ID: nigiriID, RestaurantID: sushiBar, Name: "Nigiri", Category: "Sushi", Price: price("12.00"), IsAvailable: true})
	source.AddMenuItem(catalog.MenuItem{ID: lunchBoxID, RestaurantID: lunchSpot, Name: "Lunch Box", Category: "Mains", Price: price("11.00"), IsAvailable: true})
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()

	readStore := store.NewReadStore()
	projector := projection.NewProjector(readStore, logger)
	publisher := store.NewLocalPublisher(logger, projector.HandleEvent)
	eventStore := store.NewEventStore(publisher)

	source := catalog.NewMemorySource()
	seedCatalog(source)

	customers := customer.NewService(eventStore, logger)
	cmdHandler := command.NewHandler(
		source,
		customers,
		order.NewService(eventStore, logger),
		reservation.NewService(eventStore, logger),
		nil,
		logger,
	)
	sessions, err := cart.NewSessions(cartstore.NewMemoryStore(), 16, logger)
	require.NoError(t, err)

	jwtService := auth.NewJWTService(testSecret, "storefront", time.Hour)
	handlers := NewHandlers(source, sessions, cmdHandler, query.NewHandler(readStore, logger), logger)
	authHandlers := NewAuthHandlers(customers, jwtService, logger)

	return &testServer{
		router:    NewRouter(handlers, authHandlers, jwtService, logger),
		handlers:  handlers,
		source:    source,
		jwt:       jwtService,
		publisher: publisher,
	}
}

// client keeps cookies between requests, like a browser.
type client struct {
	t       *testing.T
	server  *testServer
	cookies map[string]*http.Cookie
	token   string
}

func (s *testServer) client(t *testing.T) *client {
	return &client{t: t, server: s, cookies: make(map[string]*http.Cookie)}
}

func (s *testServer) staffClient(t *testing.T) *client {
	c := s.client(t)
	token, _, err := s.jwt.Issue("staff-1", "staff@example.com", auth.RoleStaff)
	require.NoError(t, err)
	c.token = token
	return c
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	rec := httptest.NewRecorder()
	c.server.router.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return rec
}

func (c *client) addItem(menuItemID string, quantity int) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, "/api/cart/items", addItemRequest{MenuItemID: menuItemID, Quantity: quantity})
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, rec)["error"]
}

// nextWeekday returns the next date strictly after today falling on day, at
// hour:00 local time.
func nextWeekday(day time.Weekday, hour int) time.Time {
	now := time.Now()
	ahead := (int(day) - int(now.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}
	d := now.AddDate(0, 0, ahead)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.Local)
}
