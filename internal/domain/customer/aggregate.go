package customer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/domain/aggregate"
	"github.com/example/storefront/internal/infrastructure/store"
)

const AggregateType = "Customer"

var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrInvalidEmail       = errors.New("a valid email is required")
	ErrInvalidName        = errors.New("name is required")
	ErrEmailTaken         = errors.New("an account already exists for this email")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const maxEmailLength = 254

var emailPattern = regexp.MustCompile(
	`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9](?:[a-zA-Z0-9\-]*[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9\-]*[a-zA-Z0-9])?)*\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return len(email) <= maxEmailLength && emailPattern.MatchString(email)
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IDForEmail derives the customer id from the normalized email, so the
// same address always maps to the same stream.
func IDForEmail(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+NormalizeEmail(email))).String()
}

// Customer represents a customer aggregate
type Customer struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Version      int       `json:"version"`
}

// Registered reports whether the customer has an account password.
func (c *Customer) Registered() bool {
	return c.PasswordHash != ""
}

func (c *Customer) GetID() string    { return c.ID }
func (c *Customer) GetVersion() int  { return c.Version }
func (c *Customer) SetVersion(v int) { c.Version = v }

func (c *Customer) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventCustomerCreated:
		var data CustomerCreated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		c.ID = data.CustomerID
		c.Email = data.Email
		c.Name = data.Name
		c.Phone = data.Phone
		c.CreatedAt = data.CreatedAt
		c.UpdatedAt = data.CreatedAt
	case EventCustomerRegistered:
		var data CustomerRegistered
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if c.ID == "" {
			c.ID = data.CustomerID
			c.Email = data.Email
			c.CreatedAt = data.RegisteredAt
		}
		c.Name = data.Name
		c.PasswordHash = data.PasswordHash
		c.UpdatedAt = data.RegisteredAt
	default:
		return fmt.Errorf("unknown customer event %q", event.EventType)
	}
	c.Version = event.Version
	return nil
}

// Contact identifies a customer at checkout.
type Contact struct {
	Email string
	Name  string
	Phone string
}

// Service handles customer domain operations
type Service struct {
	eventStore store.EventStoreInterface
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a new customer service
func NewService(es store.EventStoreInterface, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		eventStore: es,
		logger:     logger.Named("customer"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Get loads a customer by id
func (s *Service) Get(ctx context.Context, customerID string) (*Customer, error) {
	c, found, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCustomerNotFound
	}
	return c, nil
}

// GetByEmail loads the customer owning email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	return s.Get(ctx, IDForEmail(email))
}

func (s *Service) load(ctx context.Context, customerID string) (*Customer, bool, error) {
	return aggregate.LoadAggregate(ctx, s.eventStore, customerID, func() *Customer {
		return &Customer{}
	})
}

// FindOrCreate returns the customer for contact.Email, creating a guest
// record on first use. Existing customers are returned unchanged.
func (s *Service) FindOrCreate(ctx context.Context, contact Contact) (*Customer, error) {
	email := NormalizeEmail(contact.Email)
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	name := strings.TrimSpace(contact.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	id := IDForEmail(email)
	c, found, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if found {
		return c, nil
	}

	c = &Customer{ID: id}
	event := CustomerCreated{
		CustomerID: id,
		Email:      email,
		Name:       name,
		Phone:      strings.TrimSpace(contact.Phone),
		CreatedAt:  s.now(),
	}
	if err := aggregate.Apply(ctx, s.eventStore, c, AggregateType, EventCustomerCreated, event); err != nil {
		if errors.Is(err, store.ErrConcurrencyConflict) {
			// Another request created the same customer first.
			return s.Get(ctx, id)
		}
		return nil, err
	}

	s.logger.Info("customer created", zap.String("customer_id", id))
	return c, nil
}

// Register sets a password for email. A guest customer keeps its history.
func (s *Service) Register(ctx context.Context, email, password, name string) (*Customer, error) {
	email = NormalizeEmail(email)
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	id := IDForEmail(email)
	c, found, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if found && c.Registered() {
		return nil, ErrEmailTaken
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	if !found {
		c = &Customer{ID: id}
	}
	event := CustomerRegistered{
		CustomerID:   id,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		RegisteredAt: s.now(),
	}
	if err := aggregate.Apply(ctx, s.eventStore, c, AggregateType, EventCustomerRegistered, event); err != nil {
		if errors.Is(err, store.ErrConcurrencyConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("customer registered", zap.String("customer_id", id), zap.Bool("was_guest", found))
	return c, nil
}

// Authenticate checks email and password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Customer, error) {
	c, found, err := s.load(ctx, IDForEmail(email))
	if err != nil {
		return nil, err
	}
	if !found || !c.Registered() || !auth.CheckPassword(password, c.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return c, nil
}
