package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome describes what AddItem did.
type Outcome int

const (
	// OutcomeAdded means a new line was appended.
	OutcomeAdded Outcome = iota
	// OutcomeMerged means an existing line's quantity was incremented.
	OutcomeMerged
	// OutcomeNeedsConfirmation means the product belongs to another
	// restaurant. Nothing changed; the caller must ConfirmSwitch or
	// CancelSwitch.
	OutcomeNeedsConfirmation
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeMerged:
		return "merged"
	case OutcomeNeedsConfirmation:
		return "needs_confirmation"
	default:
		return "unknown"
	}
}

// MaxLineQuantity caps the quantity of a single line.
const MaxLineQuantity = 99

// AddResult is returned by AddItem.
type AddResult struct {
	Outcome Outcome
	State   State
	// LineID is the line created or incremented; empty on
	// OutcomeNeedsConfirmation.
	LineID string
}

// AddOption customizes a single AddItem call.
type AddOption func(*addRequest)

type addRequest struct {
	quantity int
	options  []SelectedOption
}

// WithQuantity sets the quantity to add. Defaults to 1.
func WithQuantity(n int) AddOption {
	return func(r *addRequest) { r.quantity = n }
}

// WithSelectedOptions attaches customization choices to the item.
func WithSelectedOptions(opts []SelectedOption) AddOption {
	return func(r *addRequest) { r.options = opts }
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithLineIDs replaces the uuid line id generator.
func WithLineIDs(next func() string) Option {
	return func(e *Engine) { e.newLineID = next }
}

type pendingSwitch struct {
	product  Product
	quantity int
	options  []SelectedOption
}

// Engine holds one customer's cart, writes every change through to Storage
// and notifies subscribers. All methods are safe for concurrent use; each
// operation is atomic.
type Engine struct {
	mu        sync.Mutex
	state     State
	pending   *pendingSwitch
	storage   Storage
	logger    *zap.Logger
	newLineID func() string

	subMu       sync.Mutex
	subscribers map[int]func(State)
	nextSubID   int
}

// NewEngine builds an engine and hydrates it from storage. Missing or
// invalid stored data yields an empty cart.
func NewEngine(ctx context.Context, storage Storage, opts ...Option) *Engine {
	e := &Engine{
		storage:     storage,
		logger:      zap.NewNop(),
		newLineID:   func() string { return uuid.New().String() },
		subscribers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state = e.hydrate(ctx)
	return e
}

func (e *Engine) hydrate(ctx context.Context) State {
	if e.storage == nil {
		return State{}
	}
	data, err := e.storage.Load(ctx, StorageKey)
	if err != nil {
		e.logger.Warn("cart storage read failed, starting empty", zap.Error(err))
		return State{}
	}
	if len(data) == 0 {
		return State{}
	}
	state, err := decodeState(data)
	if err != nil {
		e.logger.Warn("discarding stored cart", zap.Error(err))
		return State{}
	}
	return state
}

// State returns a copy of the current cart.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// PendingSwitch returns the product awaiting a restaurant-switch decision.
func (e *Engine) PendingSwitch() (Product, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return Product{}, false
	}
	return e.pending.product, true
}

// AddItem adds quantity units of product to the cart, merging with an
// existing line for the same product and equal options. A product from a
// different restaurant is not added; the result asks for confirmation.
func (e *Engine) AddItem(ctx context.Context, product Product, opts ...AddOption) (AddResult, error) {
	req := addRequest{quantity: 1}
	for _, opt := range opts {
		opt(&req)
	}
	if err := validateAdd(product, req); err != nil {
		return AddResult{State: e.State()}, err
	}

	e.mu.Lock()
	if owner := e.state.OwnerRestaurantID; owner != "" && owner != product.RestaurantID {
		e.pending = &pendingSwitch{product: product, quantity: req.quantity, options: cloneOptions(req.options)}
		snapshot := e.state.clone()
		e.mu.Unlock()
		e.logger.Info("restaurant switch needs confirmation",
			zap.String("owner_restaurant_id", owner),
			zap.String("restaurant_id", product.RestaurantID),
			zap.String("product_id", product.ID))
		return AddResult{Outcome: OutcomeNeedsConfirmation, State: snapshot}, nil
	}

	e.pending = nil
	outcome, lineID, err := e.insert(product, req.quantity, req.options)
	if err != nil {
		snapshot := e.state.clone()
		e.mu.Unlock()
		return AddResult{State: snapshot}, err
	}
	e.persist(ctx)
	snapshot := e.state.clone()
	e.mu.Unlock()

	e.notify(snapshot)
	return AddResult{Outcome: outcome, State: snapshot, LineID: lineID}, nil
}

func validateAdd(product Product, req addRequest) error {
	if product.RestaurantID == "" {
		return &ValidationError{Field: "restaurant_id", Err: ErrRestaurantRequired}
	}
	if product.ID == "" {
		return &ValidationError{Field: "product_id", Err: ErrProductRequired}
	}
	if req.quantity < 1 || req.quantity > MaxLineQuantity {
		return &ValidationError{Field: "quantity", Err: ErrInvalidQuantity}
	}
	return nil
}

// insert applies the merge rule. A merge that would take the line past
// MaxLineQuantity is rejected and leaves the cart unchanged. Caller holds
// e.mu.
func (e *Engine) insert(product Product, quantity int, options []SelectedOption) (Outcome, string, error) {
	for i := range e.state.Lines {
		line := &e.state.Lines[i]
		if line.ProductID == product.ID && SameOptions(line.SelectedOptions, options) {
			if line.Quantity > MaxLineQuantity-quantity {
				return 0, "", &ValidationError{Field: "quantity", Err: ErrInvalidQuantity}
			}
			line.Quantity += quantity
			e.state.OwnerRestaurantID = product.RestaurantID
			e.state.LastAddedProductID = product.ID
			return OutcomeMerged, line.LineID, nil
		}
	}

	e.state.OwnerRestaurantID = product.RestaurantID
	e.state.LastAddedProductID = product.ID
	line := e.newLine(product, quantity, options)
	e.state.Lines = append(e.state.Lines, line)
	return OutcomeAdded, line.LineID, nil
}

func (e *Engine) newLine(product Product, quantity int, options []SelectedOption) Line {
	return Line{
		LineID:          e.newLineID(),
		ProductID:       product.ID,
		Name:            product.Name,
		UnitPrice:       product.UnitPrice,
		Quantity:        quantity,
		SelectedOptions: cloneOptions(options),
		RestaurantID:    product.RestaurantID,
	}
}

// ConfirmSwitch discards the current cart and replaces it with a single
// line for the product that triggered OutcomeNeedsConfirmation.
func (e *Engine) ConfirmSwitch(ctx context.Context) (State, error) {
	e.mu.Lock()
	p := e.pending
	if p == nil {
		snapshot := e.state.clone()
		e.mu.Unlock()
		return snapshot, ErrNoPendingSwitch
	}
	e.pending = nil
	previous := e.state.OwnerRestaurantID
	e.state = State{
		Lines:              []Line{e.newLine(p.product, p.quantity, p.options)},
		OwnerRestaurantID:  p.product.RestaurantID,
		LastAddedProductID: p.product.ID,
	}
	e.persist(ctx)
	snapshot := e.state.clone()
	e.mu.Unlock()

	e.logger.Info("cart switched restaurant",
		zap.String("from_restaurant_id", previous),
		zap.String("to_restaurant_id", p.product.RestaurantID))
	e.notify(snapshot)
	return snapshot, nil
}

// CancelSwitch drops a pending restaurant switch. The cart is unchanged.
func (e *Engine) CancelSwitch(ctx context.Context) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = nil
	return e.state.clone()
}

// UpdateQuantity sets a line's quantity in place. Zero or less removes the
// line; more than MaxLineQuantity is capped. Unknown line ids are ignored.
func (e *Engine) UpdateQuantity(ctx context.Context, lineID string, quantity int) State {
	if quantity <= 0 {
		return e.RemoveLine(ctx, lineID)
	}
	quantity = min(quantity, MaxLineQuantity)
	return e.mutate(ctx, func(s *State) bool {
		i := s.indexOf(lineID)
		if i < 0 {
			return false
		}
		s.Lines[i].Quantity = quantity
		return true
	})
}

// RemoveLine deletes a line. Removing the last line clears the owner.
// Unknown line ids are ignored.
func (e *Engine) RemoveLine(ctx context.Context, lineID string) State {
	return e.mutate(ctx, func(s *State) bool {
		i := s.indexOf(lineID)
		if i < 0 {
			return false
		}
		s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
		return true
	})
}

// UpdateLineOptions replaces a line's customization, keeping its id and
// quantity. When refreshed is non-nil its name and price replace the line's
// snapshot. The line is never merged into another line, even if it now
// matches one.
func (e *Engine) UpdateLineOptions(ctx context.Context, lineID string, options []SelectedOption, refreshed *Product) State {
	return e.mutate(ctx, func(s *State) bool {
		i := s.indexOf(lineID)
		if i < 0 {
			return false
		}
		line := &s.Lines[i]
		line.SelectedOptions = cloneOptions(options)
		if refreshed != nil {
			line.Name = refreshed.Name
			line.UnitPrice = refreshed.UnitPrice
		}
		return true
	})
}

// Clear empties the cart. Calling it on an empty cart is harmless.
func (e *Engine) Clear(ctx context.Context) State {
	return e.mutate(ctx, func(s *State) bool {
		*s = State{}
		return true
	})
}

// ClearIf empties the cart only while its lines still equal lines. Items
// added after the caller took its copy survive. It reports whether the cart
// was cleared.
func (e *Engine) ClearIf(ctx context.Context, lines []Line) bool {
	cleared := false
	e.mutate(ctx, func(s *State) bool {
		if !sameLines(s.Lines, lines) {
			return false
		}
		*s = State{}
		cleared = true
		return true
	})
	return cleared
}

func sameLines(a, b []Line) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.LineID != y.LineID || x.ProductID != y.ProductID || x.Quantity != y.Quantity ||
			!x.UnitPrice.Equal(y.UnitPrice) || !SameOptions(x.SelectedOptions, y.SelectedOptions) {
			return false
		}
	}
	return true
}

// Subscribe registers fn to receive a copy of the cart after every change.
// The returned func unregisters it.
func (e *Engine) Subscribe(fn func(State)) (unsubscribe func()) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	id := e.nextSubID
	e.nextSubID++
	e.subscribers[id] = fn
	return func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		delete(e.subscribers, id)
	}
}

// mutate runs fn under the lock. Any mutation resolves a pending switch as
// declined. Changed states are persisted before the lock is released and
// broadcast after.
func (e *Engine) mutate(ctx context.Context, fn func(s *State) bool) State {
	e.mu.Lock()
	e.pending = nil
	changed := fn(&e.state)
	if changed {
		e.state.normalize()
		e.persist(ctx)
	}
	snapshot := e.state.clone()
	e.mu.Unlock()

	if changed {
		e.notify(snapshot)
	}
	return snapshot
}

// persist writes the current state. Failures are logged and swallowed: the
// in-memory cart stays authoritative. Caller holds e.mu.
func (e *Engine) persist(ctx context.Context) {
	if e.storage == nil {
		return
	}
	data, err := encodeState(e.state)
	if err != nil {
		e.logger.Error("failed to encode cart", zap.Error(err))
		return
	}
	if err := e.storage.Save(ctx, StorageKey, data); err != nil {
		e.logger.Warn("cart storage write failed", zap.Error(err))
	}
}

func (e *Engine) notify(s State) {
	e.subMu.Lock()
	fns := make([]func(State), 0, len(e.subscribers))
	for _, fn := range e.subscribers {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()

	for _, fn := range fns {
		fn(s.clone())
	}
}
