package checkout

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"tiffin/models"
)

// State of a single purchase flow.
type State string

const (
	StateMenuDetail     State = "menu_detail"
	StatePlanSelected   State = "plan_selected"
	StateInCart         State = "in_cart"
	StatePaymentPending State = "payment_pending"
	StateConfirmed      State = "confirmed"
	StateReviewPending  State = "review_pending"
	StateClosed         State = "closed"
	StateAbandoned      State = "abandoned"
)

var ErrInvalidTransition = errors.New("invalid state transition")

// Session drives one purchase from menu detail through payment to close.
type Session struct {
	ID           string
	UserID       string
	Menu         *models.Menu
	SelectedPlan models.Plan
	AmountCents  int64
	IntentID     string
	ClientSecret string
	LastError    string
	Attempts     int
	OrderID      string
	State        State
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s *Session) touch() { s.UpdatedAt = time.Now() }

// SelectPlan sets the active plan on the detail view; no side effect beyond
// the session until the entry is added to the cart.
func (s *Session) SelectPlan(menu *models.Menu, plan models.Plan) error {
	if s.State != StateMenuDetail && s.State != StatePlanSelected {
		return fmt.Errorf("%w: select plan in %s", ErrInvalidTransition, s.State)
	}
	if !plan.Valid() {
		return errors.New("invalid plan")
	}
	if _, err := menu.PriceForPlan(plan); err != nil {
		return err
	}
	s.Menu = menu
	s.SelectedPlan = plan
	s.State = StatePlanSelected
	s.touch()
	return nil
}

// EnterCart marks the selection as carted.
func (s *Session) EnterCart() error {
	if s.State != StatePlanSelected {
		return fmt.Errorf("%w: add to cart in %s", ErrInvalidTransition, s.State)
	}
	s.State = StateInCart
	s.touch()
	return nil
}

// InitiateCheckout moves to payment with a fresh intent. Re-invoking from
// payment_pending is the retry path: the prior intent is abandoned, not
// canceled, and the provider is expected to expire it.
func (s *Session) InitiateCheckout(amountCents int64, intentID, clientSecret string) error {
	if s.State != StateInCart && s.State != StatePaymentPending {
		return fmt.Errorf("%w: checkout in %s", ErrInvalidTransition, s.State)
	}
	if amountCents <= 0 {
		return errors.New("invalid amount")
	}
	s.AmountCents = amountCents
	s.IntentID = intentID
	s.ClientSecret = clientSecret
	s.LastError = ""
	s.Attempts++
	s.State = StatePaymentPending
	s.touch()
	return nil
}

// PaymentFailed records the provider error verbatim and keeps the session in
// payment_pending; there is no automatic retry.
func (s *Session) PaymentFailed(providerMsg string) error {
	if s.State != StatePaymentPending {
		return fmt.Errorf("%w: payment failure in %s", ErrInvalidTransition, s.State)
	}
	s.LastError = providerMsg
	s.touch()
	return nil
}

// PaymentSucceeded confirms the purchase and immediately awaits review.
func (s *Session) PaymentSucceeded(orderID string) error {
	if s.State != StatePaymentPending {
		return fmt.Errorf("%w: payment success in %s", ErrInvalidTransition, s.State)
	}
	s.OrderID = orderID
	s.State = StateConfirmed
	s.touch()
	return nil
}

// AwaitReview moves a confirmed purchase into the review step.
func (s *Session) AwaitReview() error {
	if s.State != StateConfirmed {
		return fmt.Errorf("%w: await review in %s", ErrInvalidTransition, s.State)
	}
	s.State = StateReviewPending
	s.touch()
	return nil
}

// Close terminates the flow once the review was submitted or skipped.
func (s *Session) Close() error {
	if s.State != StateReviewPending {
		return fmt.Errorf("%w: close in %s", ErrInvalidTransition, s.State)
	}
	s.State = StateClosed
	s.touch()
	return nil
}

// Abandon ends the flow from any non-terminal state.
func (s *Session) Abandon() error {
	switch s.State {
	case StateClosed, StateAbandoned:
		return fmt.Errorf("%w: abandon in %s", ErrInvalidTransition, s.State)
	}
	s.State = StateAbandoned
	s.touch()
	return nil
}

// Terminal reports whether no further transition is possible.
func (s *Session) Terminal() bool {
	return s.State == StateClosed || s.State == StateAbandoned
}

// Manager owns the live sessions; one logical writer per session (the
// buyer's own requests), so a plain mutex map suffices.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

func (m *Manager) Create(id, userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &Session{
		ID:        id,
		UserID:    userID,
		State:     StateMenuDetail,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.sessions[id] = s
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
