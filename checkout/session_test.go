package checkout

import (
	"errors"
	"testing"

	"tiffin/models"
)

func sessionMenu() *models.Menu {
	return &models.Menu{
		MenuID:       "m1",
		ChefID:       "c1",
		Heading:      "Tiffin Box",
		Items:        []models.MenuItem{{Name: "Thali", Quantity: 1}},
		DailyPrice:   10,
		WeeklyPrice:  50,
		MonthlyPrice: 150,
		Pickup:       true,
	}
}

func TestHappyPathThroughClose(t *testing.T) {
	m := NewManager()
	s := m.Create("s1", "u1")

	if s.State != StateMenuDetail {
		t.Fatalf("new session state = %s", s.State)
	}
	if err := s.SelectPlan(sessionMenu(), models.PlanWeekly); err != nil {
		t.Fatalf("SelectPlan: %v", err)
	}
	if err := s.EnterCart(); err != nil {
		t.Fatalf("EnterCart: %v", err)
	}
	if err := s.InitiateCheckout(5000, "pi_1", "pi_1_secret"); err != nil {
		t.Fatalf("InitiateCheckout: %v", err)
	}
	if s.State != StatePaymentPending {
		t.Fatalf("state after checkout = %s", s.State)
	}
	if err := s.PaymentSucceeded("ord1"); err != nil {
		t.Fatalf("PaymentSucceeded: %v", err)
	}
	if err := s.AwaitReview(); err != nil {
		t.Fatalf("AwaitReview: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !s.Terminal() {
		t.Fatal("closed session not terminal")
	}
}

func TestProviderErrorKeepsPaymentPending(t *testing.T) {
	m := NewManager()
	s := m.Create("s1", "u1")

	if err := s.SelectPlan(sessionMenu(), models.PlanDaily); err != nil {
		t.Fatalf("SelectPlan: %v", err)
	}
	if err := s.EnterCart(); err != nil {
		t.Fatalf("EnterCart: %v", err)
	}
	if err := s.InitiateCheckout(1000, "pi_1", "pi_1_secret"); err != nil {
		t.Fatalf("InitiateCheckout: %v", err)
	}

	if err := s.PaymentFailed("card_declined"); err != nil {
		t.Fatalf("PaymentFailed: %v", err)
	}
	if s.State != StatePaymentPending {
		t.Fatalf("state after provider error = %s, want payment_pending", s.State)
	}
	if s.LastError != "card_declined" {
		t.Fatalf("provider message not kept verbatim: %q", s.LastError)
	}

	// Retry requests a fresh intent; the old one is abandoned.
	if err := s.InitiateCheckout(1000, "pi_2", "pi_2_secret"); err != nil {
		t.Fatalf("retry InitiateCheckout: %v", err)
	}
	if s.IntentID != "pi_2" || s.LastError != "" || s.Attempts != 2 {
		t.Fatalf("retry did not reset session: %+v", s)
	}

	if err := s.PaymentSucceeded("ord1"); err != nil {
		t.Fatalf("PaymentSucceeded after retry: %v", err)
	}
}

func TestInvalidTransitionsRejected(t *testing.T) {
	m := NewManager()
	s := m.Create("s1", "u1")

	if err := s.EnterCart(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("EnterCart from menu_detail: %v", err)
	}
	if err := s.PaymentSucceeded("ord"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("PaymentSucceeded from menu_detail: %v", err)
	}
	if err := s.Close(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Close from menu_detail: %v", err)
	}

	if err := s.SelectPlan(sessionMenu(), "yearly"); err == nil {
		t.Fatal("unknown plan accepted")
	}

	menu := sessionMenu()
	menu.MonthlyPrice = 0
	if err := s.SelectPlan(menu, models.PlanMonthly); !errors.Is(err, models.ErrNoPriceTier) {
		t.Fatalf("unpriced tier: %v", err)
	}
}

func TestAbandonFromAnyNonTerminalState(t *testing.T) {
	m := NewManager()

	s := m.Create("s1", "u1")
	if err := s.Abandon(); err != nil {
		t.Fatalf("abandon fresh session: %v", err)
	}
	if !s.Terminal() {
		t.Fatal("abandoned session not terminal")
	}
	if err := s.Abandon(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("abandon twice: %v", err)
	}

	s2 := m.Create("s2", "u1")
	_ = s2.SelectPlan(sessionMenu(), models.PlanWeekly)
	_ = s2.EnterCart()
	_ = s2.InitiateCheckout(5000, "pi", "sec")
	if err := s2.Abandon(); err != nil {
		t.Fatalf("abandon mid-payment: %v", err)
	}
}
