package cart

import (
	"testing"

	"tiffin/models"
)

func testMenu() *models.Menu {
	return &models.Menu{
		MenuID:       "m1",
		ChefID:       "c1",
		Heading:      "South Indian Tiffin",
		Items:        []models.MenuItem{{Name: "Idli", Quantity: 4}},
		DailyPrice:   10,
		WeeklyPrice:  50,
		MonthlyPrice: 150,
		Pickup:       true,
	}
}

func TestAddToCartDerivesPriceFromPlan(t *testing.T) {
	s := NewStore()
	entry, err := s.AddToCart(testMenu(), models.PlanWeekly, 1)
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if entry.MenuID != "m1" || entry.SelectedPlan != models.PlanWeekly {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.Price != 50 {
		t.Fatalf("expected price 50, got %v", entry.Price)
	}
	if got := ComputeOrderTotal(entry); got != 5000 {
		t.Fatalf("expected 5000 cents, got %d", got)
	}
}

func TestComputeOrderTotalAllPlans(t *testing.T) {
	menu := testMenu()
	want := map[models.Plan]int64{
		models.PlanDaily:   1000,
		models.PlanWeekly:  5000,
		models.PlanMonthly: 15000,
	}
	for plan, cents := range want {
		s := NewStore()
		entry, err := s.AddToCart(menu, plan, 1)
		if err != nil {
			t.Fatalf("AddToCart(%s): %v", plan, err)
		}
		if got := ComputeOrderTotal(entry); got != cents {
			t.Fatalf("plan %s: expected %d cents, got %d", plan, cents, got)
		}
	}
}

func TestDuplicateAddRejected(t *testing.T) {
	s := NewStore()
	menu := testMenu()

	if _, err := s.AddToCart(menu, models.PlanDaily, 1); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := s.AddToCart(menu, models.PlanDaily, 1); err != ErrAlreadyInCart {
		t.Fatalf("expected ErrAlreadyInCart, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected exactly one entry, got %d", s.Len())
	}

	// Same menu under a different plan is a distinct entry.
	if _, err := s.AddToCart(menu, models.PlanWeekly, 1); err != nil {
		t.Fatalf("different plan add: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected two entries, got %d", s.Len())
	}
}

func TestRemoveAbsentEntryIsNoOp(t *testing.T) {
	s := NewStore()
	if _, err := s.AddToCart(testMenu(), models.PlanDaily, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	s.RemoveFromCart("missing", models.PlanDaily)
	s.RemoveFromCart("m1", models.PlanMonthly)
	if s.Len() != 1 {
		t.Fatalf("cart length changed on absent remove: %d", s.Len())
	}

	s.RemoveFromCart("m1", models.PlanDaily)
	if s.Len() != 0 {
		t.Fatalf("expected empty cart, got %d", s.Len())
	}
}

func TestUpdateCartItemRecomputesPrice(t *testing.T) {
	s := NewStore()
	menu := testMenu()
	if _, err := s.AddToCart(menu, models.PlanDaily, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	entry, err := s.UpdateCartItem(menu, models.PlanDaily, models.PlanMonthly, 2)
	if err != nil {
		t.Fatalf("UpdateCartItem: %v", err)
	}
	if entry.Price != 150 || entry.Quantity != 2 {
		t.Fatalf("unexpected entry after update: %+v", entry)
	}
	if got := ComputeOrderTotal(entry); got != 30000 {
		t.Fatalf("expected 30000 cents, got %d", got)
	}

	if _, err := s.UpdateCartItem(menu, models.PlanWeekly, models.PlanDaily, 1); err != ErrNotInCart {
		t.Fatalf("expected ErrNotInCart, got %v", err)
	}
}

func TestUpdateCannotCollideWithExistingEntry(t *testing.T) {
	s := NewStore()
	menu := testMenu()
	if _, err := s.AddToCart(menu, models.PlanDaily, 1); err != nil {
		t.Fatalf("add daily: %v", err)
	}
	if _, err := s.AddToCart(menu, models.PlanWeekly, 1); err != nil {
		t.Fatalf("add weekly: %v", err)
	}

	if _, err := s.UpdateCartItem(menu, models.PlanDaily, models.PlanWeekly, 1); err != ErrAlreadyInCart {
		t.Fatalf("expected ErrAlreadyInCart, got %v", err)
	}
}

func TestPlanRequiresPricedTier(t *testing.T) {
	menu := testMenu()
	menu.WeeklyPrice = 0

	s := NewStore()
	if _, err := s.AddToCart(menu, models.PlanWeekly, 1); err != models.ErrNoPriceTier {
		t.Fatalf("expected ErrNoPriceTier, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("rejected add mutated the cart")
	}
}

func TestStoreTotalSumsEntries(t *testing.T) {
	s := NewStore()
	menu := testMenu()
	if _, err := s.AddToCart(menu, models.PlanDaily, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.AddToCart(menu, models.PlanWeekly, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := s.Total(); got != 7000 {
		t.Fatalf("expected 7000 cents, got %d", got)
	}
}
