package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tiffin/globals"
	"tiffin/stripe"
)

func authedRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/payments/create-payment-intent", strings.NewReader(body))
	ctx := context.WithValue(r.Context(), globals.UserIDKey, "u1")
	return r.WithContext(ctx)
}

// The amount check runs before any storage or provider call, so these paths
// are exercised without backing services.
func TestRejectsNonPositiveAmounts(t *testing.T) {
	svc := NewPaymentService()

	cases := []string{
		`{"amount": 0}`,
		`{"amount": -500}`,
		`{}`,
		`not json`,
	}
	for _, body := range cases {
		w := httptest.NewRecorder()
		svc.CreatePaymentIntent(w, authedRequest(t, body), nil)

		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
			continue
		}
		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Errorf("body %q: invalid JSON response: %v", body, err)
			continue
		}
		if resp["error"] != "Invalid amount" {
			t.Errorf("body %q: error = %q, want %q", body, resp["error"], "Invalid amount")
		}
	}
}

// All three endpoints share the same validation and error body.
func TestValidationUniformAcrossEndpoints(t *testing.T) {
	svc := NewPaymentService()

	for name, h := range map[string]func(http.ResponseWriter, *http.Request){
		"create-payment-intent": func(w http.ResponseWriter, r *http.Request) { svc.CreatePaymentIntent(w, r, nil) },
		"checkout":              func(w http.ResponseWriter, r *http.Request) { svc.Checkout(w, r, nil) },
		"payment-sheet":         func(w http.ResponseWriter, r *http.Request) { svc.PaymentSheet(w, r, nil) },
	} {
		w := httptest.NewRecorder()
		h(w, authedRequest(t, `{"amount": -1}`))

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, w.Code)
			continue
		}
		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Errorf("%s: invalid JSON response: %v", name, err)
			continue
		}
		if resp["error"] != "Invalid amount" {
			t.Errorf("%s: error = %q, want %q", name, resp["error"], "Invalid amount")
		}
	}
}

func TestTransactionMetaCarriesPayoutTarget(t *testing.T) {
	pi := stripe.PaymentIntent{
		ID:           "pi_test",
		ClientSecret: "pi_test_secret_x",
		Amount:       5000,
		Currency:     "inr",
	}
	body := intentRequest{
		Amount:        5000,
		MenuID:        "m1",
		SelectedPlan:  "weekly",
		ChefAccountID: "acct_chef1",
	}

	tx := newTransaction("u1", "sheet", pi, body, "idem-1")

	if tx.ID != "pi_test" || tx.Amount != 5000 || tx.IdempotencyKey != "idem-1" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if tx.Meta["chefAccountId"] != "acct_chef1" {
		t.Fatalf("payout target dropped: %+v", tx.Meta)
	}
	if tx.Meta["menuId"] != "m1" || tx.Meta["selectedPlan"] != "weekly" {
		t.Fatalf("menu context dropped: %+v", tx.Meta)
	}

	bare := newTransaction("u1", "intent", pi, intentRequest{Amount: 5000}, "")
	if bare.Meta != nil {
		t.Fatalf("meta should stay empty without request context: %+v", bare.Meta)
	}
}

func TestUnauthenticatedRejected(t *testing.T) {
	svc := NewPaymentService()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout", strings.NewReader(`{"amount": 100}`))

	svc.Checkout(w, r, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
