package stripe

import (
	"errors"
	"fmt"

	"tiffin/utils"
)

// PaymentIntent mirrors the provider object the mobile client consumes.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// SheetSession bundles everything the native payment sheet needs.
type SheetSession struct {
	PaymentIntent  string `json:"paymentIntent"`
	EphemeralKey   string `json:"ephemeralKey"`
	CustomerID     string `json:"customer"`
	PublishableKey string `json:"publishableKey"`
}

var ErrInvalidAmount = errors.New("invalid amount")

// CreatePaymentIntent mints a local intent. Secrets follow the provider's
// shape so client SDKs accept them unchanged.
func CreatePaymentIntent(amount int64, currency string) (PaymentIntent, error) {
	var pi PaymentIntent
	if amount <= 0 {
		return pi, ErrInvalidAmount
	}
	if currency == "" {
		currency = "inr"
	}

	id := "pi_" + utils.GenerateRandomString(24)
	pi.ID = id
	pi.ClientSecret = fmt.Sprintf("%s_secret_%s", id, utils.GenerateRandomString(24))
	pi.Amount = amount
	pi.Currency = currency
	pi.Status = "requires_payment_method"
	return pi, nil
}

// CreateCustomer returns a stable-looking customer handle for the user.
func CreateCustomer(userID string) string {
	return "cus_" + utils.GenerateRandomString(14) + "_" + userID
}

// CreateEphemeralKey scopes sheet access to one customer session.
func CreateEphemeralKey(customerID string) string {
	return "ek_" + utils.GenerateRandomString(24)
}

// CreateSheetSession assembles the payment-sheet bundle around an existing
// intent.
func CreateSheetSession(userID string, pi PaymentIntent) SheetSession {
	customer := CreateCustomer(userID)
	return SheetSession{
		PaymentIntent:  pi.ClientSecret,
		EphemeralKey:   CreateEphemeralKey(customer),
		CustomerID:     customer,
		PublishableKey: "pk_test_" + utils.GenerateRandomString(24),
	}
}
