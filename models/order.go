package models

import "time"

// Order is a finalized purchase.
type Order struct {
	OrderID     string      `json:"orderId" bson:"orderId"`
	UserID      string      `json:"userId" bson:"userId"`
	Entries     []CartEntry `json:"entries" bson:"entries"`
	AmountCents int64       `json:"amountCents" bson:"amountCents"`
	Currency    string      `json:"currency" bson:"currency"`
	IntentID    string      `json:"intentId,omitempty" bson:"intentId,omitempty"`
	Status      string      `json:"status" bson:"status"` // confirmed, review_pending, closed
	PickupCode  string      `json:"pickupCode" bson:"pickupCode"`
	CreatedAt   time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// Meta is a generic key-value map for transaction metadata
type Meta map[string]interface{}

// Transaction records one payment-intent request against the provider.
type Transaction struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	UserID         string    `bson:"userid,omitempty" json:"userid,omitempty"`
	Type           string    `bson:"type" json:"type"` // intent, checkout, sheet
	Amount         int64     `bson:"amount" json:"amount"`
	Currency       string    `bson:"currency" json:"currency"`
	ClientSecret   string    `bson:"client_secret" json:"clientSecret"`
	Status         string    `bson:"state" json:"state"` // created, failed
	IdempotencyKey string    `bson:"external_ref,omitempty" json:"external_ref,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	Meta           Meta      `bson:"meta,omitempty" json:"meta,omitempty"`
}
