package models

import "time"

// CartEntry is a derived view over a menu and a selected plan. Price is
// always recomputed from the menu's tier, never edited independently.
type CartEntry struct {
	MenuID       string    `json:"menuId" bson:"menuId"`
	ChefID       string    `json:"chefId" bson:"chefId"`
	Heading      string    `json:"heading" bson:"heading"`
	SelectedPlan Plan      `json:"selectedPlan" bson:"selectedPlan"`
	Quantity     int       `json:"quantity" bson:"quantity"`
	Price        float64   `json:"price" bson:"price"`
	AddedAt      time.Time `json:"addedAt" bson:"addedAt"`
}

// CartSnapshot is the persisted per-user cart document.
type CartSnapshot struct {
	UserID    string      `json:"userId" bson:"userId"`
	Entries   []CartEntry `json:"entries" bson:"entries"`
	UpdatedAt time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// FavoriteEntry is a {user, menu} membership record.
type FavoriteEntry struct {
	UserID  string    `json:"userId" bson:"userId"`
	MenuID  string    `json:"menuId" bson:"menuId"`
	AddedAt time.Time `json:"addedAt" bson:"addedAt"`
}
