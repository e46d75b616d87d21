package models

import (
	"errors"
	"fmt"
	"time"
)

// Plan is a pricing tier selected at purchase time.
type Plan string

const (
	PlanDaily   Plan = "daily"
	PlanWeekly  Plan = "weekly"
	PlanMonthly Plan = "monthly"
)

func (p Plan) Valid() bool {
	return p == PlanDaily || p == PlanWeekly || p == PlanMonthly
}

// MenuItem is a single dish inside a menu.
type MenuItem struct {
	Name     string `json:"name" bson:"name"`
	Quantity int    `json:"quantity" bson:"quantity"`
}

// Dessert is an optional add-on limited to certain days.
type Dessert struct {
	Name          string   `json:"name" bson:"name"`
	Quantity      int      `json:"quantity" bson:"quantity"`
	AvailableDays []string `json:"availableDays" bson:"availableDays"`
}

// Menu is a chef-authored priced food offering.
type Menu struct {
	MenuID          string     `json:"menuid" bson:"menuid"`
	ChefID          string     `json:"chefId" bson:"chefId"`
	Heading         string     `json:"heading" bson:"heading"`
	Items           []MenuItem `json:"items" bson:"items"`
	Dessert         *Dessert   `json:"dessert,omitempty" bson:"dessert,omitempty"`
	AvailableDays   []string   `json:"availableDays" bson:"availableDays"`
	DailyPrice      float64    `json:"dailyPrice" bson:"dailyPrice"`
	WeeklyPrice     float64    `json:"weeklyPrice" bson:"weeklyPrice"`
	MonthlyPrice    float64    `json:"monthlyPrice" bson:"monthlyPrice"`
	Photos          []string   `json:"photos" bson:"photos"`
	Pickup          bool       `json:"pickup" bson:"pickup"`
	Delivery        bool       `json:"delivery" bson:"delivery"`
	PickupAddress   string     `json:"pickupAddress,omitempty" bson:"pickupAddress,omitempty"`
	DeliveryAddress string     `json:"deliveryAddress,omitempty" bson:"deliveryAddress,omitempty"`
	Status          string     `json:"status,omitempty" bson:"status,omitempty"` // pending, approved
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updatedAt"`
}

var ErrNoPriceTier = errors.New("menu has no price tier set")

// PriceForPlan returns the price of the given tier. A plan can only be
// selected on a menu that actually prices that tier.
func (m *Menu) PriceForPlan(plan Plan) (float64, error) {
	var price float64
	switch plan {
	case PlanDaily:
		price = m.DailyPrice
	case PlanWeekly:
		price = m.WeeklyPrice
	case PlanMonthly:
		price = m.MonthlyPrice
	default:
		return 0, fmt.Errorf("unknown plan %q", plan)
	}
	if price <= 0 {
		return 0, ErrNoPriceTier
	}
	return price, nil
}

// Validate checks a menu at the persistence boundary.
func (m *Menu) Validate() error {
	if m.Heading == "" {
		return errors.New("heading is required")
	}
	if len(m.Items) == 0 {
		return errors.New("at least one item is required")
	}
	for _, it := range m.Items {
		if it.Name == "" {
			return errors.New("item name is required")
		}
	}
	if m.DailyPrice <= 0 && m.WeeklyPrice <= 0 && m.MonthlyPrice <= 0 {
		return ErrNoPriceTier
	}
	if !m.Pickup && !m.Delivery {
		return errors.New("menu must offer pickup or delivery")
	}
	return nil
}
