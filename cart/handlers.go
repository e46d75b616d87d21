package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"tiffin/db"
	"tiffin/models"
	"tiffin/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// loadStore hydrates a Store from the user's persisted snapshot.
func loadStore(ctx context.Context, userID string) (*Store, error) {
	var snap models.CartSnapshot
	err := db.CartsCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&snap)
	if err != nil && err != mongo.ErrNoDocuments {
		return nil, err
	}

	store := NewStore()
	store.Load(snap.Entries)
	return store, nil
}

// saveStore writes the snapshot back. Carts are persisted server-side so a
// session restart never loses the buyer's selection.
func saveStore(ctx context.Context, userID string, store *Store) error {
	snap := models.CartSnapshot{
		UserID:    userID,
		Entries:   store.Entries(),
		UpdatedAt: time.Now(),
	}
	_, err := db.CartsCollection.ReplaceOne(ctx,
		bson.M{"userId": userID}, snap, options.Replace().SetUpsert(true))
	return err
}

// GetCart returns the user's cart entries and the running total in cents.
func GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	store, err := loadStore(ctx, userID)
	if err != nil {
		log.Println("GetCart load error:", err)
		http.Error(w, "Could not retrieve cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"entries":    store.Entries(),
		"totalCents": store.Total(),
	})
}

// AddToCart adds a (menu, plan) entry; duplicates get a user-visible notice.
func AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		MenuID   string      `json:"menuId"`
		Plan     models.Plan `json:"selectedPlan"`
		Quantity int         `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.MenuID == "" {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	var menu models.Menu
	if err := db.MenusCollection.FindOne(ctx, bson.M{"menuid": body.MenuID}).Decode(&menu); err != nil {
		http.Error(w, "Menu not found", http.StatusNotFound)
		return
	}

	store, err := loadStore(ctx, userID)
	if err != nil {
		http.Error(w, "Could not retrieve cart", http.StatusInternalServerError)
		return
	}

	entry, err := store.AddToCart(&menu, body.Plan, body.Quantity)
	switch {
	case errors.Is(err, ErrAlreadyInCart):
		utils.RespondWithJSON(w, http.StatusConflict, map[string]string{
			"error":  "already in cart",
			"notice": "This menu and plan is already in your cart",
		})
		return
	case errors.Is(err, ErrInvalidPlan):
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid plan")
		return
	case errors.Is(err, models.ErrNoPriceTier):
		utils.RespondWithError(w, http.StatusBadRequest, "Menu does not price this plan")
		return
	case err != nil:
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := saveStore(ctx, userID, store); err != nil {
		log.Println("AddToCart save error:", err)
		http.Error(w, "Failed to add to cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, entry)
}

// UpdateCartItem changes plan/quantity on an existing entry.
func UpdateCartItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	menuID := ps.ByName("menuid")
	oldPlan := models.Plan(ps.ByName("plan"))

	var body struct {
		Plan     models.Plan `json:"selectedPlan"`
		Quantity int         `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if body.Plan == "" {
		body.Plan = oldPlan
	}

	var menu models.Menu
	if err := db.MenusCollection.FindOne(ctx, bson.M{"menuid": menuID}).Decode(&menu); err != nil {
		http.Error(w, "Menu not found", http.StatusNotFound)
		return
	}

	store, err := loadStore(ctx, userID)
	if err != nil {
		http.Error(w, "Could not retrieve cart", http.StatusInternalServerError)
		return
	}

	entry, err := store.UpdateCartItem(&menu, oldPlan, body.Plan, body.Quantity)
	switch {
	case errors.Is(err, ErrNotInCart):
		utils.RespondWithError(w, http.StatusNotFound, "Entry not in cart")
		return
	case errors.Is(err, ErrAlreadyInCart):
		utils.RespondWithError(w, http.StatusConflict, "already in cart")
		return
	case err != nil:
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := saveStore(ctx, userID, store); err != nil {
		http.Error(w, "Failed to update cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, entry)
}

// RemoveFromCart deletes the (menu, plan) entry; absent entries are a no-op.
func RemoveFromCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	store, err := loadStore(ctx, userID)
	if err != nil {
		http.Error(w, "Could not retrieve cart", http.StatusInternalServerError)
		return
	}

	store.RemoveFromCart(ps.ByName("menuid"), models.Plan(ps.ByName("plan")))

	if err := saveStore(ctx, userID, store); err != nil {
		http.Error(w, "Failed to update cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// ClearCart drops the snapshot after a confirmed order.
func ClearCart(ctx context.Context, userID string) error {
	_, err := db.CartsCollection.DeleteOne(ctx, bson.M{"userId": userID})
	return err
}
