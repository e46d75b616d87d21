package checkout

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tiffin/cart"
	"tiffin/db"
	"tiffin/models"
	"tiffin/mq"
	"tiffin/stripe"
	"tiffin/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Handler serves the checkout flow on top of the session manager.
type Handler struct {
	Sessions *Manager
}

func NewHandler(m *Manager) *Handler {
	return &Handler{Sessions: m}
}

// sessionFor returns the user's live session, creating one in the carted
// state when the flow starts straight from a persisted cart.
func (h *Handler) sessionFor(userID string) *Session {
	if s, ok := h.Sessions.Get(userID); ok && !s.Terminal() {
		return s
	}
	s := h.Sessions.Create(userID, userID)
	s.State = StateInCart
	return s
}

// InitiateCheckout prices the cart and opens a payment intent. Calling it
// again before payment is the retry path and mints a fresh intent.
func (h *Handler) InitiateCheckout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var snap models.CartSnapshot
	if err := db.CartsCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&snap); err != nil || len(snap.Entries) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	var total int64
	for _, e := range snap.Entries {
		total += cart.ComputeOrderTotal(e)
	}
	if total <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	pi, err := stripe.CreatePaymentIntent(total, "inr")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	s := h.sessionFor(userID)
	if err := s.InitiateCheckout(total, pi.ID, pi.ClientSecret); err != nil {
		utils.RespondWithError(w, http.StatusConflict, err.Error())
		return
	}

	tx := models.Transaction{
		ID:           pi.ID,
		UserID:       userID,
		Type:         "checkout",
		Amount:       total,
		Currency:     pi.Currency,
		ClientSecret: pi.ClientSecret,
		Status:       "created",
		CreatedAt:    time.Now(),
		Meta:         models.Meta{"note": "checkout"},
	}
	if _, err := db.TransactionCollection.InsertOne(ctx, tx); err != nil {
		log.Println("InitiateCheckout transaction insert:", err)
		http.Error(w, "Failed to start checkout", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"intentId":     pi.ID,
		"clientSecret": pi.ClientSecret,
		"amountCents":  total,
		"currency":     pi.Currency,
		"state":        s.State,
		"attempt":      s.Attempts,
	})
}

// RecordPaymentFailure keeps the session open and echoes the provider's
// message verbatim so the client can show it.
func (h *Handler) RecordPaymentFailure(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	s, ok := h.Sessions.Get(userID)
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "No active checkout")
		return
	}
	if err := s.PaymentFailed(body.Error); err != nil {
		utils.RespondWithError(w, http.StatusConflict, err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"state": s.State,
		"error": s.LastError,
	})
}

// ConfirmOrder finalizes a paid intent: it writes the order, clears the
// cart, and parks the session in review_pending.
func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		IntentID string `json:"intentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IntentID == "" {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	s, ok := h.Sessions.Get(userID)
	if !ok || s.State != StatePaymentPending {
		utils.RespondWithError(w, http.StatusConflict, "No payment in progress")
		return
	}
	if s.IntentID != body.IntentID {
		utils.RespondWithError(w, http.StatusConflict, "Intent does not match active checkout")
		return
	}

	var snap models.CartSnapshot
	if err := db.CartsCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&snap); err != nil || len(snap.Entries) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	order := models.Order{
		OrderID:     utils.GetUUID(),
		UserID:      userID,
		Entries:     snap.Entries,
		AmountCents: s.AmountCents,
		Currency:    "inr",
		IntentID:    s.IntentID,
		Status:      "review_pending",
		PickupCode:  utils.GenerateRandomDigitString(6),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if _, err := db.OrdersCollection.InsertOne(ctx, order); err != nil {
		log.Println("ConfirmOrder insert:", err)
		http.Error(w, "Failed to confirm order", http.StatusInternalServerError)
		return
	}

	if err := s.PaymentSucceeded(order.OrderID); err != nil {
		utils.RespondWithError(w, http.StatusConflict, err.Error())
		return
	}
	_ = s.AwaitReview()

	_, _ = db.TransactionCollection.UpdateOne(ctx,
		bson.M{"_id": s.IntentID}, bson.M{"$set": bson.M{"state": "succeeded"}})

	if err := cart.ClearCart(ctx, userID); err != nil {
		log.Println("ConfirmOrder clear cart:", err)
	}

	for _, e := range snap.Entries {
		mq.EmitPushEvent(mq.PushEvent{
			RecipientID: e.ChefID,
			Title:       "New order",
			Body:        e.Heading + " was just ordered",
			Data:        map[string]string{"orderId": order.OrderID},
		})
	}

	utils.RespondWithJSON(w, http.StatusCreated, order)
}

// SubmitReview closes the flow after the buyer rated the purchase.
func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.closeOrder(w, r, ps, true)
}

// SkipReview closes the flow without a rating.
func (h *Handler) SkipReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.closeOrder(w, r, ps, false)
}

func (h *Handler) closeOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params, reviewed bool) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	orderID := ps.ByName("orderid")

	update := bson.M{"status": "closed", "updatedAt": time.Now()}
	if reviewed {
		var body struct {
			Rating  int    `json:"rating"`
			Comment string `json:"comment"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Rating < 1 || body.Rating > 5 {
			http.Error(w, "Invalid review payload", http.StatusBadRequest)
			return
		}
		update["rating"] = body.Rating
		update["comment"] = body.Comment
	}

	res, err := db.OrdersCollection.UpdateOne(ctx,
		bson.M{"orderId": orderID, "userId": userID, "status": "review_pending"},
		bson.M{"$set": update})
	if err != nil {
		log.Println("closeOrder update:", err)
		http.Error(w, "Failed to close order", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "No reviewable order")
		return
	}

	if s, ok := h.Sessions.Get(userID); ok && s.OrderID == orderID && s.State == StateReviewPending {
		_ = s.Close()
		h.Sessions.Delete(userID)
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// GetOrders lists the caller's orders, newest first.
func GetOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := db.OrdersCollection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		http.Error(w, "Could not retrieve orders", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		http.Error(w, "Could not decode orders", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, orders)
}

// GetOrder returns one order; chefs may fetch orders containing their menus.
func GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var order models.Order
	if err := db.OrdersCollection.FindOne(ctx, bson.M{"orderId": ps.ByName("orderid")}).Decode(&order); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}

	allowed := order.UserID == userID
	for _, e := range order.Entries {
		if e.ChefID == userID {
			allowed = true
		}
	}
	if !allowed {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, order)
}
