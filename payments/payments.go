package payments

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tiffin/db"
	"tiffin/models"
	"tiffin/rdx"
	"tiffin/stripe"
	"tiffin/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// lockTTL defines the duration to hold the Redis lock per user
const lockTTL = 5 * time.Second

// PaymentService consolidates the three intent-creating endpoints so the
// amount check, idempotency replay, and locking live in one place.
type PaymentService struct{}

func NewPaymentService() *PaymentService {
	return &PaymentService{}
}

type intentRequest struct {
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	MenuID        string `json:"menuId,omitempty"`
	SelectedPlan  string `json:"selectedPlan,omitempty"`
	ChefAccountID string `json:"chefAccountId,omitempty"`
}

// decodeIntentRequest applies the shared validation rule: every endpoint
// rejects a non-positive amount with the same 400 body.
func decodeIntentRequest(w http.ResponseWriter, r *http.Request) (intentRequest, bool) {
	var body intentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Amount <= 0 {
		utils.RespondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid amount"})
		return body, false
	}
	if body.Currency == "" {
		body.Currency = "inr"
	}
	return body, true
}

// replayIdempotent returns a previously stored transaction for the request's
// Idempotency-Key, if any. The stored response is replayed verbatim.
func replayIdempotent(ctx context.Context, w http.ResponseWriter, r *http.Request, txType string) bool {
	key := r.Header.Get("Idempotency-Key")
	if key == "" {
		return false
	}
	var existing models.Transaction
	if err := db.TransactionCollection.FindOne(ctx, bson.M{"external_ref": key, "type": txType}).Decode(&existing); err == nil {
		utils.RespondWithJSON(w, http.StatusOK, existing)
		return true
	}
	return false
}

// newTransaction captures the intent plus the request context worth keeping:
// the menu/plan a checkout targets and the chef account a sheet pays out to.
func newTransaction(userID, txType string, pi stripe.PaymentIntent, body intentRequest, idempotencyKey string) models.Transaction {
	tx := models.Transaction{
		ID:             pi.ID,
		UserID:         userID,
		Type:           txType,
		Amount:         pi.Amount,
		Currency:       pi.Currency,
		ClientSecret:   pi.ClientSecret,
		Status:         "created",
		IdempotencyKey: idempotencyKey,
		CreatedAt:      time.Now(),
	}

	meta := models.Meta{}
	if body.MenuID != "" {
		meta["menuId"] = body.MenuID
		meta["selectedPlan"] = body.SelectedPlan
	}
	if body.ChefAccountID != "" {
		meta["chefAccountId"] = body.ChefAccountID
	}
	if len(meta) > 0 {
		tx.Meta = meta
	}
	return tx
}

func recordTransaction(ctx context.Context, userID, txType string, pi stripe.PaymentIntent, body intentRequest, idempotencyKey string) error {
	_, err := db.TransactionCollection.InsertOne(ctx, newTransaction(userID, txType, pi, body, idempotencyKey))
	return err
}

// CreatePaymentIntent opens a bare intent and returns its client secret.
func (p *PaymentService) CreatePaymentIntent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p.createIntent(w, r, "intent", func(pi stripe.PaymentIntent, _ string) interface{} {
		return utils.M{
			"id":           pi.ID,
			"clientSecret": pi.ClientSecret,
			"amount":       pi.Amount,
			"currency":     pi.Currency,
		}
	})
}

// Checkout opens an intent for a cart checkout initiated by the client.
func (p *PaymentService) Checkout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p.createIntent(w, r, "checkout", func(pi stripe.PaymentIntent, _ string) interface{} {
		return utils.M{
			"id":           pi.ID,
			"clientSecret": pi.ClientSecret,
			"amount":       pi.Amount,
			"currency":     pi.Currency,
		}
	})
}

// PaymentSheet returns the full bundle the native payment sheet expects.
func (p *PaymentService) PaymentSheet(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p.createIntent(w, r, "sheet", func(pi stripe.PaymentIntent, userID string) interface{} {
		return stripe.CreateSheetSession(userID, pi)
	})
}

func (p *PaymentService) createIntent(w http.ResponseWriter, r *http.Request, txType string, respond func(stripe.PaymentIntent, string) interface{}) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	body, ok := decodeIntentRequest(w, r)
	if !ok {
		return
	}
	if replayIdempotent(ctx, w, r, txType) {
		return
	}

	// One in-flight intent per user at a time.
	acquired, err := rdx.RdxSetNX("pay_lock:"+userID, "1", lockTTL)
	if err != nil || !acquired {
		http.Error(w, "please retry", http.StatusTooManyRequests)
		return
	}
	defer rdx.RdxDel("pay_lock:" + userID)

	pi, err := stripe.CreatePaymentIntent(body.Amount, body.Currency)
	if err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid amount"})
		return
	}

	if err := recordTransaction(ctx, userID, txType, pi, body, r.Header.Get("Idempotency-Key")); err != nil {
		log.Println("recordTransaction:", err)
		http.Error(w, "payment setup failed", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, respond(pi, userID))
}

// GetTransactions lists the caller's provider transactions, newest first.
func (p *PaymentService) GetTransactions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := db.TransactionCollection.Find(ctx, bson.M{"userid": userID}, opts)
	if err != nil {
		http.Error(w, "Could not retrieve transactions", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	txns := []models.Transaction{}
	if err := cursor.All(ctx, &txns); err != nil {
		http.Error(w, "Could not decode transactions", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, txns)
}
