package menus

import (
	"context"
	"log"
	"net/http"
	"time"

	"tiffin/db"
	"tiffin/models"
	"tiffin/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetPendingMenus lists menus awaiting promotion.
func GetPendingMenus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := db.PendingMenusCollection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"createdAt": 1}))
	if err != nil {
		http.Error(w, "Could not retrieve pending menus", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var menus []models.Menu
	if err := cursor.All(ctx, &menus); err != nil {
		http.Error(w, "Error reading menu data", http.StatusInternalServerError)
		return
	}
	if len(menus) == 0 {
		menus = []models.Menu{}
	}

	utils.RespondWithJSON(w, http.StatusOK, menus)
}

// ApproveMenu promotes a pending menu into the browsable collection.
// The approved copy is upserted by menuid before the pending doc is deleted,
// so a crash between the two writes leaves a re-runnable pending doc rather
// than a duplicate menu.
func ApproveMenu(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	menuID := ps.ByName("menuid")

	var pending models.Menu
	if err := db.PendingMenusCollection.FindOne(ctx, bson.M{"menuid": menuID}).Decode(&pending); err != nil {
		http.Error(w, "Pending menu not found", http.StatusNotFound)
		return
	}

	pending.Status = "approved"
	pending.UpdatedAt = time.Now()

	opts := options.Replace().SetUpsert(true)
	if _, err := db.MenusCollection.ReplaceOne(ctx, bson.M{"menuid": menuID}, pending, opts); err != nil {
		log.Println("ApproveMenu upsert error:", err)
		http.Error(w, "Failed to approve menu", http.StatusInternalServerError)
		return
	}

	if _, err := db.PendingMenusCollection.DeleteOne(ctx, bson.M{"menuid": menuID}); err != nil {
		// The approved copy already exists; re-running the approval cleans
		// this up.
		log.Println("ApproveMenu pending cleanup error:", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, pending)
}

// RejectMenu discards a pending menu.
func RejectMenu(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := db.PendingMenusCollection.DeleteOne(ctx, bson.M{"menuid": ps.ByName("menuid")})
	if err != nil {
		http.Error(w, "Failed to reject menu", http.StatusInternalServerError)
		return
	}
	if res.DeletedCount == 0 {
		http.Error(w, "Pending menu not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}
