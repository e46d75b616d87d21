package favorites

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

// AddFavorite records a {user, menu} membership. Adding a duplicate is a
// no-op that reports a notice instead of failing.
func AddFavorite(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	menuID := ps.ByName("menuid")

	count, err := db.MenusCollection.CountDocuments(ctx, bson.M{"menuid": menuID})
	if err != nil {
		http.Error(w, "Could not verify menu", http.StatusInternalServerError)
		return
	}
	if count == 0 {
		http.Error(w, "Menu not found", http.StatusNotFound)
		return
	}

	filter := bson.M{"userId": userID, "menuId": menuID}
	update := bson.M{"$setOnInsert": bson.M{"addedAt": time.Now()}}
	res, err := db.FavoritesCollection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		log.Println("AddFavorite UpdateOne error:", err)
		http.Error(w, "Failed to add favorite", http.StatusInternalServerError)
		return
	}

	if res.UpsertedCount == 0 {
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{
			"status": "exists",
			"notice": "already in favorites",
		})
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

// RemoveFavorite deletes the membership unconditionally.
func RemoveFavorite(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if _, err := db.FavoritesCollection.DeleteOne(ctx, bson.M{
		"userId": userID,
		"menuId": ps.ByName("menuid"),
	}); err != nil {
		log.Println("RemoveFavorite DeleteOne error:", err)
		http.Error(w, "Failed to remove favorite", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// GetFavorites returns the user's favorited menus, newest first.
func GetFavorites(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cursor, err := db.FavoritesCollection.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.M{"addedAt": -1}))
	if err != nil {
		http.Error(w, "Could not retrieve favorites", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var favs []models.FavoriteEntry
	if err := cursor.All(ctx, &favs); err != nil {
		http.Error(w, "Error reading favorites", http.StatusInternalServerError)
		return
	}

	menuIDs := make([]string, 0, len(favs))
	for _, f := range favs {
		menuIDs = append(menuIDs, f.MenuID)
	}

	menus := []models.Menu{}
	if len(menuIDs) > 0 {
		cur, err := db.MenusCollection.Find(ctx, bson.M{"menuid": bson.M{"$in": menuIDs}})
		if err != nil {
			http.Error(w, "Could not retrieve menus", http.StatusInternalServerError)
			return
		}
		defer cur.Close(ctx)
		if err := cur.All(ctx, &menus); err != nil {
			http.Error(w, "Error reading menu data", http.StatusInternalServerError)
			return
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, menus)
}
