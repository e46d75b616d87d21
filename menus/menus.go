package menus

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tiffin/db"
	"tiffin/filemgr"
	"tiffin/models"
	"tiffin/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateMenu inserts a chef's menu into the pending collection. It becomes
// browsable only after promotion.
func CreateMenu(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	chefID := utils.GetUserIDFromRequest(r)
	if chefID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var menu models.Menu
	if err := json.NewDecoder(r.Body).Decode(&menu); err != nil {
		log.Println("CreateMenu decode error:", err)
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	menu.MenuID = utils.GetUUID()
	menu.ChefID = chefID
	menu.Status = "pending"
	menu.CreatedAt = time.Now()
	menu.UpdatedAt = menu.CreatedAt

	if err := menu.Validate(); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := db.PendingMenusCollection.InsertOne(ctx, menu); err != nil {
		log.Println("CreateMenu InsertOne error:", err)
		http.Error(w, "Failed to create menu", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, menu)
}

// GetMenus lists approved menus, optional ?day= and ?chef= filters.
func GetMenus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if day := r.URL.Query().Get("day"); day != "" {
		filter["availableDays"] = day
	}
	if chef := r.URL.Query().Get("chef"); chef != "" {
		filter["chefId"] = chef
	}

	cursor, err := db.MenusCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		log.Println("GetMenus Find error:", err)
		http.Error(w, "Could not retrieve menus", http.StatusInternalServerError)
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

// GetMenu fetches one approved menu by id.
func GetMenu(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var menu models.Menu
	err := db.MenusCollection.FindOne(ctx, bson.M{"menuid": ps.ByName("menuid")}).Decode(&menu)
	if err == mongo.ErrNoDocuments {
		http.Error(w, "Menu not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Could not retrieve menu", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, menu)
}

// EditMenu updates a menu; only the owning chef may mutate it.
func EditMenu(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	chefID := utils.GetUserIDFromRequest(r)
	if chefID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	menuID := ps.ByName("menuid")

	var existing models.Menu
	if err := db.MenusCollection.FindOne(ctx, bson.M{"menuid": menuID}).Decode(&existing); err != nil {
		http.Error(w, "Menu not found", http.StatusNotFound)
		return
	}
	if existing.ChefID != chefID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var updated models.Menu
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	updated.MenuID = menuID
	updated.ChefID = chefID
	updated.Photos = existing.Photos
	updated.Status = existing.Status
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()

	if err := updated.Validate(); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := db.MenusCollection.ReplaceOne(ctx, bson.M{"menuid": menuID}, updated); err != nil {
		log.Println("EditMenu ReplaceOne error:", err)
		http.Error(w, "Failed to update menu", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// DeleteMenu removes a menu; only the owning chef may delete it. Buyers only
// ever remove menus from their own cart or favorites.
func DeleteMenu(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	chefID := utils.GetUserIDFromRequest(r)
	if chefID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	menuID := ps.ByName("menuid")

	var existing models.Menu
	if err := db.MenusCollection.FindOne(ctx, bson.M{"menuid": menuID}).Decode(&existing); err != nil {
		http.Error(w, "Menu not found", http.StatusNotFound)
		return
	}
	if existing.ChefID != chefID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if _, err := db.MenusCollection.DeleteOne(ctx, bson.M{"menuid": menuID}); err != nil {
		http.Error(w, "Failed to delete menu", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UploadMenuPhoto saves an image and appends its URL to the menu's photos.
func UploadMenuPhoto(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	chefID := utils.GetUserIDFromRequest(r)
	if chefID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	menuID := ps.ByName("menuid")

	var existing models.Menu
	err := db.MenusCollection.FindOne(ctx, bson.M{"menuid": menuID}).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		// Photos may be added while the menu is still pending review.
		err = db.PendingMenusCollection.FindOne(ctx, bson.M{"menuid": menuID}).Decode(&existing)
	}
	if err != nil {
		http.Error(w, "Menu not found", http.StatusNotFound)
		return
	}
	if existing.ChefID != chefID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	photoURL, err := filemgr.SaveFormImage(r.MultipartForm, "photo", filemgr.EntityMenu)
	if err != nil {
		log.Println("UploadMenuPhoto save error:", err)
		http.Error(w, "Failed to save photo", http.StatusInternalServerError)
		return
	}
	if photoURL == "" {
		http.Error(w, "Photo file missing", http.StatusBadRequest)
		return
	}

	update := bson.M{"$push": bson.M{"photos": photoURL}, "$set": bson.M{"updatedAt": time.Now()}}
	if _, err := db.MenusCollection.UpdateOne(ctx, bson.M{"menuid": menuID}, update); err != nil {
		http.Error(w, "Failed to update menu", http.StatusInternalServerError)
		return
	}
	// Keep the pending copy in sync when it still exists.
	_, _ = db.PendingMenusCollection.UpdateOne(ctx, bson.M{"menuid": menuID}, update)

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"photo": photoURL})
}
