package profile

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
)

// GetProfile returns the authenticated user's own profile.
func GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": userID}).Decode(&user); err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if user.Avatar == "" {
		user.Avatar = utils.InitialsAvatar(user.Name)
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

// GetPublicProfile returns another user's public fields.
func GetPublicProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": ps.ByName("userid")}).Decode(&user); err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if user.Avatar == "" {
		user.Avatar = utils.InitialsAvatar(user.Name)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"userid": user.UserID,
		"role":   user.Role,
		"name":   user.Name,
		"avatar": user.Avatar,
		"bio":    user.Bio,
	})
}

// UpdateProfile edits name/bio/address and optionally the avatar image.
func UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	update := bson.M{}
	if name := r.FormValue("name"); name != "" {
		update["name"] = name
	}
	if bio := r.FormValue("bio"); bio != "" {
		update["bio"] = bio
	}
	if address := r.FormValue("address"); address != "" {
		update["address"] = address
	}

	avatarURL, err := filemgr.SaveFormImage(r.MultipartForm, "avatar", filemgr.EntityUser)
	if err != nil {
		log.Println("UpdateProfile avatar save error:", err)
		http.Error(w, "Failed to save avatar", http.StatusInternalServerError)
		return
	}
	if avatarURL != "" {
		update["avatar"] = avatarURL
	}

	if len(update) == 0 {
		http.Error(w, "Nothing to update", http.StatusBadRequest)
		return
	}

	if _, err := db.UserCollection.UpdateOne(ctx, bson.M{"userid": userID}, bson.M{"$set": update}); err != nil {
		log.Println("UpdateProfile error:", err)
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// RegisterPushToken stores the device's Expo push token on the user record.
// An empty token clears it.
func RegisterPushToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	var op bson.M
	if body.Token == "" {
		op = bson.M{"$unset": bson.M{"pushToken": ""}}
	} else {
		op = bson.M{"$set": bson.M{"pushToken": body.Token}}
	}

	if _, err := db.UserCollection.UpdateOne(ctx, bson.M{"userid": userID}, op); err != nil {
		log.Println("RegisterPushToken error:", err)
		http.Error(w, "Failed to store push token", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}
