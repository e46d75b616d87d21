package models

import "time"

// User is a chef or a student account.
type User struct {
	UserID        string    `json:"userid" bson:"userid"`
	Role          string    `json:"role" bson:"role"` // chef, student
	Name          string    `json:"name" bson:"name"`
	Email         string    `json:"email" bson:"email"`
	Password      string    `json:"-" bson:"password"`
	Avatar        string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Bio           string    `json:"bio,omitempty" bson:"bio,omitempty"`
	Address       string    `json:"address,omitempty" bson:"address,omitempty"`
	PushToken     string    `json:"-" bson:"pushToken,omitempty"`
	RefreshToken  string    `json:"-" bson:"refresh_token,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refresh_expiry,omitempty"`
	LastLogin     time.Time `json:"-" bson:"last_login,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}
