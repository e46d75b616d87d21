package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection         *mongo.Collection
	MenusCollection        *mongo.Collection
	PendingMenusCollection *mongo.Collection
	FavoritesCollection    *mongo.Collection
	CartsCollection        *mongo.Collection
	OrdersCollection       *mongo.Collection
	TransactionCollection  *mongo.Collection
	ChatsCollection        *mongo.Collection
	MessagesCollection     *mongo.Collection
	Client                 *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	var err error
	Client, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("tiffindb")
	UserCollection = database.Collection("users")
	MenusCollection = database.Collection("menus")
	PendingMenusCollection = database.Collection("pendingmenus")
	FavoritesCollection = database.Collection("favorites")
	CartsCollection = database.Collection("carts")
	OrdersCollection = database.Collection("orders")
	TransactionCollection = database.Collection("transactions")
	ChatsCollection = database.Collection("chats")
	MessagesCollection = database.Collection("messages")
}
