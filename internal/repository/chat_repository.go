package repository

import (
	"context"
	"time"

	"elearning-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ChatRepository struct {
	Col *mongo.Collection
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{Col: db.Collection("chats")}
}

// FindAll returns the chat log oldest-first.
func (r *ChatRepository) FindAll(ctx context.Context) ([]models.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.Col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var chats []models.Chat
	for cur.Next(ctx) {
		var c models.Chat
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, nil
}

func (r *ChatRepository) Create(ctx context.Context, chat *models.Chat) error {
	chat.CreatedAt = time.Now()
	res, err := r.Col.InsertOne(ctx, chat)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		chat.ID = oid
	}
	return nil
}
