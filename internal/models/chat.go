package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Chat struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserMessage string             `bson:"user_message" json:"userMessage"`
	BotResponse string             `bson:"bot_response" json:"botResponse"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}
