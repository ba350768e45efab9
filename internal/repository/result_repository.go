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

type ResultRepository struct {
	Col *mongo.Collection
}

func NewResultRepository(db *mongo.Database) *ResultRepository {
	return &ResultRepository{Col: db.Collection("quiz_results")}
}

// EnsureIndexes enforces one result per (user, quiz) pair. A duplicate-key
// error from Create is the canonical already-submitted signal, closing the
// double-submit race that a read-then-insert check alone would leave open.
func (r *ResultRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "quiz", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *ResultRepository) FindByUserAndQuiz(ctx context.Context, userID, quizID primitive.ObjectID) (*models.QuizResult, error) {
	var result models.QuizResult
	err := r.Col.FindOne(ctx, bson.M{"user": userID, "quiz": quizID}).Decode(&result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.QuizResult, error) {
	cur, err := r.Col.Find(ctx, bson.M{"user": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var results []models.QuizResult
	for cur.Next(ctx) {
		var res models.QuizResult
		if err := cur.Decode(&res); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *ResultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	result.CreatedAt = time.Now()
	res, err := r.Col.InsertOne(ctx, result)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		result.ID = oid
	}
	return nil
}

func (r *ResultRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *ResultRepository) DeleteByQuiz(ctx context.Context, quizID primitive.ObjectID) error {
	_, err := r.Col.DeleteMany(ctx, bson.M{"quiz": quizID})
	return err
}

func (r *ResultRepository) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) error {
	_, err := r.Col.DeleteMany(ctx, bson.M{"course": courseID})
	return err
}
