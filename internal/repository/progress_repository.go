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

type ProgressRepository struct {
	Col *mongo.Collection
}

func NewProgressRepository(db *mongo.Database) *ProgressRepository {
	return &ProgressRepository{Col: db.Collection("progress")}
}

// EnsureIndexes enforces one progress record per (user, course) pair so the
// upsert in AddCompletedLesson cannot create duplicates under concurrent
// first-completion requests.
func (r *ProgressRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "course", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// AddCompletedLesson upserts the (user, course) progress record and adds
// lessonID to the completed set in one atomic operation. Adding an already
// completed lesson is a no-op.
func (r *ProgressRepository) AddCompletedLesson(ctx context.Context, userID, courseID, lessonID primitive.ObjectID) (*models.Progress, error) {
	now := time.Now()
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var progress models.Progress
	err := r.Col.FindOneAndUpdate(ctx,
		bson.M{"user": userID, "course": courseID},
		bson.M{
			"$addToSet":    bson.M{"completed_lessons": lessonID},
			"$set":         bson.M{"updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		opts,
	).Decode(&progress)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Progress, error) {
	cur, err := r.Col.Find(ctx, bson.M{"user": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var records []models.Progress
	for cur.Next(ctx) {
		var p models.Progress
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	return records, nil
}

func (r *ProgressRepository) FindByUserAndCourse(ctx context.Context, userID, courseID primitive.ObjectID) (*models.Progress, error) {
	var progress models.Progress
	err := r.Col.FindOne(ctx, bson.M{"user": userID, "course": courseID}).Decode(&progress)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) error {
	_, err := r.Col.DeleteMany(ctx, bson.M{"course": courseID})
	return err
}

// PullLessonFromAll removes lessonID from every progress record's completed
// set, keeping no dangling references after a lesson deletion.
func (r *ProgressRepository) PullLessonFromAll(ctx context.Context, lessonID primitive.ObjectID) error {
	_, err := r.Col.UpdateMany(ctx, bson.M{}, bson.M{
		"$pull": bson.M{"completed_lessons": lessonID},
	})
	return err
}
