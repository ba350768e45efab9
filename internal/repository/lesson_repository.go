package repository

import (
	"context"
	"time"

	"elearning-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type LessonRepository struct {
	Col *mongo.Collection
}

func NewLessonRepository(db *mongo.Database) *LessonRepository {
	return &LessonRepository{Col: db.Collection("lessons")}
}

func (r *LessonRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Lesson, error) {
	var lesson models.Lesson
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&lesson)
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *LessonRepository) FindByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Lesson, error) {
	cur, err := r.Col.Find(ctx, bson.M{"course": courseID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var lessons []models.Lesson
	for cur.Next(ctx) {
		var l models.Lesson
		if err := cur.Decode(&l); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, nil
}

func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	now := time.Now()
	lesson.CreatedAt = now
	lesson.UpdatedAt = now
	res, err := r.Col.InsertOne(ctx, lesson)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		lesson.ID = oid
	}
	return nil
}

func (r *LessonRepository) Update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (r *LessonRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *LessonRepository) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) error {
	_, err := r.Col.DeleteMany(ctx, bson.M{"course": courseID})
	return err
}
