package repository

import (
	"context"
	"time"

	"elearning-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CourseRepository struct {
	Col *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{Col: db.Collection("courses")}
}

func (r *CourseRepository) FindAll(ctx context.Context) ([]models.Course, error) {
	cur, err := r.Col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var courses []models.Course
	for cur.Next(ctx) {
		var c models.Course
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	var course models.Course
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&course)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	cur, err := r.Col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var courses []models.Course
	for cur.Next(ctx) {
		var c models.Course
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now
	if course.Lessons == nil {
		course.Lessons = []primitive.ObjectID{}
	}
	res, err := r.Col.InsertOne(ctx, course)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		course.ID = oid
	}
	return nil
}

func (r *CourseRepository) Update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (r *CourseRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *CourseRepository) AddLesson(ctx context.Context, courseID, lessonID primitive.ObjectID) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": courseID}, bson.M{
		"$push": bson.M{"lessons": lessonID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

// PullLesson removes lessonID from whichever course lists it.
func (r *CourseRepository) PullLesson(ctx context.Context, lessonID primitive.ObjectID) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"lessons": lessonID}, bson.M{
		"$pull": bson.M{"lessons": lessonID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}
