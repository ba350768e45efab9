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

type UserRepository struct {
	Col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{Col: db.Collection("users")}
}

// EnsureIndexes creates the uniqueness constraints identity sync relies on.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "external_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := r.Col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	err := r.Col.FindOne(ctx, bson.M{"external_id": externalID}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.Col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.EnrolledCourses == nil {
		user.EnrolledCourses = []primitive.ObjectID{}
	}
	if user.CompletedCourses == nil {
		user.CompletedCourses = []primitive.ObjectID{}
	}
	res, err := r.Col.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

// AddEnrolledCourse appends courseID to the enrolled set. $addToSet keeps
// the operation idempotent under repeated enroll calls.
func (r *UserRepository) AddEnrolledCourse(ctx context.Context, userID, courseID primitive.ObjectID) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$addToSet": bson.M{"enrolled_courses": courseID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	return err
}

// AddCompletedCourse appends courseID to the completed set without
// duplicates. This is the single writer path for the completion marker.
func (r *UserRepository) AddCompletedCourse(ctx context.Context, userID, courseID primitive.ObjectID) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$addToSet": bson.M{"completed_courses": courseID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	return err
}
