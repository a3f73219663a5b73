package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	classroomserrors "aula/internal/classrooms/errors"
	"aula/pkg/config"
	"aula/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Classrooms"
)

type mongoClassroomRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type ClassroomRepository interface {
	Create(ctx context.Context, classroom *model.Classroom) error
	FindByID(ctx context.Context, id string) (*model.Classroom, error)
	FindAll(ctx context.Context) ([]*model.Classroom, error)
	UpdateBaseStatus(ctx context.Context, id string, status model.BaseStatus) error
}

func NewMongoClassroomRepository(cfg *config.Config) ClassroomRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoClassroomRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoClassroomRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoClassroomRepository) Create(ctx context.Context, classroom *model.Classroom) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if classroom.ID == "" {
		classroom.ID = uuid.NewString()
	}

	if _, err := r.collection.InsertOne(ctx, classroom); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return classroomserrors.ErrDuplicateName
		}
		return fmt.Errorf("failed to create classroom: %w", err)
	}
	return nil
}

func (r *mongoClassroomRepository) FindByID(ctx context.Context, id string) (*model.Classroom, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var classroom model.Classroom
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&classroom)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, classroomserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find classroom: %w", err)
	}

	return &classroom, nil
}

// FindAll returns the full catalog. Campuses carry at most a few hundred
// rooms, so the list is not paginated.
func (r *mongoClassroomRepository) FindAll(ctx context.Context) ([]*model.Classroom, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "room_name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find classrooms: %w", err)
	}
	defer cursor.Close(ctx)

	var classrooms []*model.Classroom
	if err = cursor.All(ctx, &classrooms); err != nil {
		return nil, fmt.Errorf("failed to decode classrooms: %w", err)
	}

	return classrooms, nil
}

func (r *mongoClassroomRepository) UpdateBaseStatus(ctx context.Context, id string, status model.BaseStatus) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"base_status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update classroom status: %w", err)
	}
	if result.MatchedCount == 0 {
		return classroomserrors.ErrNotFound
	}
	return nil
}
