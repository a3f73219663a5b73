package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reservationserrors "aula/internal/reservations/errors"
	"aula/pkg/config"
	mongotx "aula/pkg/db/mongo"
	"aula/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Reservations"
)

type mongoReservationRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error)
	Count(ctx context.Context) (int64, error)
	FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Reservation, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	FindByClassroomAndDate(ctx context.Context, classroomID string, date model.Date, statuses []model.Status) ([]*model.Reservation, error)
	FindOverlapping(ctx context.Context, classroomID string, date model.Date, slot model.Interval, statuses []model.Status, excludeID string) ([]*model.Reservation, error)
	DistinctOccupiedClassrooms(ctx context.Context, date model.Date, slot model.Interval, statuses []model.Status) ([]string, error)
	UpdateStatus(ctx context.Context, id string, from []model.Status, to model.Status) error
	UpdateSlot(ctx context.Context, id string, date model.Date, slot model.Interval, purpose string, status model.Status) error
	MarkOngoing(ctx context.Context, today model.Date, now model.TimeOfDay) (int64, error)
	MarkDoneAfterEnd(ctx context.Context, today model.Date, now model.TimeOfDay) (int64, error)
	MarkDonePastDate(ctx context.Context, today model.Date) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoReservationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	reservation.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, reservation); err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var reservation model.Reservation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

func (r *mongoReservationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_minute", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	return count, nil
}

func (r *mongoReservationRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "start_minute", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations by user: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations by user: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) FindByClassroomAndDate(ctx context.Context, classroomID string, date model.Date, statuses []model.Status) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"classroom_id": classroomID,
		"date":         date,
	}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_minute", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations by classroom and date: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

// FindOverlapping returns reservations on the same classroom and date whose
// half-open interval intersects the given slot. Touching boundaries
// (end == start) do not match.
func (r *mongoReservationRepository) FindOverlapping(ctx context.Context, classroomID string, date model.Date, slot model.Interval, statuses []model.Status, excludeID string) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"classroom_id": classroomID,
		"date":         date,
		"status":       bson.M{"$in": statuses},
		"start_minute": bson.M{"$lt": slot.End},
		"end_minute":   bson.M{"$gt": slot.Start},
	}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_minute", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) DistinctOccupiedClassrooms(ctx context.Context, date model.Date, slot model.Interval, statuses []model.Status) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"date":         date,
		"status":       bson.M{"$in": statuses},
		"start_minute": bson.M{"$lt": slot.End},
		"end_minute":   bson.M{"$gt": slot.Start},
	}

	values, err := r.collection.Distinct(ctx, "classroom_id", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find occupied classrooms: %w", err)
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// UpdateStatus moves a reservation to the target status only if its current
// status is one of the expected source statuses. Returns ErrStatusNotMatched
// when the document exists but is no longer in an expected state, which makes
// concurrent transitions and repeated sweeps safe.
func (r *mongoReservationRepository) UpdateStatus(ctx context.Context, id string, from []model.Status, to model.Status) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": from},
	}
	update := bson.M{"$set": bson.M{"status": to}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}

	if result.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("failed to verify reservation existence: %w", err)
		}
		if count == 0 {
			return reservationserrors.ErrNotFound
		}
		return reservationserrors.ErrStatusNotMatched
	}

	return nil
}

func (r *mongoReservationRepository) UpdateSlot(ctx context.Context, id string, date model.Date, slot model.Interval, purpose string, status model.Status) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"date":         date,
			"start_minute": slot.Start,
			"end_minute":   slot.End,
			"purpose":      purpose,
			"status":       status,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		return reservationserrors.ErrNotFound
	}

	return nil
}

// MarkOngoing flips approved reservations on today's date into ongoing once
// their start time has been reached and their end time has not.
func (r *mongoReservationRepository) MarkOngoing(ctx context.Context, today model.Date, now model.TimeOfDay) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"status":       model.StatusApproved,
		"date":         today,
		"start_minute": bson.M{"$lte": now},
		"end_minute":   bson.M{"$gt": now},
	}
	update := bson.M{"$set": bson.M{"status": model.StatusOngoing}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark reservations ongoing: %w", err)
	}
	return result.ModifiedCount, nil
}

// MarkDoneAfterEnd completes reservations on today's date whose end time has
// passed. Both approved reservations that were never observed as ongoing and
// ongoing ones are covered.
func (r *mongoReservationRepository) MarkDoneAfterEnd(ctx context.Context, today model.Date, now model.TimeOfDay) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"status":     bson.M{"$in": []model.Status{model.StatusApproved, model.StatusOngoing}},
		"date":       today,
		"end_minute": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{"status": model.StatusDone}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark ended reservations done: %w", err)
	}
	return result.ModifiedCount, nil
}

// MarkDonePastDate completes approved or ongoing reservations whose date is
// strictly before today. Catches reservations that were missed while the
// sweeper was not running.
func (r *mongoReservationRepository) MarkDonePastDate(ctx context.Context, today model.Date) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"status": bson.M{"$in": []model.Status{model.StatusApproved, model.StatusOngoing}},
		"date":   bson.M{"$lt": today},
	}
	update := bson.M{"$set": bson.M{"status": model.StatusDone}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark past reservations done: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
