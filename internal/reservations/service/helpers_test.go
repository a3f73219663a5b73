package service

import (
	"context"
	"sync"
	"time"

	classroomserrors "aula/internal/classrooms/errors"
	reservationserrors "aula/internal/reservations/errors"
	"aula/internal/reservations/validator"
	"aula/pkg/config"
	mongotx "aula/pkg/db/mongo"
	"aula/pkg/logger"
	"aula/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// Test fixtures
// ────────────────────────────────────────────────

func testConfig() *config.Config {
	return &config.Config{
		Log:                logger.Discard(),
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		LockTTL:            10 * time.Second,
		LockRetryInterval:  time.Millisecond,
		LockAcquireTimeout: 50 * time.Millisecond,
		SweepInterval:      time.Minute,
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(at time.Time) *fakeClock {
	return &fakeClock{now: at}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at
}

func mustTime(t string) model.TimeOfDay {
	v, err := model.ParseTimeOfDay(t)
	if err != nil {
		panic(err)
	}
	return v
}

func slot(start, end string) model.Interval {
	return model.Interval{Start: mustTime(start), End: mustTime(end)}
}

// at builds an instant on the given date and wall-clock time.
func at(date, hhmm string) time.Time {
	v, err := time.Parse("2006-01-02 15:04", date+" "+hhmm)
	if err != nil {
		panic(err)
	}
	return v
}

// ────────────────────────────────────────────────
// In-memory reservation repository
// ────────────────────────────────────────────────

// fakeReservationRepo keeps reservations in a mutex-guarded map and
// reimplements the conditional-update semantics of the real store, which
// is what the race and sweep tests exercise.
type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[string]*model.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[string]*model.Reservation)}
}

func (f *fakeReservationRepo) snapshot(r *model.Reservation) *model.Reservation {
	clone := *r
	return &clone
}

func (f *fakeReservationRepo) Create(_ context.Context, r *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now().UTC()
	f.reservations[r.ID] = f.snapshot(r)
	return nil
}

func (f *fakeReservationRepo) FindByID(_ context.Context, id string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return nil, reservationserrors.ErrNotFound
	}
	return f.snapshot(r), nil
}

func (f *fakeReservationRepo) FindAll(_ context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Reservation
	for _, r := range f.reservations {
		out = append(out, f.snapshot(r))
	}
	return out, nil
}

func (f *fakeReservationRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.reservations)), nil
}

func (f *fakeReservationRepo) FindByUser(_ context.Context, userID string, limit int, offset int64) ([]*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Reservation
	for _, r := range f.reservations {
		if r.UserID == userID {
			out = append(out, f.snapshot(r))
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.reservations {
		if r.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeReservationRepo) FindByClassroomAndDate(_ context.Context, classroomID string, date model.Date, statuses []model.Status) ([]*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Reservation
	for _, r := range f.reservations {
		if r.ClassroomID == classroomID && r.Date == date && statusIn(r.Status, statuses) {
			out = append(out, f.snapshot(r))
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) FindOverlapping(_ context.Context, classroomID string, date model.Date, s model.Interval, statuses []model.Status, excludeID string) ([]*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Reservation
	for _, r := range f.reservations {
		if r.ID == excludeID {
			continue
		}
		if r.ClassroomID == classroomID && r.Date == date && statusIn(r.Status, statuses) && r.Slot.Overlaps(s) {
			out = append(out, f.snapshot(r))
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) DistinctOccupiedClassrooms(_ context.Context, date model.Date, s model.Interval, statuses []model.Status) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]struct{})
	var out []string
	for _, r := range f.reservations {
		if r.Date == date && statusIn(r.Status, statuses) && r.Slot.Overlaps(s) {
			if _, dup := seen[r.ClassroomID]; !dup {
				seen[r.ClassroomID] = struct{}{}
				out = append(out, r.ClassroomID)
			}
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) UpdateStatus(_ context.Context, id string, from []model.Status, to model.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return reservationserrors.ErrNotFound
	}
	if !statusIn(r.Status, from) {
		return reservationserrors.ErrStatusNotMatched
	}
	r.Status = to
	return nil
}

func (f *fakeReservationRepo) UpdateSlot(_ context.Context, id string, date model.Date, s model.Interval, purpose string, status model.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return reservationserrors.ErrNotFound
	}
	r.Date = date
	r.Slot = s
	r.Purpose = purpose
	r.Status = status
	return nil
}

func (f *fakeReservationRepo) MarkOngoing(_ context.Context, today model.Date, now model.TimeOfDay) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.reservations {
		if r.Status == model.StatusApproved && r.Date == today && r.Slot.Start <= now && now < r.Slot.End {
			r.Status = model.StatusOngoing
			n++
		}
	}
	return n, nil
}

func (f *fakeReservationRepo) MarkDoneAfterEnd(_ context.Context, today model.Date, now model.TimeOfDay) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.reservations {
		active := r.Status == model.StatusApproved || r.Status == model.StatusOngoing
		if active && r.Date == today && r.Slot.End <= now {
			r.Status = model.StatusDone
			n++
		}
	}
	return n, nil
}

func (f *fakeReservationRepo) MarkDonePastDate(_ context.Context, today model.Date) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.reservations {
		active := r.Status == model.StatusApproved || r.Status == model.StatusOngoing
		if active && r.Date.Before(today) {
			r.Status = model.StatusDone
			n++
		}
	}
	return n, nil
}

func (f *fakeReservationRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func statusIn(s model.Status, set []model.Status) bool {
	if len(set) == 0 {
		return true
	}
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ────────────────────────────────────────────────
// In-memory lock repository
// ────────────────────────────────────────────────

type fakeLockRepo struct {
	mu    sync.Mutex
	locks map[string]*model.ReservationLock
}

func newFakeLockRepo() *fakeLockRepo {
	return &fakeLockRepo{locks: make(map[string]*model.ReservationLock)}
}

// duplicateKeyErr is recognized by mongo.IsDuplicateKeyError, matching the
// real driver's behavior when the lock _id already exists.
func duplicateKeyErr() error {
	return mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000}},
	}
}

func (f *fakeLockRepo) Create(_ context.Context, lock *model.ReservationLock) (*model.ReservationLock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, held := f.locks[lock.ID]; held {
		return nil, duplicateKeyErr()
	}
	lock.CreatedAt = time.Now()
	f.locks[lock.ID] = lock
	return lock, nil
}

func (f *fakeLockRepo) Delete(_ context.Context, lockID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.locks, lockID)
	return nil
}

// ────────────────────────────────────────────────
// In-memory classroom catalog
// ────────────────────────────────────────────────

type fakeCatalog struct {
	mu         sync.Mutex
	classrooms map[string]*model.Classroom
}

func newFakeCatalog(rooms ...*model.Classroom) *fakeCatalog {
	c := &fakeCatalog{classrooms: make(map[string]*model.Classroom)}
	for _, room := range rooms {
		c.classrooms[room.ID] = room
	}
	return c
}

func (f *fakeCatalog) FindByID(_ context.Context, id string) (*model.Classroom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.classrooms[id]
	if !ok {
		return nil, classroomserrors.ErrNotFound
	}
	clone := *room
	return &clone, nil
}

func (f *fakeCatalog) FindAll(_ context.Context) ([]*model.Classroom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Classroom
	for _, room := range f.classrooms {
		clone := *room
		out = append(out, &clone)
	}
	return out, nil
}

// ────────────────────────────────────────────────
// Event capture
// ────────────────────────────────────────────────

type capturePublisher struct {
	mu     sync.Mutex
	events []*model.ReservationEvent
}

func (p *capturePublisher) Publish(_ context.Context, event *model.ReservationEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturePublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Action)
	}
	return out
}

// ────────────────────────────────────────────────
// Wiring
// ────────────────────────────────────────────────

type testEnv struct {
	repo      *fakeReservationRepo
	locks     *fakeLockRepo
	catalog   *fakeCatalog
	clock     *fakeClock
	publisher *capturePublisher
	cfg       *config.Config
	svc       ReservationService
}

var defaultRoom = &model.Classroom{
	ID:         "room-101",
	Name:       "R101",
	Building:   "Main",
	Capacity:   40,
	BaseStatus: model.ClassroomAvailable,
}

func newTestEnv(now time.Time, rooms ...*model.Classroom) *testEnv {
	if len(rooms) == 0 {
		rooms = []*model.Classroom{defaultRoom}
	}

	env := &testEnv{
		repo:      newFakeReservationRepo(),
		locks:     newFakeLockRepo(),
		catalog:   newFakeCatalog(rooms...),
		clock:     newFakeClock(now),
		publisher: &capturePublisher{},
		cfg:       testConfig(),
	}
	env.svc = NewReservationService(
		env.repo,
		env.locks,
		env.catalog,
		validator.NewReservationValidator(logger.Discard()),
		env.publisher,
		env.clock,
		env.cfg,
	)
	return env
}

var faculty = model.Actor{UserID: "prof-1", Role: model.RoleFaculty}
var otherFaculty = model.Actor{UserID: "prof-2", Role: model.RoleFaculty}
var admin = model.Actor{UserID: "admin-1", Role: model.RoleAdmin}
var student = model.Actor{UserID: "student-1", Role: model.RoleStudent}

func newReservation(room string, date model.Date, s model.Interval) *model.Reservation {
	return &model.Reservation{
		ClassroomID: room,
		Date:        date,
		Slot:        s,
		Purpose:     "Linear algebra lecture",
	}
}
