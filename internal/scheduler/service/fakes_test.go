package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"email-datagen/internal/entity"
	"email-datagen/internal/scheduler/repository"
)

var errStoreDown = errors.New("connection refused")

// memScheduleRepo is an in-memory ScheduleRepository with the same version semantics as the gorm one.
type memScheduleRepo struct {
	mu        sync.Mutex
	items     map[string]entity.Schedule
	failFind  error
	conflicts int
	updates   int
}

func newMemScheduleRepo(schedules ...*entity.Schedule) *memScheduleRepo {
	r := &memScheduleRepo{items: map[string]entity.Schedule{}}
	for _, s := range schedules {
		r.items[s.ID] = *s
	}
	return r
}

func (r *memScheduleRepo) Create(_ context.Context, s *entity.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[s.ID]; ok {
		return errors.New("duplicate id")
	}
	r.items[s.ID] = *s
	return nil
}

func (r *memScheduleRepo) FindByID(_ context.Context, id string) (*entity.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, repository.ErrScheduleNotFound
	}
	return &s, nil
}

func (r *memScheduleRepo) FindAll(_ context.Context) ([]entity.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Schedule, 0, len(r.items))
	for _, s := range r.items {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memScheduleRepo) Update(_ context.Context, s *entity.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[s.ID]
	if !ok {
		return repository.ErrScheduleNotFound
	}
	if r.conflicts > 0 {
		r.conflicts--
		stored.Version++
		r.items[s.ID] = stored
		return repository.ErrVersionConflict
	}
	if stored.Version != s.Version {
		return repository.ErrVersionConflict
	}
	s.Version++
	r.items[s.ID] = *s
	r.updates++
	return nil
}

func (r *memScheduleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrScheduleNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memScheduleRepo) FindDue(_ context.Context, now time.Time) ([]entity.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind != nil {
		return nil, r.failFind
	}
	var out []entity.Schedule
	for _, s := range r.items {
		if s.IsDue(now) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memScheduleRepo) FindMissingNextRun(_ context.Context) ([]entity.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind != nil {
		return nil, r.failFind
	}
	var out []entity.Schedule
	for _, s := range r.items {
		if s.Enabled && !s.Exhausted && s.NextRunAt == nil {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memScheduleRepo) get(id string) entity.Schedule {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id]
}

// memRunRepo enforces the (schedule_id, occurrence_utc) uniqueness of the real table.
type memRunRepo struct {
	mu     sync.Mutex
	nextID uint
	runs   map[uint]entity.ScheduleRun
	claims map[string]bool
}

func newMemRunRepo() *memRunRepo {
	return &memRunRepo{runs: map[uint]entity.ScheduleRun{}, claims: map[string]bool{}}
}

func (r *memRunRepo) Create(_ context.Context, run *entity.ScheduleRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := run.ScheduleID + "|" + run.OccurrenceAt.UTC().Format(time.RFC3339Nano)
	if r.claims[key] {
		return repository.ErrDuplicateOccurrence
	}
	r.claims[key] = true
	r.nextID++
	run.ID = r.nextID
	r.runs[run.ID] = *run
	return nil
}

func (r *memRunRepo) Update(_ context.Context, run *entity.ScheduleRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
	return nil
}

func (r *memRunRepo) FindByID(_ context.Context, id uint) (*entity.ScheduleRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, repository.ErrRunNotFound
	}
	return &run, nil
}

func (r *memRunRepo) FindAll(_ context.Context, limit int) ([]entity.ScheduleRun, error) {
	return r.filter("", limit), nil
}

func (r *memRunRepo) FindAllByScheduleID(_ context.Context, scheduleID string, limit int) ([]entity.ScheduleRun, error) {
	return r.filter(scheduleID, limit), nil
}

func (r *memRunRepo) filter(scheduleID string, limit int) []entity.ScheduleRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.ScheduleRun
	for _, run := range r.runs {
		if scheduleID == "" || run.ScheduleID == scheduleID {
			out = append(out, run)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *memRunRepo) all() []entity.ScheduleRun {
	return r.filter("", 0)
}

// fakeDispatcher counts calls and answers through fn.
type fakeDispatcher struct {
	calls int32
	fn    func(ctx context.Context, s *entity.Schedule) (*entity.DispatchResult, error)
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, s *entity.Schedule) (*entity.DispatchResult, error) {
	atomic.AddInt32(&d.calls, 1)
	if d.fn != nil {
		return d.fn(ctx, s)
	}
	return &entity.DispatchResult{Success: true, Sent: s.EffectiveCount()}, nil
}

func (d *fakeDispatcher) count() int {
	return int(atomic.LoadInt32(&d.calls))
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.RunEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e *entity.RunEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *e)
	return nil
}

func (p *recordingPublisher) all() []entity.RunEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entity.RunEvent(nil), p.events...)
}

func ptr(t time.Time) *time.Time {
	return &t
}
