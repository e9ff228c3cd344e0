package delivery

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/andreyxaxa/ubl-sender/internal/dto"
	"github.com/andreyxaxa/ubl-sender/internal/entity"
	"github.com/andreyxaxa/ubl-sender/internal/infrastructure/ubl"
	"github.com/andreyxaxa/ubl-sender/internal/usecase/filename"
	"github.com/andreyxaxa/ubl-sender/pkg/logger"
	"github.com/andreyxaxa/ubl-sender/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// store is an in-memory stand-in for the two tables. The transactor
// snapshots it and restores the snapshot when the callback fails.
type store struct {
	mu         sync.Mutex
	deliveries map[uuid.UUID]entity.FileDelivery
	events     map[uuid.UUID]entity.OutboxEvent

	failOutboxCreate error
}

func newStore() *store {
	return &store{
		deliveries: make(map[uuid.UUID]entity.FileDelivery),
		events:     make(map[uuid.UUID]entity.OutboxEvent),
	}
}

func (s *store) WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	s.mu.Lock()
	deliveries := make(map[uuid.UUID]entity.FileDelivery, len(s.deliveries))
	for k, v := range s.deliveries {
		deliveries[k] = v
	}
	events := make(map[uuid.UUID]entity.OutboxEvent, len(s.events))
	for k, v := range s.events {
		events[k] = v
	}
	s.mu.Unlock()

	if err := f(ctx); err != nil {
		s.mu.Lock()
		s.deliveries, s.events = deliveries, events
		s.mu.Unlock()
		return err
	}

	return nil
}

func (s *store) deliveryList() []entity.FileDelivery {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.FileDelivery, 0, len(s.deliveries))
	for _, d := range s.deliveries {
		out = append(out, d)
	}

	return out
}

func (s *store) eventsFor(id uuid.UUID) []entity.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entity.OutboxEvent
	for _, e := range s.events {
		if e.AggregateID == id {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeliverAt.Before(out[j].DeliverAt) })

	return out
}

type deliveryRepo struct{ *store }

func (r deliveryRepo) Create(_ context.Context, d *entity.FileDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deliveries[d.ID] = *d
	return nil
}

func (r deliveryRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.FileDelivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deliveries[id]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	return &d, nil
}

func (r deliveryRepo) Claim(_ context.Context, id uuid.UUID, now time.Time) (*entity.FileDelivery, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deliveries[id]
	if !ok || d.DeliveryStatus != entity.ScheduledToDeliver {
		return nil, false, nil
	}
	d.DeliveryStatus = entity.Delivering
	d.Attempts++
	d.UpdatedAt = now
	r.deliveries[id] = d

	return &d, true, nil
}

func (r deliveryRepo) transition(id uuid.UUID, f func(d *entity.FileDelivery)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deliveries[id]
	if !ok || d.DeliveryStatus != entity.Delivering {
		return errs.ErrRecordNotFound
	}
	f(&d)
	r.deliveries[id] = d

	return nil
}

func (r deliveryRepo) MarkDelivered(_ context.Context, id uuid.UUID, ticket *string, now time.Time) error {
	return r.transition(id, func(d *entity.FileDelivery) {
		d.DeliveryStatus = entity.Delivered
		d.Ticket = ticket
		d.DeliveryError = nil
		d.UpdatedAt = now
		d.DeliveredAt = &now
	})
}

func (r deliveryRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string, now time.Time) error {
	return r.transition(id, func(d *entity.FileDelivery) {
		d.DeliveryStatus = entity.DeliveryFailed
		d.DeliveryError = &reason
		d.UpdatedAt = now
	})
}

func (r deliveryRepo) Reschedule(_ context.Context, id uuid.UUID, reason string, now time.Time) error {
	return r.transition(id, func(d *entity.FileDelivery) {
		d.DeliveryStatus = entity.ScheduledToDeliver
		d.DeliveryError = &reason
		d.UpdatedAt = now
	})
}

func (r deliveryRepo) Release(_ context.Context, id uuid.UUID, reason string, now time.Time) error {
	return r.transition(id, func(d *entity.FileDelivery) {
		d.DeliveryStatus = entity.ScheduledToDeliver
		d.Attempts = max(d.Attempts-1, 0)
		d.DeliveryError = &reason
		d.UpdatedAt = now
	})
}

func (r deliveryRepo) stale(d entity.FileDelivery, before time.Time) bool {
	if d.DeliveryStatus != entity.ScheduledToDeliver && d.DeliveryStatus != entity.Delivering {
		return false
	}
	if !d.UpdatedAt.Before(before) {
		return false
	}
	for _, e := range r.events {
		if e.AggregateID == d.ID && (e.Status == entity.OutboxPending || e.Status == entity.OutboxProcessing) {
			return false
		}
	}
	return true
}

func (r deliveryRepo) ListStale(_ context.Context, before time.Time, limit int) ([]*entity.FileDelivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.FileDelivery
	for _, d := range r.deliveries {
		if len(out) == limit {
			break
		}
		if r.stale(d, before) {
			d := d
			out = append(out, &d)
		}
	}

	return out, nil
}

func (r deliveryRepo) ResetStale(_ context.Context, id uuid.UUID, before, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deliveries[id]
	if !ok || !r.stale(d, before) {
		return false, nil
	}
	d.DeliveryStatus = entity.ScheduledToDeliver
	d.UpdatedAt = now
	r.deliveries[id] = d

	return true, nil
}

type outboxRepo struct{ *store }

func (r outboxRepo) Create(_ context.Context, e *entity.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failOutboxCreate != nil {
		return r.failOutboxCreate
	}
	r.events[e.ID] = *e
	return nil
}

func (r outboxRepo) GetPendingEvents(_ context.Context, limit, maxRetries int, now time.Time) ([]*entity.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.OutboxEvent
	for _, e := range r.events {
		if e.Status == entity.OutboxPending && e.RetryCount < maxRetries && !e.DeliverAt.After(now) {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeliverAt.Before(out[j].DeliverAt) })
	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r outboxRepo) update(IDs uuid.UUIDs, f func(e *entity.OutboxEvent)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range IDs {
		e, ok := r.events[id]
		if !ok {
			return errs.ErrRecordNotFound
		}
		f(&e)
		r.events[id] = e
	}

	return nil
}

func (r outboxRepo) MarkAsProcessingBatch(_ context.Context, IDs uuid.UUIDs) error {
	return r.update(IDs, func(e *entity.OutboxEvent) { e.Status = entity.OutboxProcessing })
}

func (r outboxRepo) MarkAsProcessedBatch(_ context.Context, IDs uuid.UUIDs) error {
	return r.update(IDs, func(e *entity.OutboxEvent) {
		now := time.Now()
		e.Status = entity.OutboxProcessed
		e.ProcessedAt = &now
	})
}

func (r outboxRepo) IncrementRetryCountBatch(_ context.Context, IDs uuid.UUIDs) error {
	return r.update(IDs, func(e *entity.OutboxEvent) {
		e.Status = entity.OutboxPending
		e.RetryCount++
	})
}

func (r outboxRepo) MarkMaxRetriesAsFailed(_ context.Context, maxRetries int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, e := range r.events {
		if e.Status == entity.OutboxPending && e.RetryCount >= maxRetries {
			e.Status = entity.OutboxFailed
			r.events[id] = e
			n++
		}
	}

	return n, nil
}

func (r outboxRepo) ResetStaleProcessing(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (r outboxRepo) DeleteOldProcessedAndFailed(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fileRepo struct {
	mu      sync.Mutex
	objects map[string][]byte
	uploads int

	uploadErr   error
	downloadErr error
}

func newFileRepo() *fileRepo {
	return &fileRepo{objects: make(map[string][]byte)}
}

func (r *fileRepo) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.uploads++
	if r.uploadErr != nil {
		return "", r.uploadErr
	}
	r.objects[key] = data

	return key, nil
}

func (r *fileRepo) Download(_ context.Context, fileID string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.downloadErr != nil {
		return nil, r.downloadErr
	}
	b, ok := r.objects[fileID]
	if !ok {
		return nil, errors.New("no such key")
	}

	return b, nil
}

type sender struct {
	mu    sync.Mutex
	calls int
	err   error
	res   dto.SendResult

	// during runs inside Send, before it returns
	during func()
}

func (s *sender) Send(context.Context, string, string, entity.DocumentType, []byte) (dto.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.during != nil {
		s.during()
	}
	return s.res, s.err
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	uc     *UseCase
	store  *store
	files  *fileRepo
	sender *sender
	clock  *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	deriver, err := filename.New("^[Ff]", "^[Bb]")
	require.NoError(t, err)

	st := newStore()
	files := newFileRepo()
	snd := &sender{}
	clk := &clock{t: time.Date(2026, 3, 28, 10, 0, 0, 0, time.UTC)}

	uc := New(
		files,
		deliveryRepo{st},
		outboxRepo{st},
		st,
		ubl.New(),
		deriver,
		snd,
		Settings{
			ServerURL:            "https://e-beta.sunat.gob.pe/ol-ti-itcpfegem-beta/billService",
			MessageDelay:         5 * time.Second,
			UploadTimeout:        time.Second,
			MaxAttempts:          3,
			RetryDelay:           time.Minute,
			ReconcileGracePeriod: 10 * time.Minute,
			ReconcileBatchSize:   100,
		},
		logger.NewWithWriter("error", io.Discard),
	)
	uc.now = clk.Now

	return &fixture{
		uc:     uc,
		store:  st,
		files:  files,
		sender: snd,
		clock:  clk,
	}
}
