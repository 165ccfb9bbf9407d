package order

import (
	"context"
	"io"
	"sync"

	"github.com/irsalhamdi/e-learning/core/course"
	"github.com/irsalhamdi/e-learning/core/enrollment"
	"github.com/irsalhamdi/e-learning/database"
	"github.com/irsalhamdi/e-learning/payment"
	"github.com/sirupsen/logrus"
)

func discard() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// memStore keeps the same guarantees as Store: all writes of an operation
// land together and enrolling twice changes nothing.
type memStore struct {
	mu      sync.Mutex
	orders  map[string]Order
	entries map[string][]enrollment.Entry
	roster  map[string][]course.Student

	createErr error
}

func newMemStore() *memStore {
	return &memStore{
		orders:  make(map[string]Order),
		entries: make(map[string][]enrollment.Entry),
		roster:  make(map[string][]course.Student),
	}
}

func (s *memStore) Create(ctx context.Context, ord Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return s.createErr
	}
	s.orders[ord.ID] = ord
	return nil
}

func (s *memStore) CreateAndEnroll(ctx context.Context, ord Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return s.createErr
	}
	s.orders[ord.ID] = ord
	s.enroll(ord)
	return nil
}

func (s *memStore) ConfirmAndEnroll(ctx context.Context, id string, confirm func(*Order) error) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ord, ok := s.orders[id]
	if !ok {
		return Order{}, database.ErrDBNotFound
	}

	if err := confirm(&ord); err != nil {
		return Order{}, err
	}

	s.orders[id] = ord
	s.enroll(ord)
	return ord, nil
}

func (s *memStore) Fetch(ctx context.Context, id string) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ord, ok := s.orders[id]
	if !ok {
		return Order{}, database.ErrDBNotFound
	}
	return ord, nil
}

func (s *memStore) enroll(ord Order) {
	owned := false
	for _, e := range s.entries[ord.UserID] {
		owned = owned || e.CourseID == ord.CourseID
	}
	if !owned {
		s.entries[ord.UserID] = append(s.entries[ord.UserID], purchaseEntry(ord))
	}

	listed := false
	for _, st := range s.roster[ord.CourseID] {
		listed = listed || st.StudentID == ord.UserID
	}
	if !listed {
		s.roster[ord.CourseID] = append(s.roster[ord.CourseID], rosterEntry(ord))
	}
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// =============================================================================

type fakeGateway struct {
	name string
	info *payment.Info
	err  error

	mu   sync.Mutex
	reqs []payment.Request
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) CreatePayment(ctx context.Context, req payment.Request) (*payment.Info, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.reqs = append(g.reqs, req)
	if g.err != nil {
		return nil, g.err
	}
	return g.info, nil
}

func (g *fakeGateway) calls() []payment.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]payment.Request(nil), g.reqs...)
}

func approvedGateway(name string) *fakeGateway {
	return &fakeGateway{
		name: name,
		info: &payment.Info{
			ID:    "PAYID-1",
			State: "created",
			Links: []payment.Link{
				{Href: "https://api.test/v1/payments/payment/PAYID-1", Rel: "self", Method: "GET"},
				{Href: "https://www.test/checkoutnow?token=EC-1", Rel: payment.RelApproval, Method: "REDIRECT"},
			},
		},
	}
}

type fakeLocker struct {
	held     map[string]bool
	unlocked []string
}

func (l *fakeLocker) Lock(ctx context.Context, key string) (func(), bool, error) {
	if l.held[key] {
		return nil, false, nil
	}
	return func() { l.unlocked = append(l.unlocked, key) }, true, nil
}

type published struct {
	key   string
	event EnrolledEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *fakePublisher) Publish(ctx context.Context, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, published{key: key, event: event.(EnrolledEvent)})
	return nil
}
