package services

import (
	"context"
	"sync"

	"backoffice-service/internal/repository"
	"backoffice-service/internal/schema"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
)

// MockEntityRepository is a mock implementation of EntityRepositoryInterface
type MockEntityRepository struct {
	mock.Mock
}

// Ensure MockEntityRepository implements the interface
var _ repository.EntityRepositoryInterface = (*MockEntityRepository)(nil)

func (m *MockEntityRepository) FindByPK(ctx context.Context, s *schema.Schema, id int64) (any, error) {
	args := m.Called(ctx, s, id)
	return args.Get(0), args.Error(1)
}

func (m *MockEntityRepository) Exists(ctx context.Context, s *schema.Schema, conds map[string]any) (bool, error) {
	args := m.Called(ctx, s, conds)
	return args.Bool(0), args.Error(1)
}

func (m *MockEntityRepository) Create(ctx context.Context, entity any) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// fakeMailer records queued e-mails
type fakeMailer struct {
	mu    sync.Mutex
	calls []sentMail
}

func (f *fakeMailer) EnqueueEmail(ctx context.Context, to, subject, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sentMail{To: to, Subject: subject, Body: body})
	return "task-id", nil
}

func (f *fakeMailer) sent() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.calls...)
}

func testLogger() *logrus.Entry {
	logger, _ := test.NewNullLogger()
	return logrus.NewEntry(logger)
}

func kindSchema(kind string) *schema.Schema {
	s, err := schema.Marketplace().Lookup(kind)
	if err != nil {
		panic(err)
	}
	return s
}
