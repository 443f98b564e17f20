package handler

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/document-manager/internal/model"
	"github.com/iliyamo/document-manager/internal/repository"
)

// In-memory stores implementing the handler store interfaces, used in place
// of the MySQL repositories.  They reproduce the repository contracts the
// handlers rely on: sentinel errors, unique emails, newest-first listings
// and the compare-and-swap job transition.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]model.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = uuid.NewString()
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	return nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *fakeUserStore) GetActiveByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil || !u.IsActive {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetActiveByID(ctx context.Context, id string) (model.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil || !u.IsActive {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeUserStore) Update(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for id, existing := range s.users {
		if id != u.ID && existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = *u
	return nil
}

func (s *fakeUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type fakeDocStore struct {
	mu   sync.Mutex
	docs map[string]model.Document
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{docs: map[string]model.Document{}}
}

func (s *fakeDocStore) Create(_ context.Context, d *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = uuid.NewString()
	if d.Status == "" {
		d.Status = model.DocumentUploaded
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	for i := range d.Files {
		d.Files[i].ID = uuid.NewString()
		d.Files[i].DocumentID = d.ID
	}
	s.docs[d.ID] = *d
	return nil
}

func (s *fakeDocStore) AddFiles(_ context.Context, documentID string, files []model.DocumentFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[documentID]
	if !ok {
		return repository.ErrNotFound
	}
	for i := range files {
		files[i].ID = uuid.NewString()
		files[i].DocumentID = documentID
		d.Files = append(d.Files, files[i])
	}
	s.docs[documentID] = d
	return nil
}

func (s *fakeDocStore) Get(_ context.Context, id string) (model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return model.Document{}, repository.ErrNotFound
	}
	return d, nil
}

func (s *fakeDocStore) List(_ context.Context) ([]model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Document, 0, len(s.docs))
	for _, d := range s.docs {
		d.Files = nil
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeDocStore) Update(_ context.Context, d *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.docs[d.ID]
	if !ok {
		return repository.ErrNotFound
	}
	d.Files = existing.Files
	d.UpdatedAt = time.Now().UTC()
	s.docs[d.ID] = *d
	return nil
}

func (s *fakeDocStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[string]model.IngestionJob
	seq  int
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: map[string]model.IngestionJob{}}
}

func (s *fakeJobStore) Create(_ context.Context, j *model.IngestionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j.ID = uuid.NewString()
	if j.Status == "" {
		j.Status = model.IngestionPending
	}
	s.seq++
	// Spread creation times so newest-first ordering is deterministic.
	now := time.Now().UTC().Add(time.Duration(s.seq) * time.Millisecond)
	j.CreatedAt, j.UpdatedAt = now, now
	s.jobs[j.ID] = *j
	return nil
}

func (s *fakeJobStore) Get(_ context.Context, id string) (model.IngestionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return model.IngestionJob{}, repository.ErrNotFound
	}
	return j, nil
}

func (s *fakeJobStore) List(_ context.Context) ([]model.IngestionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.IngestionJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeJobStore) Save(_ context.Context, j *model.IngestionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[j.ID]; !ok {
		return repository.ErrNotFound
	}
	j.UpdatedAt = time.Now().UTC()
	s.jobs[j.ID] = *j
	return nil
}

func (s *fakeJobStore) Transition(_ context.Context, id, from, to, message string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok || j.Status != from {
		return false, nil
	}
	now := time.Now().UTC()
	j.Status = to
	j.UpdatedAt = now
	if message != "" {
		j.Message = message
	}
	if to == model.IngestionRunning && j.StartedAt == nil {
		j.StartedAt = &now
	}
	if model.TerminalIngestionStatus(to) && j.FinishedAt == nil {
		j.FinishedAt = &now
	}
	s.jobs[id] = j
	return true, nil
}
