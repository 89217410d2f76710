package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/data/entity"
	"storefront/internal/data/repository"
	"storefront/pkg/mailer"

	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for Postgres. Transactions are
// serialised (like row locks on the same user) and roll back by restoring
// a snapshot.
type memStore struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	users    map[uuid.UUID]entity.User
	codes    map[uuid.UUID]entity.ResetCode
	sessions map[uuid.UUID]int

	calls int

	failCreate   error
	failMarkUsed error
	failFind     error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[uuid.UUID]entity.User{},
		codes:    map[uuid.UUID]entity.ResetCode{},
		sessions: map[uuid.UUID]int{},
	}
}

func (s *memStore) addUser(name, email, passwordHash string) entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := entity.User{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	s.users[u.ID] = u
	return u
}

func (s *memStore) user(id uuid.UUID) entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *memStore) codesFor(userID uuid.UUID) []entity.ResetCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.ResetCode
	for _, c := range s.codes {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}

func (s *memStore) putCode(c entity.ResetCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[c.ID] = c
}

func (s *memStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *memStore) touch() {
	s.calls++
}

func (s *memStore) repository() *repository.Repository {
	return &repository.Repository{
		User:      memUsers{s},
		ResetCode: memCodes{s},
		Session:   memSessions{s},
	}
}

type snapshot struct {
	users    map[uuid.UUID]entity.User
	codes    map[uuid.UUID]entity.ResetCode
	sessions map[uuid.UUID]int
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		users:    make(map[uuid.UUID]entity.User, len(s.users)),
		codes:    make(map[uuid.UUID]entity.ResetCode, len(s.codes)),
		sessions: make(map[uuid.UUID]int, len(s.sessions)),
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.codes {
		snap.codes[k] = v
	}
	for k, v := range s.sessions {
		snap.sessions[k] = v
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users, s.codes, s.sessions = snap.users, snap.codes, snap.sessions
}

// WithinTx implements repository.Transactor.
func (s *memStore) WithinTx(ctx context.Context, fn func(tx *repository.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(s.repository()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memUsers struct{ s *memStore }

func (m memUsers) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.touch()
	if m.s.failFind != nil {
		return nil, m.s.failFind
	}
	for _, u := range m.s.users {
		if u.Email == email && u.DeletedAt == nil {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m memUsers) LockByID(ctx context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.touch()
	if _, ok := m.s.users[id]; !ok {
		return fmt.Errorf("user %s not found", id)
	}
	return nil
}

func (m memUsers) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string, updatedAt time.Time) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.touch()
	u, ok := m.s.users[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	u.PasswordHash = hash
	u.UpdatedAt = updatedAt
	m.s.users[id] = u
	return nil
}

type memCodes struct{ s *memStore }

func (m memCodes) Create(ctx context.Context, code *entity.ResetCode) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.touch()
	if m.s.failCreate != nil {
		return m.s.failCreate
	}
	m.s.codes[code.ID] = *code
	return nil
}

func (m memCodes) FindLatestForUpdate(ctx context.Context, userID uuid.UUID) (*entity.ResetCode, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.touch()
	var latest *entity.ResetCode
	for _, c := range m.s.codes {
		if c.UserID != userID {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			cp := c
			latest = &cp
		}
	}
	return latest, nil
}

func (m memCodes) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.touch()
	c, ok := m.s.codes[id]
	if !ok {
		return 0, fmt.Errorf("reset code %s not found", id)
	}
	c.Attempts++
	m.s.codes[id] = c
	return c.Attempts, nil
}

func (m memCodes) MarkUsed(ctx context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.touch()
	if m.s.failMarkUsed != nil {
		return m.s.failMarkUsed
	}
	c, ok := m.s.codes[id]
	if !ok || c.Used {
		return repository.ErrResetCodeSpent
	}
	c.Used = true
	m.s.codes[id] = c
	return nil
}

func (m memCodes) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.DeleteByUserExcept(ctx, userID, uuid.Nil)
}

func (m memCodes) DeleteByUserExcept(ctx context.Context, userID, keepID uuid.UUID) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.touch()
	var n int64
	for id, c := range m.s.codes {
		if c.UserID == userID && id != keepID {
			delete(m.s.codes, id)
			n++
		}
	}
	return n, nil
}

func (m memCodes) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.touch()
	var n int64
	for id, c := range m.s.codes {
		if c.ExpiresAt.Before(cutoff) {
			delete(m.s.codes, id)
			n++
		}
	}
	return n, nil
}

type memSessions struct{ s *memStore }

func (m memSessions) RevokeAllUserSessions(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.touch()
	n := m.s.sessions[userID]
	m.s.sessions[userID] = 0
	return int64(n), nil
}

func (m memSessions) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// recordingMailer captures every message and answers with err.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.ResetCodeMessage
	err  error
}

func (r *recordingMailer) SendResetCode(ctx context.Context, msg mailer.ResetCodeMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func (r *recordingMailer) lastCode() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return ""
	}
	return r.sent[len(r.sent)-1].Code
}

// codeSource yields the given values, in order, from crypto/rand.Int over
// the six-digit space.
func codeSource(values ...int) *bytes.Reader {
	var buf bytes.Buffer
	for _, v := range values {
		buf.Write([]byte{byte(v >> 16), byte(v >> 8), byte(v)})
	}
	return bytes.NewReader(buf.Bytes())
}

// fakeClock is a settable clock safe for concurrent reads.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errInjected = errors.New("injected failure")
