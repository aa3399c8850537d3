package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/resultsportal/internal/app/models"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
)

// UserStore keeps users in memory with a case-insensitive email index
type UserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
}

// NewUserStore creates an empty store
func NewUserStore() *UserStore {
	return &UserStore{users: map[int64]models.User{}}
}

func (s *UserStore) emailTaken(email string, excludeID int64) bool {
	for id, u := range s.users {
		if id != excludeID && strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return true
		}
	}
	return false
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	if s.emailTaken(user.Email, 0) {
		return apperrors.ErrEmailAlreadyExists
	}
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			cp := u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *UserStore) EmailExists(_ context.Context, email string, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emailTaken(email, excludeID), nil
}

func (s *UserStore) UpdateProfile(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.Email = strings.ToLower(user.Email)
	if s.emailTaken(user.Email, user.ID) {
		return apperrors.ErrEmailAlreadyExists
	}
	cur.Name, cur.Email = user.Name, user.Email
	cur.AdmissionYear, cur.Program = user.AdmissionYear, user.Program
	cur.UpdatedAt = time.Now()
	user.UpdatedAt = cur.UpdatedAt
	s.users[user.ID] = cur
	return nil
}

func (s *UserStore) update(id int64, fn func(u *models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	fn(&u)
	s.users[id] = u
	return nil
}

func (s *UserStore) UpdatePassword(_ context.Context, userID int64, hash string, changedAt time.Time) error {
	return s.update(userID, func(u *models.User) {
		u.Password = hash
		u.PasswordChangedAt = &changedAt
	})
}

func (s *UserStore) UpdateLastLogin(_ context.Context, userID int64, at time.Time) error {
	return s.update(userID, func(u *models.User) { u.LastLoginAt = &at })
}

// SetActive flips the active flag, there is no API for it
func (s *UserStore) SetActive(userID int64, active bool) error {
	return s.update(userID, func(u *models.User) { u.IsActive = active })
}

func (s *UserStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(s.users, userID)
	return nil
}

func (s *UserStore) List(_ context.Context, offset, limit uint64) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*models.User, 0, len(ids))
	for i, id := range ids {
		if limit > 0 && (uint64(i) < offset || uint64(i) >= offset+limit) {
			continue
		}
		u := s.users[id]
		out = append(out, &u)
	}
	return out, nil
}

func (s *UserStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

// SessionStore keeps sessions in memory
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]models.Session
}

// NewSessionStore creates an empty store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[uuid.UUID]models.Session{}}
}

func (s *SessionStore) Create(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	for _, cur := range s.sessions {
		if cur.TokenHash == sess.TokenHash {
			return apperrors.ErrTokenInvalid
		}
	}
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *SessionStore) GetByTokenHash(_ context.Context, hash string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.sessions {
		if cur.TokenHash == hash {
			cp := cur
			return &cp, nil
		}
	}
	return nil, apperrors.ErrSessionNotFound
}

func (s *SessionStore) Touch(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sessions[id]
	if !ok {
		return apperrors.ErrSessionNotFound
	}
	cur.LastUsedAt = at
	s.sessions[id] = cur
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return apperrors.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) DeleteForUser(_ context.Context, userID int64, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sessions[id]
	if !ok || cur.UserID != userID {
		return apperrors.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) DeleteAllForUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cur := range s.sessions {
		if cur.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

func (s *SessionStore) ListForUser(_ context.Context, userID int64) ([]*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Session, 0)
	for _, cur := range s.sessions {
		if cur.UserID == userID {
			cp := cur
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUsedAt.After(out[j].LastUsedAt) })
	return out, nil
}

// Len returns the number of stored sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
