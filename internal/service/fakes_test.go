package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/chatloop/chat-backend/internal/domain"
	"github.com/chatloop/chat-backend/internal/repository"
)

// In-memory repository fakes mirroring the SQL implementations'
// contracts: sentinel errors, uniqueness per user, association loading.

type fakeStore struct {
	mu         sync.Mutex
	seq        int
	users      map[string]*domain.User
	roles      map[string]*domain.Role
	activities map[string]*domain.Activity
	keys       map[string]*domain.AuthTokenKeys
	tokens     map[string]*domain.VerificationToken
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[string]*domain.User),
		roles:      make(map[string]*domain.Role),
		activities: make(map[string]*domain.Activity),
		keys:       make(map[string]*domain.AuthTokenKeys),
		tokens:     make(map[string]*domain.VerificationToken),
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
		if existing.UserName == user.UserName {
			return repository.ErrDuplicateUserName
		}
	}
	if user.ID == "" {
		user.ID = r.store.nextID("user")
	}
	stored := *user
	r.store.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) load(user *domain.User, include repository.Include) *domain.User {
	out := *user
	out.Role, out.Activity = nil, nil
	if include.Role {
		if role, ok := r.store.roles[user.ID]; ok {
			copied := *role
			out.Role = &copied
		}
	}
	if include.Activity {
		if activity, ok := r.store.activities[user.ID]; ok {
			copied := *activity
			out.Activity = &copied
		}
	}
	return &out
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string, include repository.Include) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.load(user, include), nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string, include repository.Include) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if user.Email == email {
			return r.load(user, include), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByUserName(_ context.Context, userName string, include repository.Include) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if user.UserName == userName {
			return r.load(user, include), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) UpdateUserName(_ context.Context, userID, userName string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, user := range r.store.users {
		if user.UserName == userName && id != userID {
			return repository.ErrDuplicateUserName
		}
	}
	user, ok := r.store.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.UserName = userName
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.users, userID)
	return nil
}

type fakeRoleRepo struct{ store *fakeStore }

func (r *fakeRoleRepo) Create(_ context.Context, role *domain.Role) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if role.ID == "" {
		role.ID = r.store.nextID("role")
	}
	stored := *role
	r.store.roles[role.UserID] = &stored
	return nil
}

func (r *fakeRoleRepo) GetByUserID(_ context.Context, userID string) (*domain.Role, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	role, ok := r.store.roles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *role
	return &copied, nil
}

type fakeActivityRepo struct{ store *fakeStore }

func (r *fakeActivityRepo) Create(_ context.Context, activity *domain.Activity) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored := *activity
	r.store.activities[activity.UserID] = &stored
	return nil
}

func (r *fakeActivityRepo) Update(_ context.Context, activity *domain.Activity) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.activities[activity.UserID]; !ok {
		return repository.ErrNotFound
	}
	stored := *activity
	r.store.activities[activity.UserID] = &stored
	return nil
}

func (r *fakeActivityRepo) GetByUserID(_ context.Context, userID string) (*domain.Activity, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	activity, ok := r.store.activities[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *activity
	return &copied, nil
}

type fakeKeysRepo struct{ store *fakeStore }

func keysMatch(stored *domain.AuthTokenKeys, match domain.AuthTokenKeys) bool {
	if match.AccessTokenKey != "" && stored.AccessTokenKey != match.AccessTokenKey {
		return false
	}
	if match.RefreshTokenKey != "" && stored.RefreshTokenKey != match.RefreshTokenKey {
		return false
	}
	return true
}

func (r *fakeKeysRepo) Create(_ context.Context, keys *domain.AuthTokenKeys) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.keys[keys.UserID]; ok {
		return repository.ErrDuplicateKeys
	}
	stored := *keys
	r.store.keys[keys.UserID] = &stored
	return nil
}

func (r *fakeKeysRepo) Find(_ context.Context, match domain.AuthTokenKeys) (*domain.AuthTokenKeys, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.keys[match.UserID]
	if !ok || !keysMatch(stored, match) {
		return nil, repository.ErrNotFound
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeKeysRepo) DeleteByUserID(_ context.Context, userID string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.keys[userID]; !ok {
		return 0, nil
	}
	delete(r.store.keys, userID)
	return 1, nil
}

func (r *fakeKeysRepo) Replace(_ context.Context, match domain.AuthTokenKeys, next *domain.AuthTokenKeys) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.keys[match.UserID]
	if !ok || !keysMatch(stored, match) {
		return repository.ErrNotFound
	}
	copied := *next
	r.store.keys[next.UserID] = &copied
	return nil
}

type fakeVerificationRepo struct{ store *fakeStore }

func (r *fakeVerificationRepo) Create(_ context.Context, token *domain.VerificationToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.tokens {
		if existing.Token == token.Token || existing.UserID == token.UserID {
			return repository.ErrDuplicateToken
		}
	}
	if token.ID == "" {
		token.ID = r.store.nextID("vtoken")
	}
	stored := *token
	r.store.tokens[token.ID] = &stored
	return nil
}

func (r *fakeVerificationRepo) GetByToken(_ context.Context, token string) (*domain.VerificationToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, stored := range r.store.tokens {
		if stored.Token == token {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeVerificationRepo) GetByID(_ context.Context, id string) (*domain.VerificationToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.tokens[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeVerificationRepo) MarkVerified(_ context.Context, token string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, stored := range r.store.tokens {
		if stored.Token == token {
			stored.Verified = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeVerificationRepo) DeleteByUserID(_ context.Context, userID string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var deleted int64
	for id, stored := range r.store.tokens {
		if stored.UserID == userID {
			delete(r.store.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}
