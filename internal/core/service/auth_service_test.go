package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-api/internal/core/domain"
	"github.com/99minutos/accounts-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     map[string]*domain.User
	nextID    int
	findErr   error
	createErr error
	deleteErr error
	creates   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.creates++
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	u := cloneUser(user)
	u.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[u.ID] = u
	return cloneUser(u), nil
}

func (r *stubUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *stubUserRepo) DeleteByID(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) DeleteByUsername(_ context.Context, username string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for id, u := range r.users {
		if u.Username == username {
			delete(r.users, id)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

// stubHasher prefixes the plaintext; good enough to observe hashing happened.
type stubHasher struct {
	err error
}

func (h stubHasher) Hash(plaintext string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + plaintext, nil
}

func (h stubHasher) Verify(plaintext, hash string) bool {
	return hash == "hashed:"+plaintext
}

type stubTokens struct {
	err error
}

func (s stubTokens) Issue(user *domain.User) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-for-" + user.ID, nil
}

func (s stubTokens) Verify(token string) (*domain.Principal, error) {
	id, ok := strings.CutPrefix(token, "token-for-")
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return &domain.Principal{UserID: id}, nil
}

type stubIdempotency struct {
	entries   map[string]*domain.User
	lookupErr error
	saveErr   error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{entries: make(map[string]*domain.User)}
}

func (s *stubIdempotency) Lookup(_ context.Context, key string) (*domain.User, bool, error) {
	if s.lookupErr != nil {
		return nil, false, s.lookupErr
	}
	u, ok := s.entries[key]
	return cloneUser(u), ok, nil
}

func (s *stubIdempotency) Save(_ context.Context, key string, user *domain.User) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.entries[key] = cloneUser(user)
	return nil
}

func (s *stubIdempotency) Forget(_ context.Context, key string) error {
	delete(s.entries, key)
	return nil
}

func newAuthSvc(repo *stubUserRepo, idem ports.IdempotencyStore) *AuthService {
	return NewAuthService(repo, stubHasher{}, stubTokens{}, idem, zerolog.Nop())
}

func registerInput(email, role string) ports.RegisterInput {
	return ports.RegisterInput{Username: "alice", Email: email, Password: "pass123", Role: role}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, nil)

	for _, role := range []string{domain.RoleCreator, domain.RoleCustomer} {
		res, err := svc.Register(context.Background(), registerInput(role+"@example.com", role))
		if err != nil {
			t.Fatalf("Register(%s): %v", role, err)
		}
		if res.Replayed {
			t.Fatalf("unexpected replay")
		}
		if res.User.Role != role || res.User.ID == "" {
			t.Fatalf("unexpected user: %+v", res.User)
		}
		stored := repo.users[res.User.ID]
		if stored.PasswordHash != "hashed:pass123" {
			t.Fatalf("expected stored password to be hashed, got %q", stored.PasswordHash)
		}
	}
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	for _, role := range []string{"", "admin", "Customer", "guest"} {
		repo := newStubUserRepo()
		svc := newAuthSvc(repo, nil)

		_, err := svc.Register(context.Background(), registerInput("x@example.com", role))
		if !errors.Is(err, domain.ErrInvalidRole) {
			t.Fatalf("role %q: expected ErrInvalidRole, got %v", role, err)
		}
		if repo.creates != 0 || len(repo.users) != 0 {
			t.Fatalf("role %q: expected nothing persisted", role)
		}
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, nil)

	if _, err := svc.Register(context.Background(), registerInput("a@x.com", domain.RoleCustomer)); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), registerInput("a@x.com", domain.RoleCreator))
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected exactly one stored user, got %d", len(repo.users))
	}
}

func TestAuthService_Register_DuplicateKeyFromStore(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = domain.ErrDuplicateEmail
	svc := newAuthSvc(repo, nil)

	_, err := svc.Register(context.Background(), registerInput("a@x.com", domain.RoleCustomer))
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_Register_InternalFailures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name  string
		setup func(r *stubUserRepo) *AuthService
	}{
		{"lookup fails", func(r *stubUserRepo) *AuthService {
			r.findErr = boom
			return newAuthSvc(r, nil)
		}},
		{"hash fails", func(r *stubUserRepo) *AuthService {
			return NewAuthService(r, stubHasher{err: boom}, stubTokens{}, nil, zerolog.Nop())
		}},
		{"insert fails", func(r *stubUserRepo) *AuthService {
			r.createErr = boom
			return newAuthSvc(r, nil)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := tt.setup(newStubUserRepo())
			_, err := svc.Register(context.Background(), registerInput("a@x.com", domain.RoleCustomer))
			if !errors.Is(err, boom) {
				t.Fatalf("expected wrapped boom, got %v", err)
			}
		})
	}
}

func TestAuthService_Register_IdempotentReplay(t *testing.T) {
	repo := newStubUserRepo()
	idem := newStubIdempotency()
	svc := newAuthSvc(repo, idem)

	in := registerInput("a@x.com", domain.RoleCustomer)
	in.IdempotencyKey = "req-1"

	first, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	second, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("replayed register: %v", err)
	}
	if !second.Replayed || second.User.ID != first.User.ID {
		t.Fatalf("expected replay of %s, got %+v", first.User.ID, second)
	}
	if repo.creates != 1 {
		t.Fatalf("expected one insert, got %d", repo.creates)
	}

	// A different key for the same email is a genuine duplicate.
	in.IdempotencyKey = "req-2"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_Register_IdempotencyKeyReusedWithOtherPayload(t *testing.T) {
	repo := newStubUserRepo()
	idem := newStubIdempotency()
	svc := newAuthSvc(repo, idem)

	first := registerInput("a@x.com", domain.RoleCustomer)
	first.IdempotencyKey = "k"
	if _, err := svc.Register(context.Background(), first); err != nil {
		t.Fatalf("first register: %v", err)
	}

	tests := []struct {
		name string
		in   ports.RegisterInput
	}{
		{"other email and role", ports.RegisterInput{Username: "alice", Email: "b@x.com", Password: "pass123", Role: domain.RoleCreator}},
		{"other username", ports.RegisterInput{Username: "mallory", Email: "a@x.com", Password: "pass123", Role: domain.RoleCustomer}},
		{"other role", ports.RegisterInput{Username: "alice", Email: "a@x.com", Password: "pass123", Role: domain.RoleCreator}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			in.IdempotencyKey = "k"
			res, err := svc.Register(context.Background(), in)
			if !errors.Is(err, domain.ErrIdempotencyKeyReused) {
				t.Fatalf("expected ErrIdempotencyKeyReused, got %v (result %+v)", err, res)
			}
		})
	}

	if repo.creates != 1 {
		t.Fatalf("expected one insert, got %d", repo.creates)
	}
	if _, err := repo.FindByEmail(context.Background(), "b@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("b@x.com must not be stored, got %v", err)
	}
}

func TestAuthService_Register_ReplayAfterDeletionRegistersAgain(t *testing.T) {
	repo := newStubUserRepo()
	idem := newStubIdempotency()
	svc := newAuthSvc(repo, idem)

	in := registerInput("a@x.com", domain.RoleCustomer)
	in.IdempotencyKey = "k"
	first, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := repo.DeleteByID(context.Background(), first.User.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	second, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("register after delete: %v", err)
	}
	if second.Replayed {
		t.Fatalf("a deleted account must not be replayed")
	}
	if second.User.ID == first.User.ID {
		t.Fatalf("expected a new record, got the deleted id %s", first.User.ID)
	}
	if _, err := repo.FindByID(context.Background(), second.User.ID); err != nil {
		t.Fatalf("new record not stored: %v", err)
	}
	if got := idem.entries["k"]; got == nil || got.ID != second.User.ID {
		t.Fatalf("expected the key to point at the new record, got %+v", got)
	}
}

func TestAuthService_Register_IdempotencyStoreFailuresIgnored(t *testing.T) {
	repo := newStubUserRepo()
	idem := newStubIdempotency()
	idem.lookupErr = errors.New("redis down")
	idem.saveErr = errors.New("redis down")
	svc := newAuthSvc(repo, idem)

	in := registerInput("a@x.com", domain.RoleCustomer)
	in.IdempotencyKey = "req-1"
	res, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("expected registration to proceed, got %v", err)
	}
	if res.Replayed || len(repo.users) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestAuthService_Register_NoKeyNoReplay(t *testing.T) {
	repo := newStubUserRepo()
	idem := newStubIdempotency()
	svc := newAuthSvc(repo, idem)

	if _, err := svc.Register(context.Background(), registerInput("a@x.com", domain.RoleCustomer)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(idem.entries) != 0 {
		t.Fatalf("expected nothing stored without a key")
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, nil)

	res, _ := svc.Register(context.Background(), registerInput("carol@example.com", domain.RoleCreator))

	token, user, err := svc.Login(context.Background(), "carol@example.com", "pass123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token != "token-for-"+res.User.ID {
		t.Fatalf("unexpected token %q", token)
	}
	if user.ID != res.User.ID || user.Email != "carol@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAuthService_Login_IndistinguishableFailures(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, nil)
	_, _ = svc.Register(context.Background(), registerInput("dave@example.com", domain.RoleCustomer))

	_, _, wrongPassword := svc.Login(context.Background(), "dave@example.com", "badpass")
	_, _, unknownEmail := svc.Login(context.Background(), "ghost@example.com", "pass123")

	if !errors.Is(wrongPassword, domain.ErrInvalidCredentials) || !errors.Is(unknownEmail, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", wrongPassword, unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("failures must be indistinguishable: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestAuthService_Login_InternalFailures(t *testing.T) {
	boom := errors.New("boom")

	repo := newStubUserRepo()
	repo.findErr = boom
	if _, _, err := newAuthSvc(repo, nil).Login(context.Background(), "a@x.com", "p"); !errors.Is(err, boom) {
		t.Fatalf("expected lookup failure, got %v", err)
	}

	repo = newStubUserRepo()
	_, _ = newAuthSvc(repo, nil).Register(context.Background(), registerInput("a@x.com", domain.RoleCustomer))
	svc := NewAuthService(repo, stubHasher{}, stubTokens{err: boom}, nil, zerolog.Nop())
	if _, _, err := svc.Login(context.Background(), "a@x.com", "pass123"); !errors.Is(err, boom) {
		t.Fatalf("expected signing failure, got %v", err)
	}
}
