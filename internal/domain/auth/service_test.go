package auth

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"medledger/internal/core/apperror"
	"medledger/internal/core/id"
)

// --- fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	users map[string]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *User) error {
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	for _, u := range f.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", userID.String())
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, apperror.NewNotFound("user", email)
	}
	return u, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *User) error {
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context, filter UserFilter) ([]User, int, error) {
	var out []User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (f *fakeUserRepo) Exists(ctx context.Context, email string) (bool, error) {
	_, ok := f.users[email]
	return ok, nil
}

type fakeTokenRepo struct {
	tokens map[string]*RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]*RefreshToken{}}
}

func (f *fakeTokenRepo) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	f.tokens[token.TokenHash] = token
	return nil
}

func (f *fakeTokenRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	t, ok := f.tokens[tokenHash]
	if !ok {
		return nil, apperror.NewNotFound("refresh_token", tokenHash)
	}
	return t, nil
}

func (f *fakeTokenRepo) RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error {
	for _, t := range f.tokens {
		if t.ID == tokenID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (f *fakeTokenRepo) RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error {
	for _, t := range f.tokens {
		if t.UserID == userID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (f *fakeTokenRepo) CleanupExpiredTokens(ctx context.Context) (int, error) {
	return 0, nil
}

func (f *fakeTokenRepo) activeTokens() int {
	n := 0
	for _, t := range f.tokens {
		if t.IsValid() {
			n++
		}
	}
	return n
}

// --- tests ---

func newTestService(users *fakeUserRepo, tokens *fakeTokenRepo) *Service {
	jwtService := NewJWTService(DefaultJWTConfig("test-secret"))
	return NewService(users, tokens, fakeTxManager{}, jwtService, DefaultServiceConfig())
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to staff role", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := newTestService(users, newFakeTokenRepo())

		user, err := svc.Register(ctx, RegisterRequest{
			Email:    "staff@medledger.local",
			Password: "password123",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Role != RoleStaff {
			t.Errorf("role = %s, want %s", user.Role, RoleStaff)
		}
		if !user.IsActive {
			t.Error("new user should be active")
		}
		if user.PasswordHash == "password123" {
			t.Error("password must be stored hashed")
		}
	})

	t.Run("rejects short password", func(t *testing.T) {
		svc := newTestService(newFakeUserRepo(), newFakeTokenRepo())

		_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.c", Password: "short"})
		if !apperror.IsCode(err, apperror.CodeValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := newTestService(users, newFakeTokenRepo())

		req := RegisterRequest{Email: "dup@medledger.local", Password: "password123"}
		if _, err := svc.Register(ctx, req); err != nil {
			t.Fatalf("first register: %v", err)
		}
		_, err := svc.Register(ctx, req)
		if !apperror.IsCode(err, apperror.CodeConflict) {
			t.Errorf("expected conflict, got %v", err)
		}
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		svc := newTestService(newFakeUserRepo(), newFakeTokenRepo())

		_, err := svc.Register(ctx, RegisterRequest{
			Email:    "admin@medledger.local",
			Password: "password123",
			Role:     "admin",
		})
		if !apperror.IsCode(err, apperror.CodeValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func registerUser(t *testing.T, svc *Service, email, password string) *User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: password,
		Role:     RoleOwner,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success issues token pair", func(t *testing.T) {
		users := newFakeUserRepo()
		tokens := newFakeTokenRepo()
		svc := newTestService(users, tokens)
		registerUser(t, svc, "owner@medledger.local", "password123")

		pair, user, err := svc.Login(ctx, Credentials{Email: "owner@medledger.local", Password: "password123"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pair.AccessToken == "" || pair.RefreshToken == "" {
			t.Error("expected non-empty token pair")
		}
		if pair.TokenType != "Bearer" {
			t.Errorf("token type = %s, want Bearer", pair.TokenType)
		}
		if user.LastLoginAt == nil {
			t.Error("last login time not recorded")
		}
		if tokens.activeTokens() != 1 {
			t.Errorf("active refresh tokens = %d, want 1", tokens.activeTokens())
		}
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := newTestService(users, newFakeTokenRepo())
		registerUser(t, svc, "owner@medledger.local", "password123")

		_, _, err := svc.Login(ctx, Credentials{Email: "owner@medledger.local", Password: "wrong"})
		if !apperror.IsCode(err, apperror.CodeUnauthorized) {
			t.Errorf("expected unauthorized, got %v", err)
		}
	})

	t.Run("locks account after repeated failures", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := newTestService(users, newFakeTokenRepo())
		registerUser(t, svc, "owner@medledger.local", "password123")

		for i := 0; i < DefaultServiceConfig().MaxLoginAttempts; i++ {
			_, _, _ = svc.Login(ctx, Credentials{Email: "owner@medledger.local", Password: "wrong"})
		}

		// Even the correct password is refused while the lock holds.
		_, _, err := svc.Login(ctx, Credentials{Email: "owner@medledger.local", Password: "password123"})
		if !apperror.IsCode(err, apperror.CodeForbidden) {
			t.Errorf("expected forbidden while locked, got %v", err)
		}
	})

	t.Run("disabled account cannot login", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := newTestService(users, newFakeTokenRepo())
		user := registerUser(t, svc, "owner@medledger.local", "password123")
		user.IsActive = false

		_, _, err := svc.Login(ctx, Credentials{Email: "owner@medledger.local", Password: "password123"})
		if !apperror.IsCode(err, apperror.CodeForbidden) {
			t.Errorf("expected forbidden, got %v", err)
		}
	})

	t.Run("successful login resets failure counter", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := newTestService(users, newFakeTokenRepo())
		registerUser(t, svc, "owner@medledger.local", "password123")

		_, _, _ = svc.Login(ctx, Credentials{Email: "owner@medledger.local", Password: "wrong"})
		if _, _, err := svc.Login(ctx, Credentials{Email: "owner@medledger.local", Password: "password123"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if users.users["owner@medledger.local"].FailedLoginAttempts != 0 {
			t.Error("failure counter not reset")
		}
	})
}

func TestRefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("rotation revokes the old token", func(t *testing.T) {
		users := newFakeUserRepo()
		tokens := newFakeTokenRepo()
		svc := newTestService(users, tokens)
		registerUser(t, svc, "owner@medledger.local", "password123")

		pair, _, err := svc.Login(ctx, Credentials{Email: "owner@medledger.local", Password: "password123"})
		if err != nil {
			t.Fatalf("login: %v", err)
		}

		rotated, err := svc.RefreshToken(ctx, pair.RefreshToken)
		if err != nil {
			t.Fatalf("refresh: %v", err)
		}
		if rotated.RefreshToken == pair.RefreshToken {
			t.Error("refresh token was not rotated")
		}
		if tokens.activeTokens() != 1 {
			t.Errorf("active refresh tokens = %d, want 1", tokens.activeTokens())
		}

		_, err = svc.RefreshToken(ctx, pair.RefreshToken)
		if !apperror.IsCode(err, apperror.CodeUnauthorized) {
			t.Errorf("expected unauthorized for revoked token, got %v", err)
		}
	})

	t.Run("unknown token is unauthorized", func(t *testing.T) {
		svc := newTestService(newFakeUserRepo(), newFakeTokenRepo())

		_, err := svc.RefreshToken(ctx, "not-a-token")
		if !apperror.IsCode(err, apperror.CodeUnauthorized) {
			t.Errorf("expected unauthorized, got %v", err)
		}
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	svc := newTestService(users, tokens)
	user := registerUser(t, svc, "owner@medledger.local", "password123")

	if _, _, err := svc.Login(ctx, Credentials{Email: "owner@medledger.local", Password: "password123"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, user.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if tokens.activeTokens() != 0 {
		t.Errorf("active refresh tokens = %d, want 0", tokens.activeTokens())
	}
}

func TestUserLockout(t *testing.T) {
	u := NewUser("x@y.z", "hash", RoleStaff)

	for i := 0; i < 4; i++ {
		u.RecordFailedLogin(5, 15*time.Minute)
	}
	if u.IsLocked() {
		t.Error("locked before reaching the attempt limit")
	}

	u.RecordFailedLogin(5, 15*time.Minute)
	if !u.IsLocked() {
		t.Error("not locked after reaching the attempt limit")
	}

	u.RecordSuccessfulLogin()
	if u.IsLocked() || u.FailedLoginAttempts != 0 {
		t.Error("successful login did not clear the lock")
	}
}

// Hash verification sanity: the stored hash must validate against the
// original password and nothing else.
func TestPasswordHashing(t *testing.T) {
	svc := newTestService(newFakeUserRepo(), newFakeTokenRepo())
	user := registerUser(t, svc, "owner@medledger.local", "password123")

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")); err != nil {
		t.Errorf("hash does not match original password: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("other")); err == nil {
		t.Error("hash matched a different password")
	}
}
