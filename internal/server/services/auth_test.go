package services

import (
	"context"
	"encoding/hex"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dmitrijs2005/tradeauth/internal/common"
	"github.com/dmitrijs2005/tradeauth/internal/server/models"
)

const goodPassword = "Abcdef1!"

func TestRegister_Success(t *testing.T) {
	f := newFixture(t)

	res, err := f.auth.Register(context.Background(), RegisterRequest{
		Username:        "  alice ",
		Email:           "alice@example.com",
		Password:        goodPassword,
		ConfirmPassword: goodPassword,
		FullName:        "Alice Adams",
	})
	require.NoError(t, err)
	assert.NotZero(t, res.UserID)
	assert.Equal(t, StrengthStrong, res.Strength)

	var username, hash, role string
	var active bool
	require.NoError(t, f.db.QueryRow(
		`SELECT username, password_hash, role, is_active FROM users WHERE id = ?`, res.UserID,
	).Scan(&username, &hash, &role, &active))
	assert.Equal(t, "alice", username)
	assert.Equal(t, HashPassword(goodPassword), hash)
	assert.NotContains(t, hash, goodPassword)
	assert.Equal(t, "trader", role)
	assert.True(t, active)
	assert.Equal(t, 1, f.rec.get("register/success"))
}

func TestRegister_ValidationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     RegisterRequest
		wantMsg string
	}{
		{"missing username", RegisterRequest{Username: " ", Email: "a@example.com", Password: "x"}, "username, email and password are required"},
		{"missing password wins over bad email", RegisterRequest{Username: "a", Email: "bad"}, "username, email and password are required"},
		{"bad email wins over weak password", RegisterRequest{Username: "a", Email: "invalid-email", Password: "abc"}, "invalid email address"},
		{"short tld", RegisterRequest{Username: "a", Email: "a@b.c", Password: goodPassword}, "invalid email address"},
		{"weak password wins over mismatch", RegisterRequest{Username: "a", Email: "a@example.com", Password: "abc", ConfirmPassword: "zzz"}, "password does not meet requirements"},
		{"mismatch", RegisterRequest{Username: "a", Email: "a@example.com", Password: goodPassword, ConfirmPassword: "Abcdef1?"}, "passwords do not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, tt.req)
			se := requireKind(t, err, KindValidation)
			assert.Equal(t, tt.wantMsg, se.Message)
		})
	}

	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Zero(t, n, "validation failures must not touch storage")
}

func TestRegister_WeakPasswordCarriesProblems(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Register(context.Background(), RegisterRequest{
		Username: "a", Email: "a@example.com", Password: "abc",
	})
	se := requireKind(t, err, KindValidation)
	assert.Len(t, se.Problems, 4)
}

func TestRegister_Conflict(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com", goodPassword)

	_, err := f.auth.Register(context.Background(), RegisterRequest{
		Username: "alice", Email: "new@example.com", Password: goodPassword,
	})
	se := requireKind(t, err, KindConflict)
	assert.ErrorIs(t, se, common.ErrorConflict)

	_, err = f.auth.Register(context.Background(), RegisterRequest{
		Username: "bob", Email: "alice@example.com", Password: goodPassword,
	})
	requireKind(t, err, KindConflict)
	assert.Equal(t, 2, f.rec.get("register/conflict"))
}

func TestRegister_ConcurrentDuplicates(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	tests := []struct {
		name      string
		usernames [2]string
		emails    [2]string
	}{
		{
			name:      "same username",
			usernames: [2]string{"racer", "racer"},
			emails:    [2]string{"r1@example.com", "r2@example.com"},
		},
		{
			name:      "same email",
			usernames: [2]string{"racer1", "racer2"},
			emails:    [2]string{"racer@example.com", "racer@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			errs := make([]error, 2)
			var wg sync.WaitGroup
			for i := range errs {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = f.auth.Register(context.Background(), RegisterRequest{
						Username: tt.usernames[i],
						Email:    tt.emails[i],
						Password: goodPassword,
					})
				}(i)
			}
			wg.Wait()

			var ok, conflicts int
			for _, err := range errs {
				switch {
				case err == nil:
					ok++
				case KindOf(err) == KindConflict:
					conflicts++
				default:
					t.Fatalf("unexpected error: %v", err)
				}
			}
			assert.Equal(t, 1, ok)
			assert.Equal(t, 1, conflicts)

			var n int
			require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
			assert.Equal(t, 1, n)
		})
	}
}

func TestRegister_StorageError(t *testing.T) {
	rm := &fakeRepoManager{u: &fakeUsersRepo{Repository: failingCreateUsers{}}}
	f := newFixtureWith(t, nil, rm)

	_, err := f.auth.Register(context.Background(), RegisterRequest{
		Username: "a", Email: "a@example.com", Password: goodPassword,
	})
	se := requireKind(t, err, KindStorage)
	assert.NotContains(t, se.Message, "boom", "internal causes must not leak")
	assert.ErrorIs(t, err, errBoom)
}

func TestLogin_SuccessByUsernameAndEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "alice", "alice@example.com", goodPassword)

	for _, login := range []string{"alice", "alice@example.com"} {
		res, err := f.auth.Login(ctx, LoginRequest{Login: login, Password: goodPassword})
		require.NoError(t, err, login)
		assert.Equal(t, id, res.UserID)
		assert.Equal(t, "alice", res.Username)
		assert.Equal(t, models.RoleTrader, res.Role)
		assert.Len(t, res.SessionToken, 64)
		_, decErr := hex.DecodeString(res.SessionToken)
		assert.NoError(t, decErr)
		assert.True(t, res.ExpiresAt.Equal(f.clock.Now().Add(7*24*time.Hour)))
	}
}

func TestLogin_RecordsMetadataAndLastLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "alice", "alice@example.com", goodPassword)

	res, err := f.auth.Login(ctx, LoginRequest{Login: "alice", Password: goodPassword})
	require.NoError(t, err)

	var ip, agent string
	require.NoError(t, f.db.QueryRow(
		`SELECT ip_address, user_agent FROM sessions WHERE session_token = ?`, res.SessionToken,
	).Scan(&ip, &agent))
	assert.Equal(t, common.UnknownClientAddress, ip)
	assert.Equal(t, common.UnknownClientAgent, agent)

	var last time.Time
	require.NoError(t, f.db.QueryRow(`SELECT last_login FROM users WHERE id = ?`, id).Scan(&last))
	assert.True(t, last.Equal(f.clock.Now()))

	res, err = f.auth.Login(ctx, LoginRequest{Login: "alice", Password: goodPassword, ClientAddress: "10.0.0.1", ClientAgent: "curl/8"})
	require.NoError(t, err)
	require.NoError(t, f.db.QueryRow(
		`SELECT ip_address, user_agent FROM sessions WHERE session_token = ?`, res.SessionToken,
	).Scan(&ip, &agent))
	assert.Equal(t, "10.0.0.1", ip)
	assert.Equal(t, "curl/8", agent)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "demo", "demo@example.com", goodPassword)
	f.register(t, "idle", "idle@example.com", goodPassword)
	_, err := f.db.Exec(`UPDATE users SET is_active = 0 WHERE username = 'idle'`)
	require.NoError(t, err)

	wrongPassword, err := f.auth.Login(ctx, LoginRequest{Login: "demo@example.com", Password: "wrongpass"})
	require.Nil(t, wrongPassword)
	e1 := requireKind(t, err, KindAuth)

	_, err = f.auth.Login(ctx, LoginRequest{Login: "doesnotexist@x.com", Password: "anything"})
	e2 := requireKind(t, err, KindAuth)

	_, err = f.auth.Login(ctx, LoginRequest{Login: "idle", Password: goodPassword})
	e3 := requireKind(t, err, KindAuth)

	assert.Equal(t, "invalid credentials or inactive account", e1.Message)
	assert.Equal(t, e1.Message, e2.Message)
	assert.Equal(t, e1.Message, e3.Message)
	assert.Empty(t, e1.Problems)

	var last *time.Time
	require.NoError(t, f.db.QueryRow(`SELECT last_login FROM users WHERE id = ?`, id).Scan(&last))
	assert.Nil(t, last, "failed login must not touch last_login")
}

func TestLogin_EmptyInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Login(context.Background(), LoginRequest{Login: "  ", Password: "x"})
	requireKind(t, err, KindValidation)
	_, err = f.auth.Login(context.Background(), LoginRequest{Login: "alice"})
	requireKind(t, err, KindValidation)
}

func TestLogin_LastLoginFailureDoesNotAbort(t *testing.T) {
	sessions := &fakeSessionsRepo{}
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{
			findOut:  &models.User{ID: 9, Username: "alice", Email: "alice@example.com", Role: models.RoleTrader, IsActive: true},
			touchErr: errBoom,
		},
		s: sessions,
	}
	f := newFixtureWith(t, nil, rm)

	res, err := f.auth.Login(context.Background(), LoginRequest{Login: "alice", Password: goodPassword})
	require.NoError(t, err)
	assert.Equal(t, int64(9), res.UserID)
	require.Len(t, sessions.created, 1)
	assert.Equal(t, res.SessionToken, sessions.created[0].Token)
}

func TestLogin_StorageErrors(t *testing.T) {
	t.Run("lookup", func(t *testing.T) {
		rm := &fakeRepoManager{u: &fakeUsersRepo{findErr: errBoom}}
		f := newFixtureWith(t, nil, rm)

		_, err := f.auth.Login(context.Background(), LoginRequest{Login: "a", Password: "b"})
		requireKind(t, err, KindStorage)
	})
	t.Run("session insert", func(t *testing.T) {
		rm := &fakeRepoManager{
			u: &fakeUsersRepo{findOut: &models.User{ID: 1}},
			s: &fakeSessionsRepo{createErr: errBoom},
		}
		f := newFixtureWith(t, nil, rm)

		_, err := f.auth.Login(context.Background(), LoginRequest{Login: "a", Password: "b"})
		requireKind(t, err, KindStorage)
	})
}

func TestValidateSession_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.register(t, "alice", "alice@example.com", goodPassword)

	res, err := f.auth.Login(ctx, LoginRequest{Login: "alice", Password: goodPassword})
	require.NoError(t, err)

	info, err := f.auth.ValidateSession(ctx, res.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, id, info.UserID)
	assert.Equal(t, "alice@example.com", info.Email)

	f.clock.Advance(7*24*time.Hour - time.Second)
	_, err = f.auth.ValidateSession(ctx, res.SessionToken)
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	_, err = f.auth.ValidateSession(ctx, res.SessionToken)
	expired := requireKind(t, err, KindSessionInvalid)

	_, err = f.auth.ValidateSession(ctx, "no-such-token")
	missing := requireKind(t, err, KindSessionInvalid)
	assert.Equal(t, expired.Message, missing.Message)

	_, err = f.auth.ValidateSession(ctx, "")
	requireKind(t, err, KindSessionInvalid)
}

func TestValidateSession_StorageError(t *testing.T) {
	f := newFixtureWith(t, nil, &fakeRepoManager{s: &fakeSessionsRepo{}})

	_, err := f.auth.ValidateSession(context.Background(), "tok")
	requireKind(t, err, KindStorage)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "alice@example.com", goodPassword)

	first, err := f.auth.Login(ctx, LoginRequest{Login: "alice", Password: goodPassword})
	require.NoError(t, err)
	second, err := f.auth.Login(ctx, LoginRequest{Login: "alice", Password: goodPassword})
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionToken, second.SessionToken)

	f.auth.Logout(ctx, first.SessionToken)
	f.auth.Logout(ctx, first.SessionToken)
	f.auth.Logout(ctx, "")

	_, err = f.auth.ValidateSession(ctx, first.SessionToken)
	requireKind(t, err, KindSessionInvalid)
	_, err = f.auth.ValidateSession(ctx, second.SessionToken)
	require.NoError(t, err, "other sessions stay valid")
}

func TestLogout_SwallowsStorageError(t *testing.T) {
	f := newFixtureWith(t, nil, &fakeRepoManager{s: &fakeSessionsRepo{deleteErr: errBoom}})

	assert.NotPanics(t, func() { f.auth.Logout(context.Background(), "tok") })
	assert.Equal(t, 1, f.rec.get("logout/success"))
}
