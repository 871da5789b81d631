package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/tradeauth/internal/dbx"
	"github.com/dmitrijs2005/tradeauth/internal/logging"
	"github.com/dmitrijs2005/tradeauth/internal/server/config"
	"github.com/dmitrijs2005/tradeauth/internal/server/models"
	"github.com/dmitrijs2005/tradeauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tradeauth/internal/server/repositories/repotest"
	"github.com/dmitrijs2005/tradeauth/internal/server/repositories/resets"
	"github.com/dmitrijs2005/tradeauth/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/tradeauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/tradeauth/internal/timex"
)

var errBoom = errors.New("boom")

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

type fixture struct {
	db     *sql.DB
	clock  *timex.FakeClock
	rec    *countingRecorder
	auth   *AuthService
	resets *ResetService
}

// newFixture wires both services to a migrated SQLite database and a fake
// clock starting at 2026-03-01 12:00 UTC.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := repotest.NewSQLite(t)
	rm, err := repomanager.NewSQLRepositoryManager(dbx.SQLite)
	require.NoError(t, err)
	return newFixtureWith(t, db, rm)
}

func newFixtureWith(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager) *fixture {
	t.Helper()
	f := &fixture{
		db:    db,
		clock: timex.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		rec:   &countingRecorder{counts: map[string]int{}},
	}
	cfg := testConfig()
	f.auth = NewAuthService(db, rm, cfg, logging.Discard(), f.rec)
	f.auth.now = f.clock.Now
	f.resets = NewResetService(db, rm, cfg, logging.Discard(), f.rec)
	f.resets.now = f.clock.Now
	return f
}

func (f *fixture) register(t *testing.T, username, email, password string) int64 {
	t.Helper()
	res, err := f.auth.Register(context.Background(), RegisterRequest{
		Username: username, Email: email, Password: password,
	})
	require.NoError(t, err)
	return res.UserID
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordAuth(op, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[op+"/"+outcome]++
}

func (r *countingRecorder) get(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key]
}

func requireKind(t *testing.T, err error, want Kind) *Error {
	t.Helper()
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	require.Equal(t, want, se.Kind, "message: %s", se.Message)
	return se
}

// --- fakes for storage failure paths ---

type fakeUsersRepo struct {
	users.Repository
	findOut  *models.User
	findErr  error
	touchErr error
}

func (f *fakeUsersRepo) FindForLogin(context.Context, string, string) (*models.User, error) {
	return f.findOut, f.findErr
}

func (f *fakeUsersRepo) FindByEmail(context.Context, string) (*models.User, error) {
	return f.findOut, f.findErr
}

func (f *fakeUsersRepo) TouchLastLogin(context.Context, int64, time.Time) error {
	return f.touchErr
}

type fakeSessionsRepo struct {
	sessions.Repository
	created   []*models.Session
	createErr error
	deleteErr error
}

func (f *fakeSessionsRepo) Create(_ context.Context, s *models.Session) (*models.Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, s)
	return s, nil
}

func (f *fakeSessionsRepo) Validate(context.Context, string, time.Time) (*models.SessionInfo, error) {
	return nil, errBoom
}

func (f *fakeSessionsRepo) Delete(context.Context, string) error {
	return f.deleteErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	s *fakeSessionsRepo
	r resets.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository        { return m.s }
func (m *fakeRepoManager) Resets(dbx.DBTX) resets.Repository            { return m.r }

type failingCreateUsers struct {
	users.Repository
}

func (failingCreateUsers) Create(context.Context, *models.User) (*models.User, error) {
	return nil, errBoom
}
