package accounts

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]User
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]User{}}
}

func (r *testRepo) Create(ctx context.Context, u User) error {
	for _, got := range r.byID {
		if got.Username == u.Username {
			return ErrDuplicate
		}
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) Update(ctx context.Context, u User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, errRepoNotFound
	}
	return u, nil
}

func (r *testRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	for _, u := range r.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, errRepoNotFound
}

func (r *testRepo) IncrementFailedAttempts(ctx context.Context, id string) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, errRepoNotFound
	}
	u.FailedAttempts++
	r.byID[id] = u
	return u, nil
}

// -------------------------
// Tests
// -------------------------

func registerTestUser(t *testing.T, svc *Service) User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Username: "mmartinez",
		Email:    "mmartinez@example.com",
		FullName: "María Martínez",
		Password: "correcta-123",
		Role:     RoleAdministrativo,
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	return u
}

func TestService_Authenticate_CountsFailedAttempts(t *testing.T) {
	svc := NewService(newTestRepo())
	registerTestUser(t, svc)

	for i := 1; i <= 3; i++ {
		_, err := svc.Authenticate(context.Background(), "mmartinez", "incorrecta")
		var credErr *CredentialsError
		if !errors.As(err, &credErr) {
			t.Fatalf("attempt %d: expected CredentialsError, got %v", i, err)
		}
		if credErr.Attempts != i {
			t.Fatalf("attempt %d: expected counter %d, got %d", i, i, credErr.Attempts)
		}
	}
}

func TestService_Authenticate_LocksAtMaxAttempts(t *testing.T) {
	svc := NewService(newTestRepo())
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	u := registerTestUser(t, svc)

	for i := 1; i <= MaxFailedAttempts; i++ {
		_, err := svc.Authenticate(context.Background(), "mmartinez", "incorrecta")
		var credErr *CredentialsError
		if !errors.As(err, &credErr) {
			t.Fatalf("attempt %d: expected CredentialsError, got %v", i, err)
		}
	}

	got, err := svc.GetByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.LockedUntil == nil {
		t.Fatalf("expected LockedUntil set after %d attempts", MaxFailedAttempts)
	}
	if want := now.Add(LockDuration); !got.LockedUntil.Equal(want) {
		t.Fatalf("expected lock until %v, got %v", want, *got.LockedUntil)
	}

	// Con la cuenta bloqueada ni siquiera la password correcta entra.
	if _, err := svc.Authenticate(context.Background(), "mmartinez", "correcta-123"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked while locked, got %v", err)
	}
}

func TestService_Authenticate_LockExpiresByEvaluation(t *testing.T) {
	svc := NewService(newTestRepo())
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	u := registerTestUser(t, svc)

	for i := 0; i < MaxFailedAttempts; i++ {
		_, _ = svc.Authenticate(context.Background(), "mmartinez", "incorrecta")
	}

	// Un segundo antes del vencimiento sigue bloqueada.
	now = now.Add(LockDuration - time.Second)
	if _, err := svc.Authenticate(context.Background(), "mmartinez", "correcta-123"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked just before expiry, got %v", err)
	}

	// Al vencer, el bloqueo expira sin que nadie lo limpie.
	now = now.Add(time.Second)
	got, err := svc.Authenticate(context.Background(), "mmartinez", "correcta-123")
	if err != nil {
		t.Fatalf("expected login after expiry, got %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("unexpected user: %s", got.ID)
	}
	if got.FailedAttempts != 0 || got.LockedUntil != nil {
		t.Fatalf("expected counter reset after successful login, got attempts=%d locked=%v",
			got.FailedAttempts, got.LockedUntil)
	}
}

func TestService_Authenticate_SuccessResetsCounter(t *testing.T) {
	svc := NewService(newTestRepo())
	u := registerTestUser(t, svc)

	for i := 0; i < 3; i++ {
		_, _ = svc.Authenticate(context.Background(), "mmartinez", "incorrecta")
	}

	if _, err := svc.Authenticate(context.Background(), "mmartinez", "correcta-123"); err != nil {
		t.Fatalf("expected login, got %v", err)
	}

	got, _ := svc.GetByID(context.Background(), u.ID)
	if got.FailedAttempts != 0 {
		t.Fatalf("expected counter 0 after success, got %d", got.FailedAttempts)
	}

	// La racha arranca de cero: el siguiente fallo cuenta 1.
	_, err := svc.Authenticate(context.Background(), "mmartinez", "incorrecta")
	var credErr *CredentialsError
	if !errors.As(err, &credErr) || credErr.Attempts != 1 {
		t.Fatalf("expected attempt 1 after reset, got %v", err)
	}
}

func TestService_Unlock_ClearsLockAndCounter(t *testing.T) {
	svc := NewService(newTestRepo())
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	u := registerTestUser(t, svc)

	for i := 0; i < MaxFailedAttempts; i++ {
		_, _ = svc.Authenticate(context.Background(), "mmartinez", "incorrecta")
	}

	unlocked, err := svc.Unlock(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Unlock error: %v", err)
	}
	if unlocked.FailedAttempts != 0 || unlocked.LockedUntil != nil {
		t.Fatalf("expected clean state after unlock, got attempts=%d locked=%v",
			unlocked.FailedAttempts, unlocked.LockedUntil)
	}

	if _, err := svc.Authenticate(context.Background(), "mmartinez", "correcta-123"); err != nil {
		t.Fatalf("expected login right after unlock, got %v", err)
	}
}

func TestService_Authenticate_InactiveAccount(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	u := registerTestUser(t, svc)

	u.Active = false
	_ = repo.Update(context.Background(), u)

	if _, err := svc.Authenticate(context.Background(), "mmartinez", "correcta-123"); !errors.Is(err, ErrInactive) {
		t.Fatalf("expected ErrInactive, got %v", err)
	}
}

func TestService_Authenticate_UnknownUserDoesNotLeak(t *testing.T) {
	svc := NewService(newTestRepo())

	_, err := svc.Authenticate(context.Background(), "nadie", "cualquiera")
	var credErr *CredentialsError
	if !errors.As(err, &credErr) {
		t.Fatalf("expected CredentialsError for unknown user, got %v", err)
	}
}

func TestRole_Capabilities(t *testing.T) {
	cases := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleAdmin, CapManageUsers, true},
		{RoleAdmin, CapRecordClinical, true},
		{RoleVeterinario, CapRecordClinical, true},
		{RoleVeterinario, CapManageUsers, false},
		{RoleAdministrativo, CapManageAppointments, true},
		{RoleAdministrativo, CapRecordClinical, false},
		{RolePropietario, CapSelfService, true},
		{RolePropietario, CapManageAppointments, false},
	}
	for _, tc := range cases {
		if got := tc.role.Can(tc.cap); got != tc.want {
			t.Fatalf("%s.Can(%s) = %v, want %v", tc.role, tc.cap, got, tc.want)
		}
	}
}
