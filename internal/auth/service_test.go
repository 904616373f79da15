package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/Just-andreew/aquagen-farm/pkg/auth"
	"github.com/Just-andreew/aquagen-farm/pkg/auth/session"
	"github.com/Just-andreew/aquagen-farm/pkg/config"
	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	pkgerrors "github.com/Just-andreew/aquagen-farm/pkg/errors"
	"github.com/Just-andreew/aquagen-farm/pkg/security"
)

type stubUsersRepo struct {
	byID    map[uuid.UUID]*models.User
	byEmail map[string]*models.User
	updates []map[string]any
}

func newStubUsersRepo(users ...*models.User) *stubUsersRepo {
	repo := &stubUsersRepo{byID: map[uuid.UUID]*models.User{}, byEmail: map[string]*models.User{}}
	for _, user := range users {
		repo.byID[user.ID] = user
		repo.byEmail[user.Email] = user
	}
	return repo
}

func (r *stubUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return user, nil
}

func (r *stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUsersRepo) UpdateColumns(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	r.updates = append(r.updates, columns)
	return nil
}

type stubSessions struct {
	generated []string
	revoked   []string
	rotateErr error
}

func (s *stubSessions) Generate(ctx context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	next := session.NewAccessID()
	return next, "refresh-" + next, nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "unit-test-secret",
		Issuer:                 "aquagen-test",
		ExpirationMinutes:      60,
		RefreshTokenTTLMinutes: 120,
	}
}

func newTestService(t *testing.T, repo *stubUsersRepo, sessions *stubSessions) Service {
	t.Helper()
	svc, err := NewService(repo, sessions, testJWTConfig(), config.PasswordConfig{}, nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func seedUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Name:         "Luis Ortega",
		Email:        email,
		PasswordHash: hash,
		Role:         enums.UserRoleTechnician,
		IsActive:     true,
	}
}

func TestRegisterIssuesSession(t *testing.T) {
	repo := newStubUsersRepo()
	sessions := &stubSessions{}
	svc := newTestService(t, repo, sessions)

	result, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ana Rivera",
		Email:    "Ana@Aquagen.Farm",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.User.Email != "ana@aquagen.farm" {
		t.Fatalf("expected lowercased email, got %q", result.User.Email)
	}
	if result.User.Role != enums.UserRoleTechnician {
		t.Fatalf("expected technician default, got %s", result.User.Role)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatal("expected both tokens issued")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != result.User.ID {
		t.Fatal("token bound to wrong user")
	}
	if len(sessions.generated) != 1 || sessions.generated[0] != claims.ID {
		t.Fatal("refresh session not keyed by token jti")
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := newTestService(t, newStubUsersRepo(), &stubSessions{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Eve",
		Email:    "eve@aquagen.farm",
		Password: "long enough",
		Role:     "admin",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t, newStubUsersRepo(), &stubSessions{})

	cases := []RegisterInput{
		{Email: "a@b.c", Password: "long enough"},
		{Name: "x", Email: "not-an-email", Password: "long enough"},
		{Name: "x", Email: "a@b.c", Password: "short"},
		{Name: "x", Email: "a@b.c", Password: "long enough", Role: "janitor"},
	}
	for i, input := range cases {
		_, err := svc.Register(context.Background(), input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected VALIDATION_ERROR, got %v", i, err)
		}
	}
}

func TestLoginVerifiesPasswordAndTracksLogin(t *testing.T) {
	user := seedUser(t, "luis@aquagen.farm", "tank-side-2026")
	repo := newStubUsersRepo(user)
	svc := newTestService(t, repo, &stubSessions{})

	result, err := svc.Login(context.Background(), LoginInput{Email: "Luis@Aquagen.Farm", Password: "tank-side-2026"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.User.ID != user.ID {
		t.Fatal("wrong user")
	}
	if len(repo.updates) != 1 {
		t.Fatalf("expected last_login_at update, got %d", len(repo.updates))
	}
	if _, ok := repo.updates[0]["last_login_at"]; !ok {
		t.Fatal("expected last_login_at column")
	}
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	user := seedUser(t, "luis@aquagen.farm", "tank-side-2026")
	svc := newTestService(t, newStubUsersRepo(user), &stubSessions{})

	cases := []LoginInput{
		{Email: "luis@aquagen.farm", Password: "wrong"},
		{Email: "nobody@aquagen.farm", Password: "tank-side-2026"},
	}
	for i, input := range cases {
		_, err := svc.Login(context.Background(), input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("case %d: expected UNAUTHORIZED, got %v", i, err)
		}
	}
}

func TestLoginDeactivatedAccountIsForbidden(t *testing.T) {
	user := seedUser(t, "luis@aquagen.farm", "tank-side-2026")
	user.IsActive = false
	svc := newTestService(t, newStubUsersRepo(user), &stubSessions{})

	_, err := svc.Login(context.Background(), LoginInput{Email: user.Email, Password: "tank-side-2026"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	user := seedUser(t, "luis@aquagen.farm", "tank-side-2026")
	repo := newStubUsersRepo(user)
	sessions := &stubSessions{}
	svc := newTestService(t, repo, sessions)

	opened, err := svc.Login(context.Background(), LoginInput{Email: user.Email, Password: "tank-side-2026"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), opened.Tokens.AccessToken, opened.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.Tokens.AccessToken == opened.Tokens.AccessToken {
		t.Fatal("expected a new access token")
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), refreshed.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatal("rotated token bound to wrong user")
	}
}

func TestRefreshInvalidTokenIsUnauthorized(t *testing.T) {
	user := seedUser(t, "luis@aquagen.farm", "tank-side-2026")
	sessions := &stubSessions{rotateErr: session.ErrInvalidRefreshToken}
	svc := newTestService(t, newStubUsersRepo(user), sessions)

	opened, err := svc.Login(context.Background(), LoginInput{Email: user.Email, Password: "tank-side-2026"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), opened.Tokens.AccessToken, "stolen")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	user := seedUser(t, "luis@aquagen.farm", "tank-side-2026")
	sessions := &stubSessions{}
	svc := newTestService(t, newStubUsersRepo(user), sessions)

	opened, err := svc.Login(context.Background(), LoginInput{Email: user.Email, Password: "tank-side-2026"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background(), opened.Tokens.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 {
		t.Fatalf("expected one revocation, got %d", len(sessions.revoked))
	}
}
