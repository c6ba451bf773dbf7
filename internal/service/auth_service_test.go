package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/boxgym/boxgym-api/internal/models"
	appErrors "github.com/boxgym/boxgym-api/pkg/errors"
)

type fakeUserRepo struct {
	users         map[string]*models.User
	refreshTokens map[string]*models.RefreshToken
	auditLogs     []*models.AuditLog
	students      []*models.Student
	professors    []*models.Professor
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:         make(map[string]*models.User),
		refreshTokens: make(map[string]*models.RefreshToken),
	}
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := f.FindByUsername(ctx, username)
	return err == nil, nil
}

func (f *fakeUserRepo) CreateStudentAccount(ctx context.Context, user *models.User, student *models.Student) error {
	user.ID = "u-" + user.Username
	student.ID = "s-" + user.Username
	student.UserID = user.ID
	f.users[user.ID] = user
	f.students = append(f.students, student)
	return nil
}

func (f *fakeUserRepo) CreateProfessorAccount(ctx context.Context, user *models.User, professor *models.Professor) error {
	user.ID = "u-" + user.Username
	professor.ID = "p-" + user.Username
	professor.UserID = user.ID
	f.users[user.ID] = user
	f.professors = append(f.professors, professor)
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if user, ok := f.users[id]; ok {
		user.PasswordHash = passwordHash
	}
	return nil
}

func (f *fakeUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	for _, token := range f.refreshTokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

func (f *fakeUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	f.refreshTokens[token.Token] = token
	return nil
}

func (f *fakeUserRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if stored, ok := f.refreshTokens[token]; ok {
		return stored, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range f.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (f *fakeUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	f.auditLogs = append(f.auditLogs, log)
	return nil
}

type fakeStudentProfiles struct {
	repo *fakeUserRepo
}

func (f *fakeStudentProfiles) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	for _, student := range f.repo.students {
		if student.UserID == userID {
			return student, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeProfessorProfiles struct {
	repo *fakeUserRepo
}

func (f *fakeProfessorProfiles) FindByUserID(ctx context.Context, userID string) (*models.Professor, error) {
	for _, professor := range f.repo.professors {
		if professor.UserID == userID {
			return professor, nil
		}
	}
	return nil, sql.ErrNoRows
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, &fakeStudentProfiles{repo: repo}, &fakeProfessorProfiles{repo: repo}, nil, nil, AuthConfig{
		AccessTokenSecret:  "test_secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "boxgym-test",
	})
	return svc, repo
}

func seedStudentAccount(t *testing.T, repo *fakeUserRepo, username, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Username: username, PasswordHash: string(hash), Role: models.RoleStudent, Active: true}
	require.NoError(t, repo.CreateStudentAccount(context.Background(), user, &models.Student{Name: "Seed"}))
	return user
}

func TestLoginSuccess(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedStudentAccount(t, repo, "joao", "secret123")

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "joao", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
	assert.Equal(t, "s-joao", resp.User.ProfileID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "s-joao", claims.ProfileID)
	assert.False(t, claims.IsProfessor())
}

func TestLoginWrongPassword(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedStudentAccount(t, repo, "joao", "secret123")

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "joao", Password: "wrong-pass"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, repo := newAuthFixture(t)
	user := seedStudentAccount(t, repo, "joao", "secret123")
	user.Active = false

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "joao", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestRegisterStudent(t *testing.T) {
	svc, repo := newAuthFixture(t)

	student, err := svc.RegisterStudent(context.Background(), RegisterStudentRequest{
		Username:    "maria",
		Password:    "secret123",
		Name:        "Maria Souza",
		Email:       "maria@example.com",
		Phone:       "11999990000",
		BirthDate:   "2000-06-15",
		HeightCM:    165,
		WeightKG:    60,
		Objective:   "competition",
		PlanType:    "monthly",
		AthleteType: "athlete",
		PaymentDay:  10,
	})
	require.NoError(t, err)
	assert.True(t, student.Active)
	assert.Nil(t, student.LastPaymentDate)
	assert.Equal(t, models.PlanMonthly, student.PlanType)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionRegister, repo.auditLogs[0].Action)
}

func TestRegisterStudentMonthEndPaymentDay(t *testing.T) {
	svc, _ := newAuthFixture(t)

	student, err := svc.RegisterStudent(context.Background(), RegisterStudentRequest{
		Username:    "pedro",
		Password:    "secret123",
		Name:        "Pedro Lima",
		Email:       "pedro@example.com",
		Phone:       "11988887777",
		BirthDate:   "1995-01-31",
		HeightCM:    180,
		WeightKG:    82,
		Objective:   "fitness",
		PlanType:    "monthly",
		AthleteType: "athlete",
		PaymentDay:  31,
	})
	require.NoError(t, err)
	assert.Equal(t, 31, student.PaymentDay)
}

func TestRegisterStudentDuplicateUsername(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedStudentAccount(t, repo, "maria", "secret123")

	_, err := svc.RegisterStudent(context.Background(), RegisterStudentRequest{
		Username:    "maria",
		Password:    "secret123",
		Name:        "Maria Souza",
		Email:       "maria@example.com",
		Phone:       "11999990000",
		BirthDate:   "2000-06-15",
		HeightCM:    165,
		WeightKG:    60,
		Objective:   "competition",
		PlanType:    "monthly",
		AthleteType: "athlete",
		PaymentDay:  10,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRegisterStudentUnknownPlan(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.RegisterStudent(context.Background(), RegisterStudentRequest{
		Username:    "maria",
		Password:    "secret123",
		Name:        "Maria Souza",
		Email:       "maria@example.com",
		Phone:       "11999990000",
		BirthDate:   "2000-06-15",
		HeightCM:    165,
		WeightKG:    60,
		Objective:   "competition",
		PlanType:    "weekly",
		AthleteType: "athlete",
		PaymentDay:  10,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedStudentAccount(t, repo, "joao", "secret123")

	login, err := svc.Login(context.Background(), models.LoginRequest{Username: "joao", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedStudentAccount(t, repo, "joao", "secret123")

	login, err := svc.Login(context.Background(), models.LoginRequest{Username: "joao", Password: "secret123"})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), login.User.ID, models.ChangePasswordRequest{
		OldPassword: "secret123",
		NewPassword: "evenmoresecret",
	})
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "joao", Password: "evenmoresecret"})
	require.NoError(t, err)
}
