package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxgym/boxgym-api/internal/middleware"
	"github.com/boxgym/boxgym-api/internal/models"
	"github.com/boxgym/boxgym-api/internal/service"
)

type attendanceRepoStub struct {
	upserted []*models.Attendance
}

func (s *attendanceRepoStub) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	return nil, 0, nil
}

func (s *attendanceRepoStub) FindBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	return nil, nil
}

func (s *attendanceRepoStub) CountPresentBySession(ctx context.Context, sessionID string) (int, error) {
	return 0, nil
}

func (s *attendanceRepoStub) Upsert(ctx context.Context, att *models.Attendance) error {
	s.upserted = append(s.upserted, att)
	return nil
}

type sessionFinderStub struct {
	session *models.TrainingSession
}

func (s *sessionFinderStub) FindByID(ctx context.Context, id string) (*models.TrainingSession, error) {
	if s.session == nil || s.session.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.session, nil
}

type studentFinderStub struct{}

func (s *studentFinderStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	return &models.Student{ID: id}, nil
}

func newMarkContext(t *testing.T, claims *models.JWTClaims, payload interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, "/attendance", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func TestAttendanceHandlerMark(t *testing.T) {
	repo := &attendanceRepoStub{}
	svc := service.NewAttendanceService(repo, &sessionFinderStub{session: &models.TrainingSession{
		ID:   "sess1",
		Date: time.Now().UTC().Add(24 * time.Hour).Format("2006-01-02"),
		Time: time.Now().UTC().Add(24 * time.Hour).Format("15:04"),
	}}, &studentFinderStub{}, nil, nil)
	handler := NewAttendanceHandler(svc)

	sessionID := "sess1"
	c, w := newMarkContext(t, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent, ProfileID: "stud1"}, service.MarkAttendanceRequest{
		TrainingSessionID: &sessionID,
		Present:           true,
	})

	handler.Mark(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, "stud1", repo.upserted[0].StudentID)
}

func TestAttendanceHandlerMarkWindowClosed(t *testing.T) {
	svc := service.NewAttendanceService(&attendanceRepoStub{}, &sessionFinderStub{session: &models.TrainingSession{
		ID:   "sess1",
		Date: time.Now().UTC().Format("2006-01-02"),
		Time: time.Now().UTC().Add(10 * time.Minute).Format("15:04"),
	}}, &studentFinderStub{}, nil, nil)
	handler := NewAttendanceHandler(svc)

	sessionID := "sess1"
	c, w := newMarkContext(t, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent, ProfileID: "stud1"}, service.MarkAttendanceRequest{
		TrainingSessionID: &sessionID,
		Present:           true,
	})

	handler.Mark(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAttendanceHandlerMarkRequiresAuth(t *testing.T) {
	svc := service.NewAttendanceService(&attendanceRepoStub{}, &sessionFinderStub{}, &studentFinderStub{}, nil, nil)
	handler := NewAttendanceHandler(svc)

	c, w := newMarkContext(t, nil, service.MarkAttendanceRequest{Present: true})

	handler.Mark(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
