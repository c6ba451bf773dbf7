package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxgym/boxgym-api/internal/models"
	appErrors "github.com/boxgym/boxgym-api/pkg/errors"
)

func TestCanConfirmAt(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("25 hours ahead is allowed", func(t *testing.T) {
		assert.True(t, CanConfirmAt("2025-03-11", "13:00", now))
	})

	t.Run("30 minutes ahead is too late", func(t *testing.T) {
		assert.False(t, CanConfirmAt("2025-03-10", "12:30", now))
	})

	t.Run("exactly one hour ahead is allowed", func(t *testing.T) {
		assert.True(t, CanConfirmAt("2025-03-10", "13:00", now))
	})

	t.Run("five days ahead is too early", func(t *testing.T) {
		assert.False(t, CanConfirmAt("2025-03-15", "12:00", now))
	})

	t.Run("exactly three days ahead is allowed", func(t *testing.T) {
		assert.True(t, CanConfirmAt("2025-03-13", "12:00", now))
	})

	t.Run("past session is rejected", func(t *testing.T) {
		assert.False(t, CanConfirmAt("2025-03-09", "12:00", now))
	})

	t.Run("malformed date can never be confirmed", func(t *testing.T) {
		assert.False(t, CanConfirmAt("soon", "12:00", now))
		assert.False(t, CanConfirmAt("2025-03-11", "noonish", now))
	})
}

type fakeAttendanceRepo struct {
	upserted []*models.Attendance
	records  []models.AttendanceRecord
	total    int
	present  int
}

func (f *fakeAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	if filter.StudentID != "" {
		var filtered []models.AttendanceRecord
		for _, record := range f.records {
			if record.StudentID == filter.StudentID {
				filtered = append(filtered, record)
			}
		}
		return filtered, len(filtered), nil
	}
	return f.records, f.total, nil
}

func (f *fakeAttendanceRepo) FindBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	return f.records, nil
}

func (f *fakeAttendanceRepo) CountPresentBySession(ctx context.Context, sessionID string) (int, error) {
	return f.present, nil
}

func (f *fakeAttendanceRepo) Upsert(ctx context.Context, att *models.Attendance) error {
	f.upserted = append(f.upserted, att)
	return nil
}

type fakeSessionFinder struct {
	session *models.TrainingSession
}

func (f *fakeSessionFinder) FindByID(ctx context.Context, id string) (*models.TrainingSession, error) {
	if f.session == nil || f.session.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.session, nil
}

type fakeStudentFinder struct {
	student *models.Student
}

func (f *fakeStudentFinder) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if f.student == nil || f.student.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.student, nil
}

func newAttendanceFixture(sessionDate, sessionTime string) (*AttendanceService, *fakeAttendanceRepo) {
	repo := &fakeAttendanceRepo{}
	svc := NewAttendanceService(
		repo,
		&fakeSessionFinder{session: &models.TrainingSession{ID: "sess1", Date: sessionDate, Time: sessionTime, Location: "Main Gym"}},
		&fakeStudentFinder{student: &models.Student{ID: "stud1", Name: "Joao"}},
		nil, nil,
	)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "u1", Role: models.RoleStudent, ProfileID: "stud1"}
}

func professorClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "u2", Role: models.RoleProfessor, ProfileID: "prof1"}
}

func TestMarkStudentWithinWindow(t *testing.T) {
	svc, repo := newAttendanceFixture("2025-03-11", "13:00")
	sessionID := "sess1"

	att, err := svc.Mark(context.Background(), studentClaims(), MarkAttendanceRequest{TrainingSessionID: &sessionID, Present: true})
	require.NoError(t, err)
	assert.Equal(t, "stud1", att.StudentID)
	assert.Equal(t, "2025-03-11", att.Date)
	assert.True(t, att.Present)
	require.Len(t, repo.upserted, 1)
}

func TestMarkStudentWindowClosed(t *testing.T) {
	svc, _ := newAttendanceFixture("2025-03-10", "12:30")
	sessionID := "sess1"

	_, err := svc.Mark(context.Background(), studentClaims(), MarkAttendanceRequest{TrainingSessionID: &sessionID, Present: true})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrWindowClosed.Code, appErr.Code)
}

func TestMarkStudentIgnoresForeignStudentID(t *testing.T) {
	svc, repo := newAttendanceFixture("2025-03-11", "13:00")
	sessionID := "sess1"

	_, err := svc.Mark(context.Background(), studentClaims(), MarkAttendanceRequest{TrainingSessionID: &sessionID, StudentID: "someone-else", Present: true})
	require.NoError(t, err)
	assert.Equal(t, "stud1", repo.upserted[0].StudentID)
}

func TestMarkProfessorBypassesWindow(t *testing.T) {
	svc, repo := newAttendanceFixture("2025-03-10", "12:30")
	sessionID := "sess1"

	_, err := svc.Mark(context.Background(), professorClaims(), MarkAttendanceRequest{TrainingSessionID: &sessionID, StudentID: "stud1", Present: true})
	require.NoError(t, err)
	require.Len(t, repo.upserted, 1)
}

func TestMarkProfessorLegacyDateRecord(t *testing.T) {
	svc, repo := newAttendanceFixture("2025-03-11", "13:00")

	att, err := svc.Mark(context.Background(), professorClaims(), MarkAttendanceRequest{StudentID: "stud1", Date: "2025-03-01", Present: false})
	require.NoError(t, err)
	assert.Nil(t, att.TrainingSessionID)
	assert.Equal(t, "2025-03-01", att.Date)
	require.Len(t, repo.upserted, 1)
}

func TestMarkStudentRequiresSession(t *testing.T) {
	svc, _ := newAttendanceFixture("2025-03-11", "13:00")

	_, err := svc.Mark(context.Background(), studentClaims(), MarkAttendanceRequest{Date: "2025-03-01", Present: true})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestMarkUnknownSession(t *testing.T) {
	svc, _ := newAttendanceFixture("2025-03-11", "13:00")
	sessionID := "ghost"

	_, err := svc.Mark(context.Background(), studentClaims(), MarkAttendanceRequest{TrainingSessionID: &sessionID, Present: true})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestListScopesStudentToOwnRecords(t *testing.T) {
	repo := &fakeAttendanceRepo{records: []models.AttendanceRecord{
		{Attendance: models.Attendance{ID: "a1", StudentID: "stud1"}},
		{Attendance: models.Attendance{ID: "a2", StudentID: "stud2"}},
	}, total: 2}
	svc := NewAttendanceService(repo, &fakeSessionFinder{}, &fakeStudentFinder{}, nil, nil)

	records, _, err := svc.List(context.Background(), studentClaims(), models.AttendanceFilter{StudentID: "stud2"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "stud1", records[0].StudentID)
}

func TestBySessionReturnsRosterWithPresentCount(t *testing.T) {
	repo := &fakeAttendanceRepo{records: []models.AttendanceRecord{
		{Attendance: models.Attendance{ID: "a1", StudentID: "stud1", Present: true}},
		{Attendance: models.Attendance{ID: "a2", StudentID: "stud2", Present: false}},
	}, present: 1}
	svc := NewAttendanceService(repo, &fakeSessionFinder{session: &models.TrainingSession{ID: "sess1"}}, &fakeStudentFinder{}, nil, nil)

	records, present, err := svc.BySession(context.Background(), "sess1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, present)
}

func TestBySessionUnknownSession(t *testing.T) {
	svc := NewAttendanceService(&fakeAttendanceRepo{}, &fakeSessionFinder{}, &fakeStudentFinder{}, nil, nil)

	_, _, err := svc.BySession(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
