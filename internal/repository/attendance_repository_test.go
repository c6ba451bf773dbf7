package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxgym/boxgym-api/internal/models"
)

func TestAttendanceRepositoryUpsertSessionKeyed(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	sessionID := "sess1"
	created := time.Date(2025, 3, 9, 18, 0, 0, 0, time.UTC)
	mock.ExpectQuery("ON CONFLICT \\(student_id, training_session_id\\)").
		WithArgs(sqlmock.AnyArg(), "s1", &sessionID, "2025-03-10", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("a1", created))

	att := &models.Attendance{StudentID: "s1", TrainingSessionID: &sessionID, Date: "2025-03-10", Present: true}
	require.NoError(t, repo.Upsert(context.Background(), att))
	assert.Equal(t, "a1", att.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpsertDateKeyed(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("ON CONFLICT \\(student_id, date\\)").
		WithArgs(sqlmock.AnyArg(), "s1", nil, "2025-03-10", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("a2", time.Now()))

	att := &models.Attendance{StudentID: "s1", Date: "2025-03-10", Present: false}
	require.NoError(t, repo.Upsert(context.Background(), att))
	assert.Equal(t, "a2", att.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpsertKeepsExistingRowIdentity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	sessionID := "sess1"
	originalCreated := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("RETURNING id, created_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("existing-row", originalCreated))

	att := &models.Attendance{StudentID: "s1", TrainingSessionID: &sessionID, Date: "2025-03-10", Present: false}
	require.NoError(t, repo.Upsert(context.Background(), att))
	assert.Equal(t, "existing-row", att.ID)
	assert.Equal(t, originalCreated, att.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "training_session_id", "date", "present", "created_at", "updated_at", "student_name", "session_date", "session_time", "session_location"}).
		AddRow("a1", "s1", "sess1", "2025-03-10", true, time.Now(), time.Now(), "Joao Silva", "2025-03-10", "19:00", "Main Gym")
	mock.ExpectQuery("FROM attendance a").
		WithArgs("s1").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.AttendanceFilter{StudentID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, "Joao Silva", records[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCountPresentBySession(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("sess1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountPresentBySession(context.Background(), "sess1")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
