package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxgym/boxgym-api/internal/models"
	apperrors "github.com/boxgym/boxgym-api/pkg/errors"
)

func TestUserRepositoryCreateStudentAccount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user := &models.User{Username: "maria", PasswordHash: "hash", Role: models.RoleStudent, Active: true}
	student := &models.Student{Name: "Maria Souza"}
	require.NoError(t, repo.CreateStudentAccount(context.Background(), user, student))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, user.ID, student.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateAccountUsernameRace(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})
	mock.ExpectRollback()

	user := &models.User{Username: "maria", PasswordHash: "hash", Role: models.RoleStudent, Active: true}
	err := repo.CreateStudentAccount(context.Background(), user, &models.Student{Name: "Maria Souza"})
	require.Error(t, err)

	var apiErr *apperrors.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apperrors.ErrConflict.Code, apiErr.Code)
	assert.Equal(t, apperrors.ErrConflict.Status, apiErr.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
