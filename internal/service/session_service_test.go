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

type fakeSessionRepo struct {
	sessions map[string]*models.TrainingSession
	listed   []models.TrainingSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.TrainingSession)}
}

func (f *fakeSessionRepo) ListFrom(ctx context.Context, fromDate string) ([]models.TrainingSession, error) {
	return f.listed, nil
}

func (f *fakeSessionRepo) FindByID(ctx context.Context, id string) (*models.TrainingSession, error) {
	if session, ok := f.sessions[id]; ok {
		return session, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *models.TrainingSession) error {
	session.ID = "sess-new"
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepo) Update(ctx context.Context, session *models.TrainingSession) error {
	if _, ok := f.sessions[session.ID]; !ok {
		return sql.ErrNoRows
	}
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.sessions[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.sessions, id)
	return nil
}

func TestSessionCreate(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := NewSessionService(repo, nil, nil, nil, time.Minute)

	session, err := svc.Create(context.Background(), SessionRequest{
		Date:     "2025-03-12",
		Time:     "19:00",
		Location: "Main Gym",
	}, "prof1")
	require.NoError(t, err)
	assert.Equal(t, "prof1", session.CreatedBy)
	assert.Contains(t, repo.sessions, session.ID)
}

func TestSessionCreateRejectsMalformedDate(t *testing.T) {
	svc := NewSessionService(newFakeSessionRepo(), nil, nil, nil, time.Minute)

	cases := []SessionRequest{
		{Date: "12/03/2025", Time: "19:00", Location: "Main Gym"},
		{Date: "2025-03-12", Time: "7pm", Location: "Main Gym"},
		{Date: "2025-03-12", Time: "19:00"},
	}
	for _, req := range cases {
		_, err := svc.Create(context.Background(), req, "prof1")
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestSessionUpdateMissing(t *testing.T) {
	svc := NewSessionService(newFakeSessionRepo(), nil, nil, nil, time.Minute)

	_, err := svc.Update(context.Background(), "ghost", SessionRequest{
		Date:     "2025-03-12",
		Time:     "19:00",
		Location: "Main Gym",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSessionDelete(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.sessions["sess1"] = &models.TrainingSession{ID: "sess1"}
	svc := NewSessionService(repo, nil, nil, nil, time.Minute)

	require.NoError(t, svc.Delete(context.Background(), "sess1"))
	assert.NotContains(t, repo.sessions, "sess1")

	err := svc.Delete(context.Background(), "sess1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
