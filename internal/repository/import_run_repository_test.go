package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"backoffice-service/internal/models"
	"backoffice-service/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestImportRunRepository_Lifecycle(t *testing.T) {
	repo := NewImportRunRepository(testutil.NewSQLiteDB(t))
	ctx := context.Background()

	run := &models.ImportRun{FilePath: "importfile.json", Status: models.ImportRunRunning}
	require.NoError(t, repo.Create(ctx, run))
	require.NotEqual(t, uuid.Nil, run.ID)

	finished := time.Now()
	run.Status = models.ImportRunCompletedWithErrors
	run.CreatedCount = 3
	run.FailedCount = 1
	run.Errors = datatypes.JSON(`["boom"]`)
	run.FinishedAt = &finished
	require.NoError(t, repo.Update(ctx, run))

	got, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ImportRunCompletedWithErrors, got.Status)
	assert.Equal(t, 3, got.CreatedCount)
	assert.JSONEq(t, `["boom"]`, string(got.Errors))
	assert.NotNil(t, got.FinishedAt)
}

func TestImportRunRepository_GetByIDNotFound(t *testing.T) {
	repo := NewImportRunRepository(testutil.NewSQLiteDB(t))

	_, err := repo.GetByID(context.Background(), uuid.New())

	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestImportRunRepository_ListNewestFirst(t *testing.T) {
	repo := NewImportRunRepository(testutil.NewSQLiteDB(t))
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.ImportRun{
			FilePath:  "f.json",
			Status:    models.ImportRunCompleted,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Message:   string(rune('a' + i)),
		}))
	}

	runs, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].Message)
	assert.Equal(t, "b", runs[1].Message)
}
