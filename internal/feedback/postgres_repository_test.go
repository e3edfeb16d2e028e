package feedback_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breezyday/breezyday/internal/feedback"
)

func TestPostgresRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	entry := &feedback.Entry{ID: "fb_1", UserID: "usr_1", FeedbackDate: "2025-05-01", CreatedAt: time.Now()}

	mock.ExpectExec(`INSERT INTO feedback`).
		WithArgs("fb_1", "usr_1", pgxmock.AnyArg(), entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, feedback.NewPostgresRepository(mock).Create(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	payload, err := json.Marshal(feedback.Entry{
		FeedbackDate: "2025-05-01",
		AllergyFeel:  feedback.AllergySevere,
		OutfitTop:    "coat",
	})
	require.NoError(t, err)

	mock.ExpectQuery(`FROM feedback\s+WHERE user_id = \$1\s+ORDER BY created_at DESC\s+LIMIT \$2`).
		WithArgs("usr_1", 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "payload", "created_at"}).
			AddRow("fb_1", payload, created))

	entries, err := feedback.NewPostgresRepository(mock).ListByUser(context.Background(), "usr_1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fb_1", entries[0].ID)
	assert.Equal(t, "usr_1", entries[0].UserID)
	assert.Equal(t, created, entries[0].CreatedAt)
	assert.Equal(t, "coat", entries[0].OutfitTop)
	assert.Equal(t, feedback.AllergySevere, entries[0].AllergyFeel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListByUser_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM feedback`).
		WithArgs("usr_1", feedback.DefaultListCap).
		WillReturnError(assert.AnError)

	_, err = feedback.NewPostgresRepository(mock).ListByUser(context.Background(), "usr_1", 0)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
