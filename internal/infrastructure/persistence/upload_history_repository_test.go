package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/orderhub/backend/internal/domain/ingest"
	"github.com/orderhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockHistoryRepository(t *testing.T) (*GormUploadHistoryRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormUploadHistoryRepository(gormDB), mock, mockDB
}

func historyRows(h *ingest.History) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_id", "file_name", "file_size", "encoding", "source",
		"total_rows", "registered", "skipped", "status", "abort_reason",
		"started_at", "completed_at", "created_at", "updated_at",
	}).AddRow(
		h.ID, h.OwnerID, h.FileName, h.FileSize, h.Encoding, h.Source,
		h.TotalRows, h.Registered, h.Skipped, string(h.Status), h.AbortReason,
		h.StartedAt, h.CompletedAt, h.CreatedAt, h.UpdatedAt,
	)
}

func TestGormUploadHistoryRepository_Save(t *testing.T) {
	t.Run("saves a new history record", func(t *testing.T) {
		repo, mock, mockDB := newMockHistoryRepository(t)
		defer mockDB.Close()

		h, err := ingest.NewHistory(uuid.New(), "orders.csv", 2048)
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "upload_histories"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err = repo.Save(context.Background(), h)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormUploadHistoryRepository_FindByID(t *testing.T) {
	t.Run("finds history within owner scope", func(t *testing.T) {
		repo, mock, mockDB := newMockHistoryRepository(t)
		defer mockDB.Close()

		ownerID := uuid.New()
		h, err := ingest.NewHistory(ownerID, "orders.csv", 2048)
		require.NoError(t, err)
		require.NoError(t, h.Start("Shift_JIS", "rakuten"))
		require.NoError(t, h.Complete(10, 8, 2))

		mock.ExpectQuery(`SELECT \* FROM "upload_histories" WHERE owner_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(ownerID, h.ID, 1).
			WillReturnRows(historyRows(h))

		found, err := repo.FindByID(context.Background(), ownerID, h.ID)

		assert.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, ingest.UploadStatusCompleted, found.Status)
		assert.Equal(t, "Shift_JIS", found.Encoding)
		assert.Equal(t, 8, found.Registered)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for other owner's record", func(t *testing.T) {
		repo, mock, mockDB := newMockHistoryRepository(t)
		defer mockDB.Close()

		ownerID := uuid.New()
		id := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "upload_histories" WHERE owner_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(ownerID, id, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		found, err := repo.FindByID(context.Background(), ownerID, id)

		assert.Nil(t, found)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormUploadHistoryRepository_FindAll(t *testing.T) {
	t.Run("returns newest first with total", func(t *testing.T) {
		repo, mock, mockDB := newMockHistoryRepository(t)
		defer mockDB.Close()

		ownerID := uuid.New()
		h, err := ingest.NewHistory(ownerID, "orders.csv", 2048)
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "upload_histories" WHERE owner_id = \$1`).
			WithArgs(ownerID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery(`SELECT \* FROM "upload_histories" WHERE owner_id = \$1 ORDER BY created_at DESC LIMIT .*`).
			WillReturnRows(historyRows(h))

		histories, total, err := repo.FindAll(context.Background(), ownerID, 1, 20)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, histories, 1)
		assert.Equal(t, "orders.csv", histories[0].FileName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
