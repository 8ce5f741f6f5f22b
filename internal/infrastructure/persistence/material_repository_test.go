package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/emstack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockMaterialRepository creates a GormMaterialRepository with a mocked SQL connection
func newMockMaterialRepository(t *testing.T) (*GormMaterialRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormMaterialRepository(gormDB), mock, mockDB
}

func TestGormMaterialRepository_FindByID(t *testing.T) {
	t.Run("finds existing material", func(t *testing.T) {
		repo, mock, mockDB := newMockMaterialRepository(t)
		defer mockDB.Close()

		materialID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "part_number", "description", "unit_of_measure", "costing_method", "version"}).
			AddRow(materialID, "RES-0402-10K", "10k 0402 resistor", "EA", "STANDARD", 1)

		mock.ExpectQuery(`SELECT \* FROM "materials" WHERE id = \$1 AND "materials"\."deleted_at" IS NULL ORDER BY .* LIMIT .*`).
			WithArgs(materialID, 1).
			WillReturnRows(rows)

		material, err := repo.FindByID(context.Background(), materialID)

		assert.NoError(t, err)
		assert.NotNil(t, material)
		assert.Equal(t, materialID, material.ID)
		assert.Equal(t, "RES-0402-10K", material.PartNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for a missing material", func(t *testing.T) {
		repo, mock, mockDB := newMockMaterialRepository(t)
		defer mockDB.Close()

		materialID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "materials" WHERE id = \$1 AND "materials"\."deleted_at" IS NULL ORDER BY .* LIMIT .*`).
			WithArgs(materialID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		material, err := repo.FindByID(context.Background(), materialID)

		assert.Error(t, err)
		assert.Nil(t, material)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormMaterialRepository_FindByPartNumber(t *testing.T) {
	t.Run("finds by part number", func(t *testing.T) {
		repo, mock, mockDB := newMockMaterialRepository(t)
		defer mockDB.Close()

		materialID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "part_number", "unit_of_measure", "version"}).
			AddRow(materialID, "CAP-0603-100N", "EA", 1)

		mock.ExpectQuery(`SELECT \* FROM "materials" WHERE part_number = \$1 AND "materials"\."deleted_at" IS NULL ORDER BY .* LIMIT .*`).
			WithArgs("CAP-0603-100N", 1).
			WillReturnRows(rows)

		material, err := repo.FindByPartNumber(context.Background(), "CAP-0603-100N")

		assert.NoError(t, err)
		assert.Equal(t, materialID, material.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormMaterialRepository_Delete(t *testing.T) {
	t.Run("soft deletes an existing material", func(t *testing.T) {
		repo, mock, mockDB := newMockMaterialRepository(t)
		defer mockDB.Close()

		materialID := uuid.New()

		mock.ExpectExec(`UPDATE "materials" SET "deleted_at"=\$1 WHERE id = \$2 AND "materials"\."deleted_at" IS NULL`).
			WithArgs(sqlmock.AnyArg(), materialID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), materialID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when nothing was deleted", func(t *testing.T) {
		repo, mock, mockDB := newMockMaterialRepository(t)
		defer mockDB.Close()

		materialID := uuid.New()

		mock.ExpectExec(`UPDATE "materials" SET "deleted_at"=\$1 WHERE id = \$2 AND "materials"\."deleted_at" IS NULL`).
			WithArgs(sqlmock.AnyArg(), materialID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), materialID)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
