package mappings

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/helpcomp/statement-categorizer/categorize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLStoreList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"merchant_pattern", "category", "subcategory"}).
		AddRow("tesco", "Essential", "Groceries").
		AddRow("acme", "Transfer", nil)
	mock.ExpectQuery("SELECT merchant_pattern, category, subcategory FROM category_mappings").
		WithArgs("alice").
		WillReturnRows(rows)

	store := NewSQLStore(db)
	mapped, err := store.List("alice")
	require.NoError(t, err)

	require.Len(t, mapped, 2)
	assert.Equal(t, categorize.Mapping{
		MerchantPattern: "tesco", Category: "Essential", Subcategory: "Groceries",
	}, mapped[0])
	// NULL subcategory comes back empty, not "null"
	assert.Equal(t, "", mapped[1].Subcategory)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreUpsertUpdatesExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE category_mappings SET").
		WithArgs("Business", "Office/Equipment", "alice", "tesco").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewSQLStore(db)
	err = store.Upsert("alice", categorize.Mapping{
		MerchantPattern: "tesco", Category: "Business", Subcategory: "Office/Equipment",
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreUpsertInsertsWhenMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE category_mappings SET").
		WithArgs("Essential", "Groceries", "alice", "ocado").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO category_mappings").
		WithArgs("alice", "ocado", "Essential", "Groceries").
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewSQLStore(db)
	err = store.Upsert("alice", categorize.Mapping{
		MerchantPattern: "ocado", Category: "Essential", Subcategory: "Groceries",
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
