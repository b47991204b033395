package mappings

import (
	"database/sql"

	"github.com/helpcomp/statement-categorizer/categorize"
)

// SQLStore backs the mapping store with a category_mappings table:
//
//	owner_id TEXT, merchant_pattern TEXT, category TEXT, subcategory TEXT,
//	created_at TIMESTAMPTZ DEFAULT now(),
//	UNIQUE (owner_id, merchant_pattern)
//
// Selected at startup when a database DSN is configured; placeholders are
// PostgreSQL-style to match the pgx driver the binary registers.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) List(owner string) ([]categorize.Mapping, error) {
	rows, err := s.db.Query(
		`SELECT merchant_pattern, category, subcategory FROM category_mappings WHERE owner_id = $1 ORDER BY created_at`,
		owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []categorize.Mapping
	for rows.Next() {
		var (
			m           categorize.Mapping
			subcategory sql.NullString
		)
		if err := rows.Scan(&m.MerchantPattern, &m.Category, &subcategory); err != nil {
			return nil, err
		}
		if subcategory.Valid {
			m.Subcategory = subcategory.String
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) Upsert(owner string, mapping categorize.Mapping) error {
	result, err := s.db.Exec(
		`UPDATE category_mappings SET category = $1, subcategory = $2 WHERE owner_id = $3 AND merchant_pattern = $4`,
		mapping.Category, mapping.Subcategory, owner, mapping.MerchantPattern,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	_, err = s.db.Exec(
		`INSERT INTO category_mappings (owner_id, merchant_pattern, category, subcategory) VALUES ($1, $2, $3, $4)`,
		owner, mapping.MerchantPattern, mapping.Category, mapping.Subcategory,
	)
	return err
}
