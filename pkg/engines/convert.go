package engines

import (
	"database/sql"
	"time"

	"github.com/TFMV/janus/pkg/errors"
	"github.com/TFMV/janus/pkg/models"
)

// CollectRows drains a result set into a QueryResult, normalizing driver
// values as it goes. The rows are closed by the caller.
func CollectRows(rows *sql.Rows) (*models.QueryResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeQueryFailed, "failed to read result columns")
	}

	result := &models.QueryResult{
		Columns: cols,
		Rows:    make([][]interface{}, 0),
	}

	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, errors.CodeQueryFailed, "failed to scan result row")
		}

		row := make([]interface{}, len(cols))
		for i, v := range values {
			row[i] = NormalizeValue(v)
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeQueryFailed, "error iterating result rows")
	}

	return result, nil
}

// NormalizeValue maps driver-specific values onto the small set of types a
// QueryResult carries. Byte slices become strings, sql.Null* wrappers are
// unwrapped, and invalid nullables come back as nil.
func NormalizeValue(value interface{}) interface{} {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return string(v)
	case sql.NullBool:
		if !v.Valid {
			return nil
		}
		return v.Bool
	case sql.NullByte:
		if !v.Valid {
			return nil
		}
		return v.Byte
	case sql.NullFloat64:
		if !v.Valid {
			return nil
		}
		return v.Float64
	case sql.NullInt16:
		if !v.Valid {
			return nil
		}
		return v.Int16
	case sql.NullInt32:
		if !v.Valid {
			return nil
		}
		return v.Int32
	case sql.NullInt64:
		if !v.Valid {
			return nil
		}
		return v.Int64
	case sql.NullString:
		if !v.Valid {
			return nil
		}
		return v.String
	case sql.NullTime:
		if !v.Valid {
			return nil
		}
		return v.Time
	case time.Time:
		return v
	}

	return value
}

// RowsAffectedResult shapes a mutation outcome as a single-row result so
// callers see a uniform QueryResult regardless of statement kind.
func RowsAffectedResult(count int64) *models.QueryResult {
	return &models.QueryResult{
		Columns: []string{models.RowsAffectedColumn},
		Rows:    [][]interface{}{{count}},
	}
}
