package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
)

// encodeList stores a string slice in a TEXT column as a JSON array.
func encodeList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeList reads a JSON array column; malformed content yields an empty list.
func decodeList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return []string{}
	}
	return values
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// notInClause builds " AND column NOT IN (?, ...)" with its arguments, or an
// empty clause when ids is empty.
func notInClause(column string, ids []int64) (string, []interface{}) {
	if len(ids) == 0 {
		return "", nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return fmt.Sprintf(" AND %s NOT IN (%s)", column, database.Placeholders(len(ids))), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
