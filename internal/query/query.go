// Package query provides composable GORM scopes for the list endpoints:
// search, column-keyed sorting, priority records, soft-delete filtering,
// and page slicing.
package query

import (
	"fmt"
	"strings"

	"github.com/assetdesk/assetdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope is a GORM query combinator.
type Scope = func(*gorm.DB) *gorm.DB

// NotDeleted excludes soft-deleted rows.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// NotDeletedIn is the qualified form of NotDeleted for joined queries where
// the bare column would be ambiguous.
func NotDeletedIn(table string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".is_deleted = ?", false)
	}
}

// Search matches the term case-insensitively against any of the given
// column expressions. A blank term leaves the query untouched.
func Search(term string, columns ...string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		trimmed := strings.TrimSpace(term)
		if trimmed == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + strings.ToLower(trimmed) + "%"
		conds := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, column := range columns {
			conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE ?", column))
			args = append(args, pattern)
		}
		return db.Where(strings.Join(conds, " OR "), args...)
	}
}

// Sort maps client-facing sort keys to column expressions. Unknown keys fall
// back to the default key rather than erroring, so stale clients keep working.
type Sort struct {
	Columns map[string]string
	Default string
}

// Scope orders by the column registered for key. Any direction other than
// the literal "desc" sorts ascending; "DESC", "Desc", and padded variants
// all ascend.
func (s Sort) Scope(key, direction string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		column, ok := s.Columns[key]
		if !ok {
			column = s.Columns[s.Default]
		}
		if column == "" {
			return db
		}
		if direction == "desc" {
			return db.Order(column + " DESC")
		}
		return db.Order(column + " ASC")
	}
}

// Prioritize floats the row whose column matches id to the top of the result
// set, ahead of whatever ordering follows. A nil id is a no-op. The id is a
// parsed UUID so rendering it inline is safe.
func Prioritize(column string, id uuid.UUID) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if id == uuid.Nil {
			return db
		}
		return db.Order(fmt.Sprintf("CASE WHEN %s = '%s' THEN 0 ELSE 1 END", column, id))
	}
}

// Paginate applies the fixed page size with a clamped page number.
func Paginate(page int) Scope {
	return func(db *gorm.DB) *gorm.DB {
		normalized := pagination.NormalizePage(page)
		return db.Offset(pagination.Offset(normalized)).Limit(pagination.PageSize)
	}
}
