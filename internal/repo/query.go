package repo

import (
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/storerate-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsFold narrows q to rows whose column contains term, ignoring case.
// An empty term leaves q untouched. column must be a trusted identifier.
func ContainsFold(q *gorm.DB, column, term string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" {
		return q
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	return q.Where("LOWER("+column+") LIKE ? ESCAPE '\\'", pattern)
}

// Sort is a validated ordering: Field is the public name, Column the SQL one.
type Sort struct {
	Field  string
	Column string
	Desc   bool
}

// Apply orders q by the sort column with id as a stable tie-breaker.
func (s Sort) Apply(q *gorm.DB) *gorm.DB {
	if s.Column == "" {
		return q
	}
	dir := " ASC"
	if s.Desc {
		dir = " DESC"
	}
	q = q.Order(s.Column + dir)
	if s.Column != "id" {
		q = q.Order("id ASC")
	}
	return q
}

// ParseSort resolves a requested sort field and order against an allow-list
// of public field name to column. Empty inputs fall back to defaultField and
// ascending order; anything not allow-listed is a validation error.
func ParseSort(field, order string, allowed map[string]string, defaultField string) (Sort, error) {
	field = strings.ToLower(strings.TrimSpace(field))
	if field == "" {
		field = defaultField
	}
	column, ok := allowed[field]
	if !ok {
		return Sort{}, pkgerrors.Invalid("sortBy", fmt.Sprintf("unsupported sort field %q", field))
	}

	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", OrderAsc:
		return Sort{Field: field, Column: column}, nil
	case OrderDesc:
		return Sort{Field: field, Column: column, Desc: true}, nil
	default:
		return Sort{}, pkgerrors.Invalid("order", "order must be asc or desc")
	}
}
