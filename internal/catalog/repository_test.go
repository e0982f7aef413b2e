package catalog

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestBuildSearchQueryWithoutFilters(t *testing.T) {
	query, args := buildSearchQuery(SearchFilter{Limit: 10})
	assert.Equal(t, `SELECT `+productColumns+` FROM m_products WHERE deleted_at IS NULL ORDER BY id ASC LIMIT $1 OFFSET $2`, query)
	assert.Equal(t, []interface{}{10, 0}, args)
}

func TestBuildSearchQueryEscapesFilters(t *testing.T) {
	query, args := buildSearchQuery(SearchFilter{Name: "50%_off", Code: "W", Offset: 20, Limit: 5})
	assert.Contains(t, query, `AND name ILIKE $1 AND code ILIKE $2`)
	assert.Contains(t, query, `LIMIT $3 OFFSET $4`)
	assert.Equal(t, []interface{}{`%50\%\_off%`, "%W%", 5, 20}, args)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}
