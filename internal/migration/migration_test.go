package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomarkov/domain/core"
)

func TestStatements(t *testing.T) {
	stmts, err := NewRunner("credit_migrations").Statements()
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	assert.Contains(t, stmts[0], `CREATE TABLE IF NOT EXISTS "credit_migrations"`)
	assert.Contains(t, stmts[0], "from_state")
	assert.Contains(t, stmts[1], `"idx_credit_migrations_portfolio"`)
}

func TestStatements_RejectsBadTable(t *testing.T) {
	_, err := NewRunner("x; DROP TABLE y").Statements()
	assert.True(t, core.IsInvalidInput(err))
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "1.0.0", NewRunner("t").Version())
}
