package driver

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDriverQueryAreacodesFixture(t *testing.T) {
	db, err := sql.Open("paradox", "../catalog/testdata")
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query("SELECT AC, STATE FROM areacodes WHERE STATE = 'NJ'")
	require.NoError(t, err)
	defer rows.Close()

	var count int
	for rows.Next() {
		var ac, state string
		require.NoError(t, rows.Scan(&ac, &state))
		require.Equal(t, "201", ac)
		require.Equal(t, "NJ", state)
		count++
	}
	require.NoError(t, rows.Err())
	require.Equal(t, 1, count)
}

func TestDriverExecIsUnsupported(t *testing.T) {
	db, err := sql.Open("paradox", "../catalog/testdata")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("SELECT * FROM areacodes")
	require.Error(t, err)
}
