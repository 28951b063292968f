package main

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The state guards run before the underlying transaction is touched, so a
// unit with no live tx exercises them safely.
func Test_txUnit_stateMachine(t *testing.T) {
	noop := func(tx *sqlx.Tx) error { return nil }

	for _, state := range []txState{txIdle, txCommitted, txRolledBack} {
		t.Run("step while "+state.String(), func(t *testing.T) {
			u := &txUnit{name: "trade", state: state}
			err := u.step("debit buyer", noop)
			require.Error(t, err)
			assert.Contains(t, err.Error(), state.String())
		})
		t.Run("commit while "+state.String(), func(t *testing.T) {
			u := &txUnit{name: "trade", state: state}
			require.Error(t, u.commit())
			assert.Equal(t, state, u.state, "failed commit must not move the state")
		})
	}

	// rollback on a finished unit is a no-op, not a panic.
	u := &txUnit{name: "trade", state: txCommitted}
	u.rollback()
	assert.Equal(t, txCommitted, u.state)
}

func Test_txState_String(t *testing.T) {
	assert.Equal(t, "idle", txIdle.String())
	assert.Equal(t, "started", txStarted.String())
	assert.Equal(t, "committed", txCommitted.String())
	assert.Equal(t, "rolled-back", txRolledBack.String())
}

func Test_runTrade_validation(t *testing.T) {
	conn := dbConnection{}

	var usage usageError
	require.True(t, errors.As(conn.runTrade("00012eb7", "Alvor", "Adrianne Avenicci", 0), &usage))
	require.True(t, errors.As(conn.runTrade("00012eb7", "Alvor", "Adrianne Avenicci", -5), &usage))
	require.True(t, errors.As(conn.runTrade("00012eb7", "Alvor", "Alvor", 10), &usage))
}

func Test_runEnchant_validation(t *testing.T) {
	conn := dbConnection{}

	var usage usageError
	require.True(t, errors.As(conn.runEnchant("00012eb7", "Frost Damage", "drains stamina", -1), &usage))
}
