package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusAccepted))
	assert.True(t, StatusPending.CanTransitionTo(StatusCancelled))
	assert.True(t, StatusAccepted.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusAccepted.CanTransitionTo(StatusPending))
	assert.False(t, StatusPending.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())

	assert.Equal(t, []Status{StatusPending}, PredecessorsOf(StatusAccepted))
	assert.Equal(t, []Status{StatusAccepted}, PredecessorsOf(StatusCompleted))
	assert.Empty(t, PredecessorsOf(StatusPending))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" Accepted ")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, st)

	_, err = ParseStatus("shipped")
	require.Error(t, err)
}
