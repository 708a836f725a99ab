package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSet(t *testing.T) {
	var s StringSet
	assert.False(t, s.Has("24h"))

	s = s.With("24h")
	assert.True(t, s.Has("24h"))
	assert.False(t, s.Has("1h"))

	// Adding an existing element changes nothing
	again := s.With("24h")
	assert.Equal(t, s, again)

	both := s.With("1h")
	assert.Equal(t, StringSet{"24h", "1h"}, both)
	// The original is not mutated
	assert.Equal(t, StringSet{"24h"}, s)
}

func TestStringSetJSONBRoundTrip(t *testing.T) {
	s := StringSet{"24h", "1h"}
	value, err := s.Value()
	require.NoError(t, err)

	var decoded StringSet
	require.NoError(t, decoded.Scan(value.([]byte)))
	assert.Equal(t, s, decoded)

	// nil set marshals to an empty array, not null
	var empty StringSet
	value, err = empty.Value()
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(value.([]byte)))
}

func TestIsTerminalStatus(t *testing.T) {
	assert.False(t, IsTerminalStatus(VisitScheduled))
	assert.True(t, IsTerminalStatus(VisitCompleted))
	assert.True(t, IsTerminalStatus(VisitMissed))
	assert.True(t, IsTerminalStatus(VisitCancelled))
	assert.False(t, IsTerminalStatus("UNKNOWN"))
}
