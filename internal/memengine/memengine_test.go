package memengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetRemove(t *testing.T) {
	s := New()

	require.NoError(t, s.Set("k", []byte("v")))

	value, found, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), value)

	require.NoError(t, s.Remove("k"))

	_, found, err = s.Get("k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetMissingKeyIsNotAnError(t *testing.T) {
	s := New()
	_, found, err := s.Get("nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRemoveMissingKeyFails(t *testing.T) {
	s := New()
	err := s.Remove("nope")
	assert.Error(t, err)
}

func TestSetRejectsEmptyValue(t *testing.T) {
	s := New()
	err := s.Set("k", nil)
	assert.Error(t, err)
}

func TestCloseThenOperateFails(t *testing.T) {
	s := New()
	require.NoError(t, s.Close())

	assert.Error(t, s.Set("k", []byte("v")))
	_, _, err := s.Get("k")
	assert.Error(t, err)
	assert.Error(t, s.Remove("k"))
	assert.Error(t, s.Close())
}
