package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perda-lpj-api/internal/models"
)

func TestMoveUpdates(t *testing.T) {
	ids := []string{"a", "b", "c"}

	updates, err := moveUpdates(ids, "b", directionUp)
	require.NoError(t, err)
	assert.Equal(t, []models.SequenceUpdate{{ID: "b", Urutan: 1}, {ID: "a", Urutan: 2}}, updates)

	updates, err = moveUpdates(ids, "b", directionDown)
	require.NoError(t, err)
	assert.Equal(t, []models.SequenceUpdate{{ID: "b", Urutan: 3}, {ID: "c", Urutan: 2}}, updates)

	updates, err = moveUpdates(ids, "c", directionDown)
	require.NoError(t, err)
	assert.Empty(t, updates)

	_, err = moveUpdates(ids, "z", directionUp)
	requireStatus(t, err, http.StatusNotFound)
}

func TestReorderUpdates(t *testing.T) {
	updates, err := reorderUpdates([]string{"a", "b", "c"}, []string{"c", "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []models.SequenceUpdate{{ID: "c", Urutan: 1}, {ID: "a", Urutan: 2}, {ID: "b", Urutan: 3}}, updates)

	_, err = reorderUpdates([]string{"a", "b"}, []string{"a", "x"})
	requireStatus(t, err, http.StatusBadRequest)
}
