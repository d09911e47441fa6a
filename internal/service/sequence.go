package service

import (
	"fmt"

	"github.com/noah-isme/perda-lpj-api/internal/models"
	appErrors "github.com/noah-isme/perda-lpj-api/pkg/errors"
)

const (
	directionUp   = "up"
	directionDown = "down"
)

// moveUpdates swaps the urutan of id with its neighbour. ids must be in urutan
// order. Moving past either end yields no updates.
func moveUpdates(ids []string, id, direction string) ([]models.SequenceUpdate, error) {
	index := -1
	for i, candidate := range ids {
		if candidate == id {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, appErrors.ErrNotFound
	}
	var neighbour int
	switch direction {
	case directionUp:
		neighbour = index - 1
	case directionDown:
		neighbour = index + 1
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "direction must be up or down")
	}
	if neighbour < 0 || neighbour >= len(ids) {
		return nil, nil
	}
	return []models.SequenceUpdate{
		{ID: ids[index], Urutan: neighbour + 1},
		{ID: ids[neighbour], Urutan: index + 1},
	}, nil
}

// reorderUpdates validates that order is a permutation of current and assigns
// urutan 1..n in that order.
func reorderUpdates(current, order []string) ([]models.SequenceUpdate, error) {
	if len(order) != len(current) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("expected %d ids, got %d", len(current), len(order)))
	}
	known := make(map[string]struct{}, len(current))
	for _, id := range current {
		known[id] = struct{}{}
	}
	updates := make([]models.SequenceUpdate, 0, len(order))
	for i, id := range order {
		if _, ok := known[id]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown or duplicate id %q", id))
		}
		delete(known, id)
		updates = append(updates, models.SequenceUpdate{ID: id, Urutan: i + 1})
	}
	return updates, nil
}
