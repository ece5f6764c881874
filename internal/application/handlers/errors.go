package handlers

import (
	"errors"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
)

func isNotFound(err error) bool {
	return errors.Is(err, entities.ErrNotFound)
}
