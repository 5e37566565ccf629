package services

import (
	"errors"

	"github.com/tumo-mining/backend/internal/repositories"
)

func isNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}
