// utils/utils.go

package utils

import (
	"github.com/google/uuid"
)

// GenerateUUIDString returns a random id for a new connection.
func GenerateUUIDString() string {
	id := uuid.New()
	return id.String()
}
