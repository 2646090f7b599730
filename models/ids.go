package models

import "github.com/google/uuid"

// assignID gives a new row a random UUID unless the caller picked one.
func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
