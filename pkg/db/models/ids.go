package models

import "github.com/google/uuid"

// ensureID assigns a random UUID when the caller left the key empty. SQL
// migrations also default ids server-side; SQLite has no equivalent.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
