package domain

import "github.com/google/uuid"

// Project is a lightweight reference to the project a task belongs to.
// Projects are owned by the persistence layer; the engine only reads them.
type Project struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
