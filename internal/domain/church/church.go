package church

import (
	"time"

	"github.com/google/uuid"
)

type Church struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type WithEventCount struct {
	Church
	EventCount int `json:"eventCount"`
}

type CreateChurchInput struct {
	Name    string
	Address *string
}

type UpdateChurchInput struct {
	Name    *string
	Address *string
}
