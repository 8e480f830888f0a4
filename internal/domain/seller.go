package domain

import "time"

// Seller authenticates against the point of sale. Passcode holds a bcrypt hash.
type Seller struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Passcode       string     `json:"-"`
	LastUpdateDate *time.Time `json:"lastUpdateDate,omitempty"`
}

type NewSeller struct {
	Name     string `json:"name" validate:"required,max=50"`
	Passcode string `json:"passcode" validate:"required,min=4,max=72"`
}
