package models

import "time"

// Trip is the top-level planning unit, owned by one user
type Trip struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	StartDate   string    `json:"start_date" db:"start_date"` // YYYY-MM-DD
	EndDate     string    `json:"end_date" db:"end_date"`
	Budget      float64   `json:"budget" db:"budget"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Destination is a place within a trip, carrying its own cost
type Destination struct {
	ID          string    `json:"id" db:"id"`
	TripID      string    `json:"trip_id" db:"trip_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	Country     string    `json:"country,omitempty" db:"country"`
	Address     string    `json:"address,omitempty" db:"address"`
	Price       float64   `json:"price" db:"price"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Activity is a bookable item within a destination
type Activity struct {
	ID            string    `json:"id" db:"id"`
	DestinationID string    `json:"destination_id" db:"destination_id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description,omitempty" db:"description"`
	Price         float64   `json:"price" db:"price"`
	Duration      string    `json:"duration,omitempty" db:"duration"` // free text, e.g. "2h", "half day"
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
