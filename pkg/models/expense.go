package models

import "time"

// ExpenseCategories 前端固定的分类列表（free-text label, not enforced by the store）
var ExpenseCategories = []string{
	"transport",
	"accommodation",
	"food",
	"activities",
	"shopping",
	"other",
}

// Expense is a tracked spend attached to a trip
type Expense struct {
	ID       string  `json:"id" db:"id"`
	TripID   string  `json:"trip_id" db:"trip_id"`
	Title    string  `json:"title" db:"title"`
	Amount   float64 `json:"amount" db:"amount"`
	Category string  `json:"category" db:"category"`
	Date     string  `json:"date" db:"date"` // YYYY-MM-DD
	PaidBy   string  `json:"paid_by" db:"paid_by"`
	// nil means the expense is shared by all participants
	PaidFor   *string   `json:"paid_for,omitempty" db:"paid_for"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ExpenseShare is one participant's part of a split expense
type ExpenseShare struct {
	ID        string  `json:"id" db:"id"`
	ExpenseID string  `json:"expense_id" db:"expense_id"`
	UserID    string  `json:"user_id" db:"user_id"`
	Amount    float64 `json:"amount" db:"amount"`
}
