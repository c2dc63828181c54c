// Package model defines domain entities for the application.
package model

import "time"

// Schedule describes how often a subscription recurs.
type Schedule string

const (
	ScheduleDaily     Schedule = "daily"
	ScheduleWeekly    Schedule = "weekly"
	ScheduleMonthly   Schedule = "monthly"
	ScheduleQuarterly Schedule = "quarterly"
	ScheduleYearly    Schedule = "yearly"
)

// IsValid checks if the schedule is a known recurrence.
func (s Schedule) IsValid() bool {
	switch s {
	case ScheduleDaily, ScheduleWeekly, ScheduleMonthly, ScheduleQuarterly, ScheduleYearly:
		return true
	}
	return false
}

// Subscription represents a recurring-payment record owned by exactly
// one user. OwnerID is set at creation and never transferred; every
// read/update/delete goes through an owner-filtered query.
type Subscription struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Price             float64    `json:"price"`
	Currency          string     `json:"currency"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	Category          string     `json:"category"`
	RecurringSchedule Schedule   `json:"recurring_schedule"`
	Notes             string     `json:"notes,omitempty"`
	OwnerID           string     `json:"owner_id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
