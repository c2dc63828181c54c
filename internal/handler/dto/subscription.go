package dto

import (
	"time"

	"github.com/smartbill/smartbill/internal/model"
)

// SubscriptionRequest represents the request body for creating or
// replacing a subscription. The owner is never part of the payload; it
// comes from the authenticated caller.
type SubscriptionRequest struct {
	Name              string     `json:"name"`
	Price             float64    `json:"price"`
	Currency          string     `json:"currency,omitempty"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	Category          string     `json:"category"`
	RecurringSchedule string     `json:"recurring_schedule,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

// SubscriptionResponse represents a subscription in API responses.
type SubscriptionResponse struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Price             float64    `json:"price"`
	Currency          string     `json:"currency"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	Category          string     `json:"category"`
	RecurringSchedule string     `json:"recurring_schedule"`
	Notes             string     `json:"notes,omitempty"`
	OwnerID           string     `json:"owner_id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// SubscriptionListResponse represents the caller's subscriptions.
type SubscriptionListResponse struct {
	Data []SubscriptionResponse `json:"data"`
}

// ToSubscriptionResponse converts a Subscription model to its DTO.
func ToSubscriptionResponse(sub *model.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{
		ID:                sub.ID,
		Name:              sub.Name,
		Price:             sub.Price,
		Currency:          sub.Currency,
		DueDate:           sub.DueDate,
		Category:          sub.Category,
		RecurringSchedule: string(sub.RecurringSchedule),
		Notes:             sub.Notes,
		OwnerID:           sub.OwnerID,
		CreatedAt:         sub.CreatedAt,
		UpdatedAt:         sub.UpdatedAt,
	}
}

// ToSubscriptionListResponse converts a slice of Subscription models.
func ToSubscriptionListResponse(subs []*model.Subscription) *SubscriptionListResponse {
	responses := make([]SubscriptionResponse, len(subs))
	for i, sub := range subs {
		responses[i] = *ToSubscriptionResponse(sub)
	}
	return &SubscriptionListResponse{Data: responses}
}
