package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/smartbill/smartbill/internal/metrics"
	"github.com/smartbill/smartbill/internal/model"
	"github.com/smartbill/smartbill/internal/repository"
)

// Subscription service errors.
var (
	ErrNameRequired         = errors.New("name is required")
	ErrCategoryRequired     = errors.New("category is required")
	ErrInvalidPrice         = errors.New("price must be greater than zero")
	ErrInvalidCurrency      = errors.New("currency must be a 3-letter code")
	ErrInvalidSchedule      = errors.New("invalid recurring schedule")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

const maxNameLength = 120

// SubscriptionService handles ownership-scoped subscription logic.
// Every operation takes the acting user's ID from the authenticated
// request context; the owner is never read from the payload.
type SubscriptionService struct {
	repo            *repository.Repository
	defaultCurrency string
	metrics         metrics.Recorder
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(repo *repository.Repository, defaultCurrency string, recorder metrics.Recorder) *SubscriptionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if defaultCurrency == "" {
		defaultCurrency = "GBP"
	}
	return &SubscriptionService{
		repo:            repo,
		defaultCurrency: defaultCurrency,
		metrics:         recorder,
	}
}

// SubscriptionInput defines the caller-settable subscription fields.
type SubscriptionInput struct {
	Name              string
	Price             float64
	Currency          string
	DueDate           *time.Time
	Category          string
	RecurringSchedule string
	Notes             string
}

// Create stores a new subscription owned by ownerID.
func (s *SubscriptionService) Create(ctx context.Context, ownerID string, input SubscriptionInput) (*model.Subscription, error) {
	normalized, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sub := &model.Subscription{
		ID:                ulid.Make().String(),
		Name:              normalized.Name,
		Price:             normalized.Price,
		Currency:          normalized.Currency,
		DueDate:           normalized.DueDate,
		Category:          normalized.Category,
		RecurringSchedule: model.Schedule(normalized.RecurringSchedule),
		Notes:             normalized.Notes,
		OwnerID:           ownerID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	s.metrics.IncSubscriptionCreated()
	return sub, nil
}

// List returns all subscriptions owned by ownerID, newest first.
func (s *SubscriptionService) List(ctx context.Context, ownerID string) ([]*model.Subscription, error) {
	return s.repo.ListSubscriptions(ctx, ownerID)
}

// Update replaces the caller-settable fields of the subscription with
// the given id, if it is owned by ownerID. A row owned by someone else
// yields the same ErrSubscriptionNotFound as a missing row.
func (s *SubscriptionService) Update(ctx context.Context, ownerID, id string, input SubscriptionInput) (*model.Subscription, error) {
	normalized, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	sub := &model.Subscription{
		ID:                id,
		Name:              normalized.Name,
		Price:             normalized.Price,
		Currency:          normalized.Currency,
		DueDate:           normalized.DueDate,
		Category:          normalized.Category,
		RecurringSchedule: model.Schedule(normalized.RecurringSchedule),
		Notes:             normalized.Notes,
		OwnerID:           ownerID,
		UpdatedAt:         time.Now().UTC(),
	}

	updated, err := s.repo.UpdateSubscription(ctx, sub)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	s.metrics.IncSubscriptionUpdated()
	return updated, nil
}

// Delete removes the subscription with the given id if it is owned by
// ownerID.
func (s *SubscriptionService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.DeleteSubscription(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return ErrSubscriptionNotFound
		}
		return err
	}

	s.metrics.IncSubscriptionDeleted()
	return nil
}

// validate checks and normalizes caller input. Currency defaults to
// the configured currency, schedule to monthly.
func (s *SubscriptionService) validate(input SubscriptionInput) (SubscriptionInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || len(input.Name) > maxNameLength {
		return input, ErrNameRequired
	}

	input.Category = strings.TrimSpace(input.Category)
	if input.Category == "" {
		return input, ErrCategoryRequired
	}

	if input.Price <= 0 {
		return input, ErrInvalidPrice
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}
	if len(currency) != 3 {
		return input, ErrInvalidCurrency
	}
	input.Currency = currency

	schedule := strings.ToLower(strings.TrimSpace(input.RecurringSchedule))
	if schedule == "" {
		schedule = string(model.ScheduleMonthly)
	}
	if !model.Schedule(schedule).IsValid() {
		return input, ErrInvalidSchedule
	}
	input.RecurringSchedule = schedule

	input.Notes = strings.TrimSpace(input.Notes)

	return input, nil
}
