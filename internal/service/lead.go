package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/leadflow/leadflow-backend/internal/events"
	"github.com/leadflow/leadflow-backend/internal/model"
	"github.com/leadflow/leadflow-backend/internal/store"
	"github.com/leadflow/leadflow-backend/pkg/logger"
	"github.com/leadflow/leadflow-backend/pkg/metrics"
)

// ErrInvalidTransition is returned when a lead status change would move
// backward along the funnel.
var ErrInvalidTransition = errors.New("service: invalid lead status transition")

// LeadStore is the persistence surface the lead funnel needs.
type LeadStore interface {
	LatestInteractionLog(ctx context.Context, userID, contact string) (*model.InteractionLog, error)
	MarkClicked(ctx context.Context, logID string) error
	CreateLead(ctx context.Context, lead *model.QualifiedLead) error
	GetLead(ctx context.Context, userID, leadID string) (*model.QualifiedLead, error)
	UpdateLeadStatus(ctx context.Context, leadID, status string, at time.Time) error
	MirrorSoldStatus(ctx context.Context, userID, contact string) error
}

// LeadService advances qualified leads through waiting -> assumed -> sold.
type LeadService struct {
	store     LeadStore
	publisher *events.Publisher
	logger    *logger.Logger
}

// NewLeadService creates a lead funnel service.
func NewLeadService(st LeadStore, pub *events.Publisher, log *logger.Logger) *LeadService {
	return &LeadService{store: st, publisher: pub, logger: log}
}

// HandleClick processes a buy-button click: it flags the contact's most
// recent interaction log and creates a new waiting lead carrying the latest
// known category. Repeated clicks create new lead rows; the funnel does not
// coalesce them.
func (s *LeadService) HandleClick(ctx context.Context, userID, contact string) (*model.QualifiedLead, error) {
	var category *string

	latest, err := s.store.LatestInteractionLog(ctx, userID, contact)
	if err == nil {
		category = latest.CategoryAssigned
		if err := s.store.MarkClicked(ctx, latest.ID); err != nil {
			s.logger.Error("failed to mark interaction clicked", zap.Error(err))
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("failed to look up latest interaction", zap.Error(err))
	}

	lead := &model.QualifiedLead{
		UserID:      userID,
		ContactName: contact,
		Channel:     model.ChannelWhatsApp,
		Category:    category,
		Status:      model.LeadStatusWaiting,
		ClickedAt:   time.Now(),
	}
	if err := s.store.CreateLead(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create qualified lead: %w", err)
	}

	s.logger.Info("qualified lead created",
		zap.String("lead_id", lead.ID),
		zap.String("contact", contact),
	)
	metrics.LeadsCreatedTotal.Inc()
	s.publisher.Publish(events.SubjectLeadCreated, lead)

	return lead, nil
}

// Assume transitions a waiting lead to assumed (staff claims it).
func (s *LeadService) Assume(ctx context.Context, userID, leadID string) (*model.QualifiedLead, error) {
	lead, err := s.store.GetLead(ctx, userID, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Status != model.LeadStatusWaiting {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	if err := s.store.UpdateLeadStatus(ctx, lead.ID, model.LeadStatusAssumed, now); err != nil {
		return nil, err
	}
	lead.Status = model.LeadStatusAssumed
	lead.AssumedAt = &now

	metrics.LeadTransitionsTotal.WithLabelValues(model.LeadStatusAssumed).Inc()
	return lead, nil
}

// MarkSold transitions a waiting or assumed lead to sold and mirrors the
// terminal status onto the contact's interaction logs.
func (s *LeadService) MarkSold(ctx context.Context, userID, leadID string) (*model.QualifiedLead, error) {
	lead, err := s.store.GetLead(ctx, userID, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Status == model.LeadStatusSold {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	if err := s.store.UpdateLeadStatus(ctx, lead.ID, model.LeadStatusSold, now); err != nil {
		return nil, err
	}
	lead.Status = model.LeadStatusSold
	lead.SoldAt = &now

	if err := s.store.MirrorSoldStatus(ctx, userID, lead.ContactName); err != nil {
		s.logger.Error("failed to mirror sold status onto interaction logs", zap.Error(err))
	}

	metrics.LeadTransitionsTotal.WithLabelValues(model.LeadStatusSold).Inc()
	return lead, nil
}
