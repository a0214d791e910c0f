// Package store provides the relational access layer for store configuration,
// templates, keyword dictionaries, interaction logs and qualified leads.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/leadflow/leadflow-backend/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: record not found")

// Store wraps a GORM connection.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and returns a Store.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing GORM connection, used by tests with SQLite.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the schema.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&model.StoreConfig{},
		&model.KeywordDictionary{},
		&model.Template{},
		&model.InteractionLog{},
		&model.QualifiedLead{},
	)
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// GetStoreConfigByPhoneID finds the store owning a WhatsApp phone number id.
func (s *Store) GetStoreConfigByPhoneID(ctx context.Context, phoneID string) (*model.StoreConfig, error) {
	var cfg model.StoreConfig
	err := s.db.WithContext(ctx).Where("whatsapp_phone_id = ?", phoneID).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get store config: %w", err)
	}
	return &cfg, nil
}

// GetKeywordDictionaries returns the account's keyword dictionaries in
// creation order. Classification iterates them in this order.
func (s *Store) GetKeywordDictionaries(ctx context.Context, userID string) ([]model.KeywordDictionary, error) {
	var dicts []model.KeywordDictionary
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&dicts).Error
	if err != nil {
		return nil, fmt.Errorf("store: get keyword dictionaries: %w", err)
	}
	return dicts, nil
}

// GetActiveTemplate returns the account's active template for a category.
func (s *Store) GetActiveTemplate(ctx context.Context, userID, category string) (*model.Template, error) {
	var tmpl model.Template
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND category = ? AND is_active = ?", userID, category, true).
		First(&tmpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get template: %w", err)
	}
	return &tmpl, nil
}

// UpsertTemplate replaces the account's template for a category.
func (s *Store) UpsertTemplate(ctx context.Context, userID, category, responseText string) error {
	var existing model.Template
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND category = ?", userID, category).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		tmpl := model.Template{
			ID:           uuid.Must(uuid.NewV7()).String(),
			UserID:       userID,
			Category:     category,
			ResponseText: responseText,
			IsActive:     true,
		}
		if err := s.db.WithContext(ctx).Create(&tmpl).Error; err != nil {
			return fmt.Errorf("store: create template: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: upsert template: %w", err)
	}
	err = s.db.WithContext(ctx).Model(&existing).
		Updates(map[string]any{"response_text": responseText, "is_active": true}).Error
	if err != nil {
		return fmt.Errorf("store: update template: %w", err)
	}
	return nil
}

// UpsertKeywordDictionary replaces the account's keywords for a category.
func (s *Store) UpsertKeywordDictionary(ctx context.Context, userID, category string, keywords []string) error {
	var existing model.KeywordDictionary
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND category = ?", userID, category).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		dict := model.KeywordDictionary{
			ID:       uuid.Must(uuid.NewV7()).String(),
			UserID:   userID,
			Category: category,
			Keywords: keywords,
		}
		if err := s.db.WithContext(ctx).Create(&dict).Error; err != nil {
			return fmt.Errorf("store: create keyword dictionary: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: upsert keyword dictionary: %w", err)
	}
	err = s.db.WithContext(ctx).Model(&existing).Update("keywords", keywords).Error
	if err != nil {
		return fmt.Errorf("store: update keyword dictionary: %w", err)
	}
	return nil
}

// CreateInteractionLog appends one interaction record.
func (s *Store) CreateInteractionLog(ctx context.Context, log *model.InteractionLog) error {
	if log.ID == "" {
		log.ID = uuid.Must(uuid.NewV7()).String()
	}
	if log.Channel == "" {
		log.Channel = model.ChannelWhatsApp
	}
	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("store: create interaction log: %w", err)
	}
	return nil
}

// LatestInteractionLog returns the most recent interaction for a contact.
func (s *Store) LatestInteractionLog(ctx context.Context, userID, contact string) (*model.InteractionLog, error) {
	var log model.InteractionLog
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND contact_name = ?", userID, contact).
		Order("created_at DESC").
		First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: latest interaction log: %w", err)
	}
	return &log, nil
}

// MarkClicked flags an interaction log as having triggered a buy click.
func (s *Store) MarkClicked(ctx context.Context, logID string) error {
	err := s.db.WithContext(ctx).
		Model(&model.InteractionLog{}).
		Where("id = ?", logID).
		Update("clicked_buy", true).Error
	if err != nil {
		return fmt.Errorf("store: mark clicked: %w", err)
	}
	return nil
}

// ListInteractionLogs returns the account's most recent interactions.
func (s *Store) ListInteractionLogs(ctx context.Context, userID string, limit int) ([]model.InteractionLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var logs []model.InteractionLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("store: list interaction logs: %w", err)
	}
	return logs, nil
}

// CreateLead inserts a new qualified lead.
func (s *Store) CreateLead(ctx context.Context, lead *model.QualifiedLead) error {
	if lead.ID == "" {
		lead.ID = uuid.Must(uuid.NewV7()).String()
	}
	if lead.Channel == "" {
		lead.Channel = model.ChannelWhatsApp
	}
	if lead.Status == "" {
		lead.Status = model.LeadStatusWaiting
	}
	if err := s.db.WithContext(ctx).Create(lead).Error; err != nil {
		return fmt.Errorf("store: create lead: %w", err)
	}
	return nil
}

// GetLead returns one lead scoped to its owning account.
func (s *Store) GetLead(ctx context.Context, userID, leadID string) (*model.QualifiedLead, error) {
	var lead model.QualifiedLead
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", leadID, userID).
		First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get lead: %w", err)
	}
	return &lead, nil
}

// ListLeads returns the account's leads, newest first.
func (s *Store) ListLeads(ctx context.Context, userID string) ([]model.QualifiedLead, error) {
	var leads []model.QualifiedLead
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("clicked_at DESC").
		Find(&leads).Error
	if err != nil {
		return nil, fmt.Errorf("store: list leads: %w", err)
	}
	return leads, nil
}

// UpdateLeadStatus stamps a lead's new funnel status and transition time.
func (s *Store) UpdateLeadStatus(ctx context.Context, leadID, status string, at time.Time) error {
	updates := map[string]any{"status": status}
	switch status {
	case model.LeadStatusAssumed:
		updates["assumed_at"] = at
	case model.LeadStatusSold:
		updates["sold_at"] = at
	}
	err := s.db.WithContext(ctx).
		Model(&model.QualifiedLead{}).
		Where("id = ?", leadID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("store: update lead status: %w", err)
	}
	return nil
}

// MirrorSoldStatus marks a contact's interaction logs with the terminal
// sold status.
func (s *Store) MirrorSoldStatus(ctx context.Context, userID, contact string) error {
	err := s.db.WithContext(ctx).
		Model(&model.InteractionLog{}).
		Where("user_id = ? AND contact_name = ?", userID, contact).
		Update("status", model.InteractionStatusSold).Error
	if err != nil {
		return fmt.Errorf("store: mirror sold status: %w", err)
	}
	return nil
}
