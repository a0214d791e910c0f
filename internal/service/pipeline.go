package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/leadflow/leadflow-backend/internal/events"
	"github.com/leadflow/leadflow-backend/internal/model"
	"github.com/leadflow/leadflow-backend/internal/store"
	"github.com/leadflow/leadflow-backend/pkg/logger"
	"github.com/leadflow/leadflow-backend/pkg/metrics"
)

// Sender delivers outbound messages to the chat platform.
type Sender interface {
	SendInteractive(ctx context.Context, to, body, phoneNumberID string) error
	MarkAsRead(ctx context.Context, messageID, phoneNumberID string) error
}

// PipelineStore is the persistence surface the pipeline needs.
type PipelineStore interface {
	GetStoreConfigByPhoneID(ctx context.Context, phoneID string) (*model.StoreConfig, error)
	CreateInteractionLog(ctx context.Context, log *model.InteractionLog) error
}

// Pipeline processes authenticated, gate-approved webhook deliveries:
// classification, template resolution, sending, interaction recording and
// click handling.
type Pipeline struct {
	store      PipelineStore
	classifier *Classifier
	templates  *TemplateResolver
	sender     Sender
	leads      *LeadService
	publisher  *events.Publisher
	logger     *logger.Logger
}

// NewPipeline creates the webhook processing pipeline.
func NewPipeline(
	st PipelineStore,
	classifier *Classifier,
	templates *TemplateResolver,
	sender Sender,
	leads *LeadService,
	publisher *events.Publisher,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		store:      st,
		classifier: classifier,
		templates:  templates,
		sender:     sender,
		leads:      leads,
		publisher:  publisher,
		logger:     log,
	}
}

// ProcessPayload walks every entry, change and message in a delivery. Each
// message is processed independently: a failure in one never prevents
// processing of its siblings.
func (p *Pipeline) ProcessPayload(ctx context.Context, payload *model.WebhookPayload) {
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			value := change.Value
			if len(value.Messages) == 0 {
				p.logger.Debug("webhook change without messages (status update)")
				continue
			}
			for i := range value.Messages {
				p.processMessage(ctx, &value.Messages[i], value.Metadata)
			}
		}
	}
}

func (p *Pipeline) processMessage(ctx context.Context, msg *model.Message, metadata model.ChannelMetadata) {
	if msg.IsBuyClick() {
		p.handleClick(ctx, msg, metadata)
		return
	}

	text := msg.TextContent()
	if text == "" {
		p.logger.Debug("empty message, skipping", zap.String("sender", msg.From))
		return
	}

	p.logger.Info("processing message",
		zap.String("sender", msg.From),
		zap.String("message_id", msg.ID),
	)

	cfg, err := p.store.GetStoreConfigByPhoneID(ctx, metadata.PhoneNumberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			p.logger.Warn("no store config for phone number id",
				zap.String("phone_number_id", metadata.PhoneNumberID),
			)
		} else {
			p.logger.Error("failed to load store config", zap.Error(err))
		}
		return
	}

	classification := p.classifier.Classify(ctx, text, cfg.UserID)
	responseText := BuildResponse(
		p.templates.Resolve(ctx, cfg.UserID, classification.Category),
		cfg,
	)

	// The interaction is recorded before the send attempt so the audit trail
	// survives send-side failures.
	log := &model.InteractionLog{
		UserID:           cfg.UserID,
		ContactName:      msg.From,
		Channel:          model.ChannelWhatsApp,
		MessageReceived:  text,
		CategoryAssigned: classification.Category,
		ResponseSent:     &responseText,
		ClickedBuy:       false,
		Status:           model.InteractionStatusAutoReplied,
	}
	if err := p.store.CreateInteractionLog(ctx, log); err != nil {
		p.logger.Error("failed to record interaction", zap.Error(err))
	} else {
		p.publisher.Publish(events.SubjectInteractionLogged, log)
	}

	category := ""
	if classification.Category != nil {
		category = *classification.Category
	}
	metrics.RecordMessage(category)

	if err := p.sender.SendInteractive(ctx, msg.From, responseText, metadata.PhoneNumberID); err != nil {
		// The webhook must still acknowledge success to the platform, so a
		// send failure is logged and swallowed.
		p.logger.Error("failed to send response",
			zap.String("sender", msg.From),
			zap.Error(err),
		)
		metrics.SendFailuresTotal.Inc()
		return
	}

	_ = p.sender.MarkAsRead(ctx, msg.ID, metadata.PhoneNumberID)

	p.logger.Info("response sent", zap.String("sender", msg.From))
}

func (p *Pipeline) handleClick(ctx context.Context, msg *model.Message, metadata model.ChannelMetadata) {
	p.logger.Info("buy button clicked", zap.String("sender", msg.From))

	cfg, err := p.store.GetStoreConfigByPhoneID(ctx, metadata.PhoneNumberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			p.logger.Warn("no store config for phone number id",
				zap.String("phone_number_id", metadata.PhoneNumberID),
			)
		} else {
			p.logger.Error("failed to load store config", zap.Error(err))
		}
		return
	}

	if _, err := p.leads.HandleClick(ctx, cfg.UserID, msg.From); err != nil {
		p.logger.Error("failed to handle buy click", zap.Error(err))
	}
}
