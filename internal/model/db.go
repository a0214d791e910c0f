package model

import "time"

// Lead funnel statuses. The progression is strictly forward:
// waiting -> assumed -> sold.
const (
	LeadStatusWaiting = "waiting"
	LeadStatusAssumed = "assumed"
	LeadStatusSold    = "sold"
)

// Interaction log statuses.
const (
	InteractionStatusAutoReplied = "auto_replied"
	InteractionStatusSold        = "sold"
)

// ChannelWhatsApp is the only inbound channel currently wired.
const ChannelWhatsApp = "whatsapp"

// StoreConfig holds a store owner's configuration, keyed to a WhatsApp
// business phone number.
type StoreConfig struct {
	ID                   string `gorm:"primaryKey;size:36"`
	UserID               string `gorm:"size:36;uniqueIndex"`
	StoreName            string
	DefaultPrice         string
	AvailableColors      string
	ProductLink          string
	Products             string `gorm:"type:text"`
	WhatsAppPhoneID      string `gorm:"column:whatsapp_phone_id;size:64;index"`
	WhatsAppConnected    bool   `gorm:"column:whatsapp_connected"`
	NotificationsEnabled bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (StoreConfig) TableName() string { return "store_config" }

// KeywordDictionary is one per-account category with its trigger keywords.
type KeywordDictionary struct {
	ID        string   `gorm:"primaryKey;size:36"`
	UserID    string   `gorm:"size:36;index"`
	Category  string   `gorm:"size:64"`
	Keywords  []string `gorm:"serializer:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (KeywordDictionary) TableName() string { return "keyword_dictionaries" }

// Template is a per-account response template. Inactive templates are
// treated as absent during resolution.
type Template struct {
	ID           string `gorm:"primaryKey;size:36"`
	UserID       string `gorm:"size:36;index:idx_templates_user_category"`
	Category     string `gorm:"size:64;index:idx_templates_user_category"`
	ResponseText string `gorm:"type:text"`
	IsActive     bool   `gorm:"default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Template) TableName() string { return "templates" }

// InteractionLog is one record per processed inbound message. Append-only
// apart from the clicked-buy flag and terminal status mirroring.
type InteractionLog struct {
	ID               string `gorm:"primaryKey;size:36"`
	UserID           string `gorm:"size:36;index:idx_logs_user_contact"`
	ContactName      string `gorm:"size:64;index:idx_logs_user_contact"`
	Channel          string `gorm:"size:16;default:whatsapp"`
	MessageReceived  string `gorm:"type:text"`
	CategoryAssigned *string
	ResponseSent     *string `gorm:"type:text"`
	ClickedBuy       bool
	Status           string `gorm:"size:16"`
	CreatedAt        time.Time
}

func (InteractionLog) TableName() string { return "interaction_logs" }

// QualifiedLead is created when a sender clicks the buy button and then
// advances through the funnel via dashboard actions.
type QualifiedLead struct {
	ID          string `gorm:"primaryKey;size:36"`
	UserID      string `gorm:"size:36;index"`
	ContactName string `gorm:"size:64"`
	Channel     string `gorm:"size:16;default:whatsapp"`
	Category    *string
	Status      string `gorm:"size:16;default:waiting;index"`
	ClickedAt   time.Time
	AssumedAt   *time.Time
	SoldAt      *time.Time
	CreatedAt   time.Time
}

func (QualifiedLead) TableName() string { return "qualified_leads" }
