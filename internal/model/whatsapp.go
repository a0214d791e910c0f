// Package model defines wire and persistence structures for the webhook pipeline.
package model

// WebhookPayload is the Meta Graph webhook event envelope. A single delivery
// may carry multiple entries, each with multiple changes.
type WebhookPayload struct {
	Object string  `json:"object,omitempty"`
	Entry  []Entry `json:"entry"`
}

// Entry is one account-level entry in a webhook delivery.
type Entry struct {
	ID      string   `json:"id,omitempty"`
	Changes []Change `json:"changes"`
}

// Change carries either inbound messages or delivery status updates.
type Change struct {
	Field string      `json:"field,omitempty"`
	Value ChangeValue `json:"value"`
}

// ChangeValue is the payload of a single change.
type ChangeValue struct {
	MessagingProduct string          `json:"messaging_product"`
	Metadata         ChannelMetadata `json:"metadata"`
	Messages         []Message       `json:"messages,omitempty"`
	Statuses         []Status        `json:"statuses,omitempty"`
}

// ChannelMetadata identifies the receiving business phone number.
type ChannelMetadata struct {
	PhoneNumberID      string `json:"phone_number_id"`
	DisplayPhoneNumber string `json:"display_phone_number"`
}

// Message is one inbound message. Immutable once received.
type Message struct {
	From        string       `json:"from"`
	ID          string       `json:"id"`
	Timestamp   string       `json:"timestamp"`
	Type        string       `json:"type"`
	Text        *TextBody    `json:"text,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
}

// TextBody is the free-text body of a text message.
type TextBody struct {
	Body string `json:"body"`
}

// Interactive carries a structured reply, e.g. a button click.
type Interactive struct {
	Type        string       `json:"type"`
	ButtonReply *ButtonReply `json:"button_reply,omitempty"`
}

// ButtonReply identifies which call-to-action button the sender pressed.
type ButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Status is a delivery status update for a previously sent message.
type Status struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// BuyButtonID is the reply-button id carried by outbound call-to-action
// messages and matched on inbound clicks.
const BuyButtonID = "buy_now"

// FirstMessage returns the first message in the payload, or nil. The gate
// middlewares key rate limiting and debouncing off this message's sender.
func (p *WebhookPayload) FirstMessage() *Message {
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			if len(change.Value.Messages) > 0 {
				return &change.Value.Messages[0]
			}
		}
	}
	return nil
}

// TextContent returns the message's text body, or "" for non-text messages.
func (m *Message) TextContent() string {
	if m.Text == nil {
		return ""
	}
	return m.Text.Body
}

// IsBuyClick reports whether the message is a buy-button click.
func (m *Message) IsBuyClick() bool {
	return m.Type == "interactive" &&
		m.Interactive != nil &&
		m.Interactive.ButtonReply != nil &&
		m.Interactive.ButtonReply.ID == BuyButtonID
}

// ClassificationResult is the outcome of intent classification. A message
// matches at most one category.
type ClassificationResult struct {
	Category *string `json:"category"`
	Matched  bool    `json:"matched"`
}
