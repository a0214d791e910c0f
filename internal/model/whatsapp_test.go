package model

import "testing"

func TestFirstMessage(t *testing.T) {
	payload := &WebhookPayload{
		Entry: []Entry{
			{Changes: []Change{{Value: ChangeValue{
				Statuses: []Status{{ID: "wamid.s", Status: "delivered"}},
			}}}},
			{Changes: []Change{{Value: ChangeValue{
				Messages: []Message{{From: "5511999990000", ID: "wamid.1"}},
			}}}},
		},
	}

	msg := payload.FirstMessage()
	if msg == nil || msg.ID != "wamid.1" {
		t.Errorf("FirstMessage = %+v, want wamid.1", msg)
	}

	empty := &WebhookPayload{}
	if empty.FirstMessage() != nil {
		t.Error("FirstMessage on empty payload should be nil")
	}
}

func TestTextContent(t *testing.T) {
	msg := Message{Text: &TextBody{Body: "oi"}}
	if got := msg.TextContent(); got != "oi" {
		t.Errorf("TextContent = %q, want %q", got, "oi")
	}

	noText := Message{Type: "image"}
	if got := noText.TextContent(); got != "" {
		t.Errorf("TextContent = %q, want empty", got)
	}
}

func TestIsBuyClick(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{
			name: "buy button click",
			msg: Message{
				Type:        "interactive",
				Interactive: &Interactive{ButtonReply: &ButtonReply{ID: BuyButtonID}},
			},
			want: true,
		},
		{
			name: "other button",
			msg: Message{
				Type:        "interactive",
				Interactive: &Interactive{ButtonReply: &ButtonReply{ID: "more_info"}},
			},
			want: false,
		},
		{
			name: "text message",
			msg:  Message{Type: "text", Text: &TextBody{Body: "buy_now"}},
			want: false,
		},
		{
			name: "interactive without reply",
			msg:  Message{Type: "interactive", Interactive: &Interactive{}},
			want: false,
		},
	}
	for _, tt := range tests {
		if got := tt.msg.IsBuyClick(); got != tt.want {
			t.Errorf("%s: IsBuyClick = %v, want %v", tt.name, got, tt.want)
		}
	}
}
