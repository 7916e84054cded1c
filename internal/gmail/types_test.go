package gmail

import (
	"encoding/base64"
	"testing"

	gmail "google.golang.org/api/gmail/v1"
)

func TestToSummaryNil(t *testing.T) {
	summary := toSummary(nil)
	if summary.ID != "" {
		t.Errorf("Expected empty summary for nil message, got %+v", summary)
	}
}

func TestToSummaryReadsHeaders(t *testing.T) {
	msg := &gmail.Message{
		Id:       "m1",
		ThreadId: "t1",
		Snippet:  "hello",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "a@example.com"},
				{Name: "Subject", Value: "Hi"},
			},
		},
	}

	summary := toSummary(msg)
	if summary.From != "a@example.com" {
		t.Errorf("Expected From header, got %s", summary.From)
	}
	if summary.Subject != "Hi" {
		t.Errorf("Expected Subject header, got %s", summary.Subject)
	}
	if summary.To != "" {
		t.Errorf("Expected empty To for missing header, got %s", summary.To)
	}
}

func TestExtractBodyPlainText(t *testing.T) {
	body := base64.URLEncoding.EncodeToString([]byte("plain body"))
	part := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: "ignored"}},
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: body}},
		},
	}

	if got := extractBody(part); got != "plain body" {
		t.Errorf("Expected decoded plain body, got %q", got)
	}
}

func TestExtractBodyNil(t *testing.T) {
	if extractBody(nil) != "" {
		t.Error("Expected empty body for nil part")
	}
}
