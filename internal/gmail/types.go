package gmail

import (
	gmail "google.golang.org/api/gmail/v1"
)

// MessageSummary is a simplified message for listing.
type MessageSummary struct {
	ID       string
	ThreadID string
	From     string
	To       string
	Subject  string
	Date     string
	Snippet  string
}

// Message is a full message with its decoded plain-text body.
type Message struct {
	MessageSummary
	Body   string
	Labels []string
}

func header(msg *gmail.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

func toSummary(msg *gmail.Message) MessageSummary {
	if msg == nil {
		return MessageSummary{}
	}
	return MessageSummary{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		From:     header(msg, "From"),
		To:       header(msg, "To"),
		Subject:  header(msg, "Subject"),
		Date:     header(msg, "Date"),
		Snippet:  msg.Snippet,
	}
}
