package models

import "strings"

// Message is a direct message between a parent and staff. ThreadID is a
// grouping key computed by the consumer.
type Message struct {
	ID         string   `json:"id" yaml:"id"`
	ThreadID   string   `json:"threadId,omitempty" yaml:"threadId,omitempty"`
	Title      string   `json:"title" yaml:"title"`
	Body       string   `json:"body" yaml:"body"`
	Sender     string   `json:"sender,omitempty" yaml:"sender,omitempty"`
	Recipients []string `json:"recipients,omitempty" yaml:"recipients,omitempty"`
	CreatedAt  string   `json:"createdAt" yaml:"createdAt"`
	Status     Status   `json:"status" yaml:"status"`
}

func (m Message) EntityID() string { return m.ID }

func (m Message) WithStatus(s Status) Message {
	m.Status = s
	return m
}

func (m Message) Allows(s Status) bool { return oneOf(s, StatusUnread, StatusRead) }

// MessageDraft is what a caller fills in to send a message.
type MessageDraft struct {
	ThreadID   string
	Title      string
	Body       string
	Sender     string
	Recipients []string
}

func (d MessageDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Body) == "" {
		return errEmpty("message needs a title or a body")
	}
	return nil
}

// Build returns the optimistic record. Messages the user wrote are read.
func (d MessageDraft) Build(id, createdAt string) Message {
	return Message{
		ID:         id,
		ThreadID:   d.ThreadID,
		Title:      d.Title,
		Body:       d.Body,
		Sender:     d.Sender,
		Recipients: append([]string(nil), d.Recipients...),
		CreatedAt:  createdAt,
		Status:     StatusRead,
	}
}
