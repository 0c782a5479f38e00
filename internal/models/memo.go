package models

import "strings"

// UrgentMemo is a high-priority alert about a child that staff expect to be
// acknowledged.
type UrgentMemo struct {
	ID        string `json:"id" yaml:"id"`
	ChildID   string `json:"childId" yaml:"childId"`
	Title     string `json:"title" yaml:"title"`
	Body      string `json:"body" yaml:"body"`
	Sender    string `json:"sender,omitempty" yaml:"sender,omitempty"`
	CreatedAt string `json:"createdAt" yaml:"createdAt"`
	Status    Status `json:"status" yaml:"status"`
}

func (m UrgentMemo) EntityID() string { return m.ID }

func (m UrgentMemo) WithStatus(s Status) UrgentMemo {
	m.Status = s
	return m
}

func (m UrgentMemo) Allows(s Status) bool { return oneOf(s, StatusPending, StatusAck) }

type UrgentMemoDraft struct {
	ChildID string
	Title   string
	Body    string
	Sender  string
}

func (d UrgentMemoDraft) Validate() error {
	if strings.TrimSpace(d.ChildID) == "" {
		return errEmpty("urgent memo needs a child id")
	}
	if strings.TrimSpace(d.Title) == "" {
		return errEmpty("urgent memo needs a title")
	}
	return nil
}

func (d UrgentMemoDraft) Build(id, createdAt string) UrgentMemo {
	return UrgentMemo{
		ID:        id,
		ChildID:   d.ChildID,
		Title:     d.Title,
		Body:      d.Body,
		Sender:    d.Sender,
		CreatedAt: createdAt,
		Status:    StatusPending,
	}
}
