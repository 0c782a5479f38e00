package models

import (
	"fmt"
	"strings"
	"time"
)

// Proposal asks to move a pickup or drop-off to another time.
type Proposal struct {
	ID           string `json:"id" yaml:"id"`
	ChildID      string `json:"childId" yaml:"childId"`
	ProposedTime string `json:"proposedTime" yaml:"proposedTime"`
	OriginalTime string `json:"originalTime,omitempty" yaml:"originalTime,omitempty"`
	Reason       string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Sender       string `json:"sender,omitempty" yaml:"sender,omitempty"`
	CreatedAt    string `json:"createdAt" yaml:"createdAt"`
	Status       Status `json:"status" yaml:"status"`
}

func (p Proposal) EntityID() string { return p.ID }

func (p Proposal) WithStatus(s Status) Proposal {
	p.Status = s
	return p
}

func (p Proposal) Allows(s Status) bool {
	return oneOf(s, StatusPending, StatusOpened, StatusAccepted, StatusDenied)
}

type ProposalDraft struct {
	ChildID      string
	ProposedTime string
	OriginalTime string
	Reason       string
	Sender       string
}

func (d ProposalDraft) Validate() error {
	if strings.TrimSpace(d.ChildID) == "" {
		return errEmpty("proposal needs a child id")
	}
	if _, err := time.Parse(time.RFC3339, d.ProposedTime); err != nil {
		return fmt.Errorf("proposal time %q: %w", d.ProposedTime, err)
	}
	return nil
}

func (d ProposalDraft) Build(id, createdAt string) Proposal {
	return Proposal{
		ID:           id,
		ChildID:      d.ChildID,
		ProposedTime: d.ProposedTime,
		OriginalTime: d.OriginalTime,
		Reason:       d.Reason,
		Sender:       d.Sender,
		CreatedAt:    createdAt,
		Status:       StatusPending,
	}
}
