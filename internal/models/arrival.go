package models

import "strings"

// ArrivalPing tells staff a guardian is on the way. The geofencing that
// produces it lives outside this module.
type ArrivalPing struct {
	ID        string `json:"id" yaml:"id"`
	ChildID   string `json:"childId" yaml:"childId"`
	Guardian  string `json:"guardian" yaml:"guardian"`
	ETA       string `json:"eta,omitempty" yaml:"eta,omitempty"`
	Note      string `json:"note,omitempty" yaml:"note,omitempty"`
	CreatedAt string `json:"createdAt" yaml:"createdAt"`
	Status    Status `json:"status" yaml:"status"`
}

func (a ArrivalPing) EntityID() string { return a.ID }

func (a ArrivalPing) WithStatus(s Status) ArrivalPing {
	a.Status = s
	return a
}

func (a ArrivalPing) Allows(s Status) bool { return oneOf(s, StatusPending, StatusSeen) }

type ArrivalPingDraft struct {
	ChildID  string
	Guardian string
	ETA      string
	Note     string
}

func (d ArrivalPingDraft) Validate() error {
	if strings.TrimSpace(d.ChildID) == "" || strings.TrimSpace(d.Guardian) == "" {
		return errEmpty("arrival ping needs a child id and a guardian")
	}
	return nil
}

func (d ArrivalPingDraft) Build(id, createdAt string) ArrivalPing {
	return ArrivalPing{
		ID:        id,
		ChildID:   d.ChildID,
		Guardian:  d.Guardian,
		ETA:       d.ETA,
		Note:      d.Note,
		CreatedAt: createdAt,
		Status:    StatusPending,
	}
}
