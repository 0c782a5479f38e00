package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/parentlink/internal/engine"
	"github.com/dmitrijs2005/parentlink/internal/models"
	"github.com/dmitrijs2005/parentlink/internal/store"
)

// Operator drives a collection from plain text, for the operator REPL.
type Operator interface {
	Name() models.Collection
	// CreateFromText builds a draft from text and creates it. It returns
	// the temporary id.
	CreateFromText(text string) (string, error)
	SetStatus(id string, status models.Status) error
	Remove(id string) error
	Retry(id string) error
	// Lines renders the collection, one record per line.
	Lines() []string
}

type operator[T Record[T], D Draft[T]] struct {
	col      *engine.Collection[T]
	svc      Service[T, D]
	parse    func(string) (D, error)
	describe func(T) string
}

func newOperator[T Record[T], D Draft[T]](col *engine.Collection[T], svc Service[T, D], parse func(string) (D, error), describe func(T) string) Operator {
	return &operator[T, D]{col: col, svc: svc, parse: parse, describe: describe}
}

func (o *operator[T, D]) Name() models.Collection { return o.col.Name() }

func (o *operator[T, D]) CreateFromText(text string) (string, error) {
	d, err := o.parse(strings.TrimSpace(text))
	if err != nil {
		return "", err
	}
	rec, err := o.svc.Create(d)
	if err != nil {
		return "", err
	}
	return rec.EntityID(), nil
}

func (o *operator[T, D]) SetStatus(id string, status models.Status) error {
	return o.svc.SetStatus(id, status)
}

func (o *operator[T, D]) Remove(id string) error { return o.svc.Remove(id) }
func (o *operator[T, D]) Retry(id string) error { return o.svc.Retry(id) }

func (o *operator[T, D]) Lines() []string {
	items := o.svc.Snapshot()
	out := make([]string, 0, len(items))
	for _, it := range items {
		origin := store.OriginConfirmed
		if _, og, ok := o.col.Store().Get(it.EntityID()); ok {
			origin = og
		}
		mark := ""
		if origin != store.OriginConfirmed {
			mark = " [" + string(origin) + "]"
		}
		out = append(out, fmt.Sprintf("%s  %s%s", it.EntityID(), o.describe(it), mark))
	}
	return out
}

// fields splits text into n leading words and the remainder.
func fields(text string, n int) ([]string, string, error) {
	parts := strings.Fields(text)
	if len(parts) < n {
		return nil, "", fmt.Errorf("expected at least %d words, got %d", n, len(parts))
	}
	rest := strings.Join(parts[n:], " ")
	return parts[:n], rest, nil
}

func messageFromText(text string) (models.MessageDraft, error) {
	return models.MessageDraft{Title: text, Body: text}, nil
}

// memoFromText reads "<childId> <title...>".
func memoFromText(text string) (models.UrgentMemoDraft, error) {
	head, rest, err := fields(text, 1)
	if err != nil {
		return models.UrgentMemoDraft{}, err
	}
	return models.UrgentMemoDraft{ChildID: head[0], Title: rest}, nil
}

// proposalFromText reads "<childId> <RFC3339 time> [reason...]".
func proposalFromText(text string) (models.ProposalDraft, error) {
	head, rest, err := fields(text, 2)
	if err != nil {
		return models.ProposalDraft{}, err
	}
	return models.ProposalDraft{ChildID: head[0], ProposedTime: head[1], Reason: rest}, nil
}

func postFromText(text string) (models.PostDraft, error) {
	return models.PostDraft{Body: text}, nil
}

// pingFromText reads "<childId> <guardian> [eta]". A bare number of minutes
// is turned into an ETA.
func pingFromText(text string) (models.ArrivalPingDraft, error) {
	head, rest, err := fields(text, 2)
	if err != nil {
		return models.ArrivalPingDraft{}, err
	}
	eta := rest
	if d, err := time.ParseDuration(rest + "m"); err == nil && rest != "" {
		eta = d.String()
	}
	return models.ArrivalPingDraft{ChildID: head[0], Guardian: head[1], ETA: eta}, nil
}

func describeMessage(m models.Message) string {
	return fmt.Sprintf("%-7s %s", m.Status, m.Title)
}

func describeMemo(m models.UrgentMemo) string {
	return fmt.Sprintf("%-7s child=%s %s", m.Status, m.ChildID, m.Title)
}

func describeProposal(p models.Proposal) string {
	return fmt.Sprintf("%-8s child=%s at=%s %s", p.Status, p.ChildID, p.ProposedTime, p.Reason)
}

func describePost(p models.Post) string {
	return fmt.Sprintf("%-9s %s", p.Status, p.Body)
}

func describePing(a models.ArrivalPing) string {
	return fmt.Sprintf("%-7s child=%s guardian=%s eta=%s", a.Status, a.ChildID, a.Guardian, a.ETA)
}
