package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/parentlink/internal/common"
	"github.com/dmitrijs2005/parentlink/internal/engine"
	"github.com/dmitrijs2005/parentlink/internal/models"
)

type (
	MessageService     = Service[models.Message, models.MessageDraft]
	UrgentMemoService  = Service[models.UrgentMemo, models.UrgentMemoDraft]
	ProposalService    = Service[models.Proposal, models.ProposalDraft]
	PostService        = Service[models.Post, models.PostDraft]
	ArrivalPingService = Service[models.ArrivalPing, models.ArrivalPingDraft]
)

// Facade groups the services of every collection and names the status
// changes screens ask for.
type Facade struct {
	Messages     MessageService
	UrgentMemos  UrgentMemoService
	Proposals    ProposalService
	Posts        PostService
	ArrivalPings ArrivalPingService

	engine    *engine.Engine
	operators map[models.Collection]Operator
}

// NewFacade builds a Service per collection of e. opts apply to all of them.
func NewFacade(e *engine.Engine, opts ...Option) *Facade {
	f := &Facade{
		Messages:     NewService[models.Message, models.MessageDraft](e.Messages, opts...),
		UrgentMemos:  NewService[models.UrgentMemo, models.UrgentMemoDraft](e.UrgentMemos, opts...),
		Proposals:    NewService[models.Proposal, models.ProposalDraft](e.Proposals, opts...),
		Posts:        NewService[models.Post, models.PostDraft](e.Posts, opts...),
		ArrivalPings: NewService[models.ArrivalPing, models.ArrivalPingDraft](e.ArrivalPings, opts...),
		engine:       e,
	}
	f.operators = map[models.Collection]Operator{
		models.CollectionMessages:     newOperator(e.Messages, f.Messages, messageFromText, describeMessage),
		models.CollectionUrgentMemos:  newOperator(e.UrgentMemos, f.UrgentMemos, memoFromText, describeMemo),
		models.CollectionProposals:    newOperator(e.Proposals, f.Proposals, proposalFromText, describeProposal),
		models.CollectionPosts:        newOperator(e.Posts, f.Posts, postFromText, describePost),
		models.CollectionArrivalPings: newOperator(e.ArrivalPings, f.ArrivalPings, pingFromText, describePing),
	}
	return f
}

func (f *Facade) MarkRead(id string) error { return f.Messages.SetStatus(id, models.StatusRead) }
func (f *Facade) MarkUnread(id string) error { return f.Messages.SetStatus(id, models.StatusUnread) }

// Acknowledge confirms an urgent memo was seen.
func (f *Facade) Acknowledge(id string) error {
	return f.UrgentMemos.SetStatus(id, models.StatusAck)
}

func (f *Facade) OpenProposal(id string) error {
	return f.Proposals.SetStatus(id, models.StatusOpened)
}

func (f *Facade) AcceptProposal(id string) error {
	return f.Proposals.SetStatus(id, models.StatusAccepted)
}

func (f *Facade) DenyProposal(id string) error {
	return f.Proposals.SetStatus(id, models.StatusDenied)
}

func (f *Facade) HidePost(id string) error {
	return f.Posts.SetStatus(id, models.StatusHidden)
}

func (f *Facade) MarkArrivalSeen(id string) error {
	return f.ArrivalPings.SetStatus(id, models.StatusSeen)
}

// RefreshAll reconciles every collection and returns the remote failures.
func (f *Facade) RefreshAll(ctx context.Context) error {
	return f.engine.RefreshAll(ctx)
}

// Operator returns the text-driven view of a collection.
func (f *Facade) Operator(name models.Collection) (Operator, error) {
	op, ok := f.operators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownCollection, name)
	}
	return op, nil
}
