package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/parentlink/internal/common"
	"github.com/dmitrijs2005/parentlink/internal/models"
	"github.com/dmitrijs2005/parentlink/internal/services"
)

// collection checks a name typed by the operator.
func collection(name string) (models.Collection, error) {
	c := models.Collection(name)
	if !c.Valid() {
		names := make([]string, 0, len(models.Collections))
		for _, n := range models.Collections {
			names = append(names, string(n))
		}
		return "", fmt.Errorf("%w: %q, want one of %s", common.ErrUnknownCollection, name, strings.Join(names, ", "))
	}
	return c, nil
}

func (a *App) operator(name string) (services.Operator, error) {
	c, err := collection(name)
	if err != nil {
		return nil, err
	}
	return a.facade.Operator(c)
}

func (a *App) List(ctx context.Context, col string) error {
	op, err := a.operator(col)
	if err != nil {
		return err
	}
	lines := op.Lines()
	if len(lines) == 0 {
		printlnFn("(empty)")
	}
	for _, l := range lines {
		printlnFn(l)
	}
	return nil
}

func (a *App) Post(ctx context.Context, col, text string) error {
	op, err := a.operator(col)
	if err != nil {
		return err
	}
	id, err := op.CreateFromText(text)
	if err != nil {
		return err
	}
	printlnFn("Created", id)
	return nil
}

func (a *App) SetStatus(ctx context.Context, col, id, status string) error {
	op, err := a.operator(col)
	if err != nil {
		return err
	}
	return op.SetStatus(id, models.Status(status))
}

func (a *App) Delete(ctx context.Context, col, id string) error {
	op, err := a.operator(col)
	if err != nil {
		return err
	}
	return op.Remove(id)
}

func (a *App) Retry(ctx context.Context, col, id string) error {
	op, err := a.operator(col)
	if err != nil {
		return err
	}
	return op.Retry(id)
}

// Refresh reconciles col, or every collection when col is empty.
func (a *App) Refresh(ctx context.Context, col string) error {
	if col == "" {
		return a.facade.RefreshAll(ctx)
	}
	c, err := collection(col)
	if err != nil {
		return err
	}
	return a.engine.Refresh(ctx, c)
}

func (a *App) State(ctx context.Context) error {
	for _, st := range a.engine.Status() {
		printlnFn(fmt.Sprintf("%-14s %-17s records=%d pending=%d failed=%d",
			st.Name, st.State, st.Records, st.Pending, st.Failed))
	}
	return nil
}
