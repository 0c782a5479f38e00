package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string
	err   error
}

func (f *fakeExec) record(parts ...string) error {
	f.calls = append(f.calls, strings.Join(parts, " "))
	return f.err
}

func (f *fakeExec) List(_ context.Context, col string) error { return f.record("list", col) }
func (f *fakeExec) Post(_ context.Context, col, text string) error {
	return f.record("post", col, text)
}
func (f *fakeExec) SetStatus(_ context.Context, col, id, status string) error {
	return f.record("status", col, id, status)
}
func (f *fakeExec) Delete(_ context.Context, col, id string) error {
	return f.record("delete", col, id)
}
func (f *fakeExec) Retry(_ context.Context, col, id string) error { return f.record("retry", col, id) }
func (f *fakeExec) Refresh(_ context.Context, col string) error { return f.record("refresh", col) }
func (f *fakeExec) State(context.Context) error { return f.record("state") }

func capturePrint(t *testing.T) *[]string {
	t.Helper()
	var out []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		out = append(out, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &out
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	capturePrint(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"list messages",
		"post posts bake sale friday",
		"",
		"status messages m1 read",
		"delete proposals p1",
		"retry urgent_memos tmp_memo_1",
		"refresh",
		"refresh posts",
		"state",
		"exit",
		"list never",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(online)" }, bufio.NewScanner(input))

	assert.Equal(t, []string{
		"list messages",
		"post posts bake sale friday",
		"status messages m1 read",
		"delete proposals p1",
		"retry urgent_memos tmp_memo_1",
		"refresh ",
		"refresh posts",
		"state",
	}, exec.calls)
}

func TestRunREPL_UsageAndUnknown(t *testing.T) {
	out := capturePrint(t)

	input := strings.NewReader("status messages\nfoobar\nquit\n")
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *out, "Usage: status <collection> <id> <status>")
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Equal(t, "Bye!", (*out)[len(*out)-1])
}

func TestRunREPL_PrintsCommandErrors(t *testing.T) {
	out := capturePrint(t)

	exec := &fakeExec{err: errors.New("boom")}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("state\n")))

	assert.Equal(t, []string{"state"}, exec.calls)
	assert.Contains(t, *out, "Error: boom")
}
