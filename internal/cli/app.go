package cli

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/parentlink/internal/engine"
	"github.com/dmitrijs2005/parentlink/internal/logging"
	"github.com/dmitrijs2005/parentlink/internal/services"
)

// Mode is the connectivity the watcher last observed.
type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Pinger answers whether the remote is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App is the interactive operator console over the facade.
type App struct {
	facade *services.Facade
	engine *engine.Engine
	pinger Pinger
	log    logging.Logger
	in     io.Reader
	out    io.Writer

	mu   sync.Mutex
	mode Mode
}

// NewApp builds an App reading commands from in. A nil log discards output.
func NewApp(e *engine.Engine, f *services.Facade, p Pinger, log logging.Logger, in io.Reader, out io.Writer) *App {
	if log == nil {
		log = logging.Nop()
	}
	return &App{facade: f, engine: e, pinger: p, log: log, in: in, out: out}
}

// Mode returns the current connectivity.
func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// setMode switches the mode and reports whether it changed.
func (a *App) setMode(ctx context.Context, mode Mode) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode == mode {
		return false
	}
	a.mode = mode
	a.log.Info(ctx, "connectivity changed", "mode", string(mode))
	return true
}

// Run starts the watcher and the REPL and returns when the user exits or
// input ends.
func (a *App) Run(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, interval)

	printlnFn("parentlink console (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(a.in))
}

func (a *App) status() string {
	if m := a.Mode(); m != "" {
		return "(" + string(m) + ")"
	}
	return ""
}

// StartOnlineStatusWatcher pings the remote every interval. Coming back
// online refreshes every collection.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.pinger.Ping(pctx)
	cancel()

	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	if !a.setMode(ctx, ModeOnline) {
		return
	}
	if err := a.facade.RefreshAll(ctx); err != nil {
		a.log.Warn(ctx, "refresh after reconnect incomplete", "error", err)
	}
}
