// Package launch spawns applications detached from the drawer.
package launch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/appdrawer/internal/model"
)

// ErrEmptyCommand is returned for entries without a command.
var ErrEmptyCommand = errors.New("entry has no command")

// Process is a started application.
type Process struct {
	// ID correlates the launch and exit log lines.
	ID    ulid.ULID
	PID   int
	Entry model.Entry
	Argv  []string
}

// Options configures a Launcher.
type Options struct {
	// Terminal is the command prefix for entries with Terminal=true,
	// e.g. ["foot", "-e"]. Empty runs them directly.
	Terminal []string
	// Dir is the working directory; empty uses the home directory.
	Dir    string
	Logger *slog.Logger
	// OnExit is called from the reaper goroutine when a child exits.
	OnExit func(p Process, err error)
}

// Launcher starts processes in their own session and reaps them.
type Launcher struct {
	terminal []string
	dir      string
	logger   *slog.Logger
	onExit   func(Process, error)

	wg sync.WaitGroup
}

// New creates a launcher.
func New(opts Options) *Launcher {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	dir := opts.Dir
	if dir == "" {
		dir, _ = os.UserHomeDir()
	}
	return &Launcher{
		terminal: opts.Terminal,
		dir:      dir,
		logger:   opts.Logger,
		onExit:   opts.OnExit,
	}
}

// TerminalFromEnv splits $TERMINAL into a command prefix, adding -e.
func TerminalFromEnv() []string {
	term := strings.Fields(os.Getenv("TERMINAL"))
	if len(term) == 0 {
		return nil
	}
	return append(term, "-e")
}

// Argv returns the argument vector for e.
func Argv(e model.Entry, terminal []string) ([]string, error) {
	if len(e.Command) == 0 || e.Command[0] == "" {
		return nil, fmt.Errorf("%s: %w", e.ID, ErrEmptyCommand)
	}
	if !e.Terminal || len(terminal) == 0 {
		return append([]string(nil), e.Command...), nil
	}
	argv := make([]string, 0, len(terminal)+len(e.Command))
	argv = append(argv, terminal...)
	return append(argv, e.Command...), nil
}

// Launch starts e and does not wait for it.
func (l *Launcher) Launch(e model.Entry) error {
	_, err := l.Start(e)
	return err
}

// Start spawns e with the inherited environment in a new session. The
// child is reaped on a background goroutine.
func (l *Launcher) Start(e model.Entry) (*Process, error) {
	argv, err := Argv(e, l.terminal)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = l.dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}

	p := Process{ID: ulid.Make(), PID: cmd.Process.Pid, Entry: e, Argv: argv}
	l.logger.Debug("process started", "launch_id", p.ID, "pid", p.PID, "argv", argv)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		err := cmd.Wait()
		l.logger.Debug("process exited", "launch_id", p.ID, "pid", p.PID, "error", err)
		if l.onExit != nil {
			l.onExit(p, err)
		}
	}()

	return &p, nil
}

// Wait blocks until every started child has been reaped.
func (l *Launcher) Wait() {
	l.wg.Wait()
}
