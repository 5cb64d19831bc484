package cli

import (
	"bufio"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/c-bata/go-prompt"
	"github.com/juju/errors"
	"github.com/mattn/go-isatty"
	"github.com/temoto/alive/v2"
)

// Loop feeds operator lines into exec until input ends or Alive stops.
type Loop struct {
	Alive       *alive.Alive
	Interactive bool
	In          io.Reader
	// Prompt runs terminal input and returns only on Ctrl-D.
	Prompt func(exec prompt.Executor, complete prompt.Completer)
	// Exit is called when Alive stops in interactive mode.
	Exit func(code int)
}

func NewLoop(a *alive.Alive, tag string) *Loop {
	return &Loop{
		Alive:       a,
		Interactive: isatty.IsTerminal(os.Stdin.Fd()),
		In:          os.Stdin,
		Prompt: func(exec prompt.Executor, complete prompt.Completer) {
			prompt.New(exec, complete, prompt.OptionPrefix(tag+"> ")).Run()
		},
		Exit: os.Exit,
	}
}

// MainLoop reads operator lines from terminal with completion,
// or line by line from piped stdin. Signals stop the loop via a.
func MainLoop(a *alive.Alive, tag string, exec func(line string), complete prompt.Completer) error {
	l := NewLoop(a, tag)
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	defer signal.Stop(signalCh)
	go func() {
		select {
		case <-signalCh:
			a.Stop()
			if l.Interactive {
				l.Exit(1)
			}
		case <-a.StopChan():
		}
	}()
	return l.Run(exec, complete)
}

func (self *Loop) Run(exec func(line string), complete prompt.Completer) error {
	if !self.Interactive {
		return RunLines(self.Alive, self.In, exec)
	}
	if !self.Alive.IsRunning() {
		return nil
	}
	// prompt.Run has no stop hook, so exit right after the line that stopped us
	self.Prompt(func(line string) {
		exec(line)
		if !self.Alive.IsRunning() {
			self.Exit(0)
		}
	}, complete)
	return nil
}

// RunLines calls exec for every non-empty line until EOF or a stops.
func RunLines(a *alive.Alive, r io.Reader, exec func(line string)) error {
	if !a.Add(1) {
		return nil
	}
	defer a.Done()
	scanner := bufio.NewScanner(r)
	for a.IsRunning() && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		exec(line)
	}
	return errors.Trace(scanner.Err())
}
