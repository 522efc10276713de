// Command dwlb-ctl sends control messages to running dwlb instances.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/term"
	"pkt.systems/psi"
	"pkt.systems/pslog"

	"github.com/brendandebeasi/dwlb/pkg/daemon"
	"github.com/brendandebeasi/dwlb/pkg/paths"
)

const version = "0.2"

const usage = `usage: dwlb-ctl [-target-socket SOCKET-NAME] COMMAND...
Commands
    -target-socket SOCKET-NAME     send only to this socket (must come first).
                                   Sockets live in $XDG_RUNTIME_DIR/dwlb/
    -status        OUTPUT TEXT     set status text
    -status-stdin  OUTPUT          set status text from each line of stdin
    -title         OUTPUT TEXT     set a custom title
    -show          OUTPUT          show bar
    -hide          OUTPUT          hide bar
    -toggle-visibility OUTPUT      toggle bar visibility
    -set-top       OUTPUT          draw bar at the top
    -set-bottom    OUTPUT          draw bar at the bottom
    -toggle-location OUTPUT        toggle bar location

  OUTPUT "all" applies to every output and "selected" to the focused one.
Other
    -v                             print version
    -h                             print this help
`

var (
	errMissingCommand = errors.New("missing command")
	errUnknownOption  = errors.New("option not recognized")
	errMissingOperand = errors.New("missing operand")
)

type actionKind int

const (
	actSend actionKind = iota
	actStdin
	actVersion
	actHelp
)

type action struct {
	kind actionKind
	msg  daemon.Message
}

var commandFlags = map[string]daemon.Command{
	"-status":            daemon.CmdStatus,
	"-title":             daemon.CmdTitle,
	"-show":              daemon.CmdShow,
	"-hide":              daemon.CmdHide,
	"-toggle-visibility": daemon.CmdToggleVisibility,
	"-set-top":           daemon.CmdSetTop,
	"-set-bottom":        daemon.CmdSetBottom,
	"-toggle-location":   daemon.CmdToggleLocation,
}

// parseArgs turns argv (without the program name) into the socket filter
// and the ordered list of actions.
func parseArgs(args []string) (socket string, actions []action, err error) {
	if len(args) == 0 {
		return "", nil, errMissingCommand
	}
	i := 0
	if args[0] == "-target-socket" {
		if len(args) < 2 {
			return "", nil, fmt.Errorf("%w: -target-socket requires a socket name", errMissingOperand)
		}
		socket = args[1]
		i = 2
	}
	for ; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-v":
			actions = append(actions, action{kind: actVersion})
			continue
		case "-h", "-help", "--help":
			actions = append(actions, action{kind: actHelp})
			continue
		case "-status-stdin":
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("%w: %s requires an output", errMissingOperand, arg)
			}
			i++
			actions = append(actions, action{kind: actStdin, msg: daemon.Message{Command: daemon.CmdStatus, Target: args[i]}})
			continue
		}
		cmd, ok := commandFlags[arg]
		if !ok {
			return "", nil, fmt.Errorf("%w: %q", errUnknownOption, arg)
		}
		msg := daemon.Message{Command: cmd}
		if cmd.TakesArg() {
			if i+2 >= len(args) {
				return "", nil, fmt.Errorf("%w: %s requires an output and text", errMissingOperand, arg)
			}
			msg.Target, msg.Arg = args[i+1], args[i+2]
			i += 2
		} else {
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("%w: %s requires an output", errMissingOperand, arg)
			}
			msg.Target = args[i+1]
			i++
		}
		actions = append(actions, action{kind: actSend, msg: msg})
	}
	return socket, actions, nil
}

type client struct {
	dir    string
	socket string
	stdin  io.Reader
	stdout io.Writer
}

// send delivers msg to the selected socket, or to every instance. A
// failure on one socket is logged and does not stop the others.
func (c *client) send(ctx context.Context, msg daemon.Message) error {
	log := pslog.Ctx(ctx)
	if c.socket != "" {
		err := daemon.Send(ctx, filepath.Join(c.dir, c.socket), msg.Encode())
		if err != nil {
			log.Warn("send failed", "socket", c.socket, "err", err)
		}
		return nil
	}
	results, err := daemon.Broadcast(ctx, c.dir, paths.SocketPrefix, msg)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil {
			log.Warn("send failed", "socket", filepath.Base(r.Socket), "err", r.Err)
		}
	}
	return nil
}

// streamStatus sends one status update per input line.
func (c *client) streamStatus(ctx context.Context, msg daemon.Message) error {
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pslog.Ctx(ctx).Info("reading status lines from the terminal, end with Ctrl-D")
	}
	r := bufio.NewReaderSize(c.stdin, daemon.MaxMessageSize)
	for {
		line, err := readLine(r, daemon.MaxMessageSize)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		msg.Arg = line
		if err := c.send(ctx, msg); err != nil {
			return err
		}
	}
}

// readLine returns the next line without its line ending, keeping at
// most limit bytes. The rest of an overlong line is discarded.
func readLine(r *bufio.Reader, limit int) (string, error) {
	var line []byte
	for {
		chunk, more, err := r.ReadLine()
		if err != nil {
			return "", err
		}
		if room := limit - len(line); room > 0 {
			line = append(line, chunk[:min(room, len(chunk))]...)
		}
		if !more {
			return string(line), nil
		}
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	socket, actions, err := parseArgs(args)
	if err != nil {
		return err
	}
	c := &client{socket: socket, stdin: stdin, stdout: stdout}
	for _, a := range actions {
		switch a.kind {
		case actVersion:
			fmt.Fprintf(stdout, "dwlb-ctl %s\n", version)
			continue
		case actHelp:
			fmt.Fprint(stdout, usage)
			continue
		}
		if c.dir == "" {
			dir, err := paths.RuntimeDir()
			if err != nil {
				return err
			}
			if st, err := os.Stat(dir); err != nil || !st.IsDir() {
				return fmt.Errorf("no dwlb socket directory at %s", dir)
			}
			c.dir = dir
		}
		if a.kind == actStdin {
			err = c.streamStatus(ctx, a.msg)
		} else {
			err = c.send(ctx, a.msg)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errMissingCommand) || errors.Is(err, errUnknownOption) || errors.Is(err, errMissingOperand) {
			fmt.Fprintf(os.Stderr, "dwlb-ctl: %v\n%s", err, usage)
			return 2
		}
		logger.Error("dwlb-ctl failed", "err", err)
		return 1
	}
	return 0
}
