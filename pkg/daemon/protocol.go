package daemon

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxMessageSize bounds one encoded control message. Senders truncate,
// the server never reads more.
const MaxMessageSize = 4096

// Command is the tag byte that starts every control message.
type Command byte

const (
	CmdStatus Command = iota + 1
	CmdTitle
	CmdShow
	CmdHide
	CmdToggleVisibility
	CmdSetTop
	CmdSetBottom
	CmdToggleLocation
)

var commandNames = map[Command]string{
	CmdStatus:           "status",
	CmdTitle:            "title",
	CmdShow:             "show",
	CmdHide:             "hide",
	CmdToggleVisibility: "toggle-visibility",
	CmdSetTop:           "set-top",
	CmdSetBottom:        "set-bottom",
	CmdToggleLocation:   "toggle-location",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", byte(c))
}

// TakesArg reports whether the command carries text after the target.
func (c Command) TakesArg() bool {
	return c == CmdStatus || c == CmdTitle
}

var (
	ErrMessageEmpty    = errors.New("empty message")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingTarget   = errors.New("missing target")
	ErrMissingArgument = errors.New("missing argument")
)

// Message is one decoded control request. Target is "all", "selected"
// or an output name.
type Message struct {
	Command Command
	Target  string
	Arg     string
}

func (m Message) String() string {
	if m.Command.TakesArg() {
		return fmt.Sprintf("%s %s %q", m.Command, m.Target, m.Arg)
	}
	return fmt.Sprintf("%s %s", m.Command, m.Target)
}

// Encode serializes m as the tag byte followed by "<target>[ <arg>]",
// truncated to MaxMessageSize on a rune boundary.
func (m Message) Encode() []byte {
	size := 1 + len(m.Target)
	if m.Command.TakesArg() {
		size += 1 + len(m.Arg)
	}
	buf := make([]byte, 0, min(size, MaxMessageSize))
	buf = append(buf, byte(m.Command))
	buf = append(buf, m.Target...)
	if m.Command.TakesArg() {
		buf = append(buf, ' ')
		buf = append(buf, m.Arg...)
	}
	return truncate(buf, MaxMessageSize)
}

func truncate(b []byte, limit int) []byte {
	if len(b) <= limit {
		return b
	}
	cut := limit
	for cut > 1 && !utf8.RuneStart(b[cut]) {
		cut--
	}
	return b[:cut]
}

// Decode parses one message. Commands other than status and title
// ignore anything after the target.
func Decode(data []byte) (Message, error) {
	if len(data) == 0 {
		return Message{}, ErrMessageEmpty
	}
	cmd := Command(data[0])
	if _, ok := commandNames[cmd]; !ok {
		return Message{}, fmt.Errorf("%w: %d", ErrUnknownCommand, data[0])
	}
	rest := string(data[1:])
	target, arg, hasArg := strings.Cut(rest, " ")
	if target == "" {
		return Message{}, fmt.Errorf("%s: %w", cmd, ErrMissingTarget)
	}
	msg := Message{Command: cmd, Target: target}
	if cmd.TakesArg() {
		if !hasArg {
			return Message{}, fmt.Errorf("%s: %w", cmd, ErrMissingArgument)
		}
		msg.Arg = arg
	}
	return msg, nil
}
