package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brendandebeasi/dwlb/pkg/daemon"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		socket  string
		want    []daemon.Message
		wantErr error
	}{
		{
			name: "status",
			args: []string{"-status", "all", "hello world"},
			want: []daemon.Message{{Command: daemon.CmdStatus, Target: "all", Arg: "hello world"}},
		},
		{
			name:   "target socket and several commands",
			args:   []string{"-target-socket", "dwlb-1", "-hide", "DP-1", "-title", "selected", "t"},
			socket: "dwlb-1",
			want: []daemon.Message{
				{Command: daemon.CmdHide, Target: "DP-1"},
				{Command: daemon.CmdTitle, Target: "selected", Arg: "t"},
			},
		},
		{
			name: "placement",
			args: []string{"-set-top", "all", "-set-bottom", "all", "-toggle-location", "all", "-toggle-visibility", "all", "-show", "all"},
			want: []daemon.Message{
				{Command: daemon.CmdSetTop, Target: "all"},
				{Command: daemon.CmdSetBottom, Target: "all"},
				{Command: daemon.CmdToggleLocation, Target: "all"},
				{Command: daemon.CmdToggleVisibility, Target: "all"},
				{Command: daemon.CmdShow, Target: "all"},
			},
		},
		{name: "empty", args: nil, wantErr: errMissingCommand},
		{name: "status missing text", args: []string{"-status", "all"}, wantErr: errMissingOperand},
		{name: "show missing output", args: []string{"-show"}, wantErr: errMissingOperand},
		{name: "target socket missing name", args: []string{"-target-socket"}, wantErr: errMissingOperand},
		{name: "target socket not first", args: []string{"-show", "all", "-target-socket", "dwlb-0"}, wantErr: errUnknownOption},
		{name: "unknown", args: []string{"-frobnicate"}, wantErr: errUnknownOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			socket, actions, err := parseArgs(tt.args)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("parseArgs() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseArgs() error: %v", err)
			}
			if socket != tt.socket {
				t.Errorf("socket = %q, want %q", socket, tt.socket)
			}
			if len(actions) != len(tt.want) {
				t.Fatalf("got %d actions, want %d", len(actions), len(tt.want))
			}
			for i, a := range actions {
				if a.kind != actSend || a.msg != tt.want[i] {
					t.Errorf("action %d = %+v, want send %+v", i, a, tt.want[i])
				}
			}
		})
	}
}

func TestRunVersionAndHelpNeedNoSockets(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-v", "-h"}, nil, &out); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "dwlb-ctl "+version+"\n") || !strings.Contains(out.String(), "-status-stdin") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunWithoutSocketDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	err := run(context.Background(), []string{"-show", "all"}, nil, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "no dwlb socket directory") {
		t.Fatalf("run() error = %v", err)
	}
}

func startServers(t *testing.T, n int) []*daemon.Server {
	t.Helper()
	base := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", base)
	dir := filepath.Join(base, "dwlb")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	var servers []*daemon.Server
	for i := 0; i < n; i++ {
		s := daemon.NewServer(dir)
		if err := s.Start(context.Background()); err != nil {
			t.Fatalf("Start() error: %v", err)
		}
		t.Cleanup(s.Stop)
		servers = append(servers, s)
	}
	return servers
}

func receive(t *testing.T, s *daemon.Server) daemon.Message {
	t.Helper()
	select {
	case msg := <-s.Messages():
		return msg
	case <-time.After(5 * time.Second):
		t.Fatalf("no message on %s", s.SocketPath())
	}
	return daemon.Message{}
}

func TestRunBroadcasts(t *testing.T) {
	servers := startServers(t, 2)
	if err := run(context.Background(), []string{"-status", "all", "^fg(ff0000)x"}, nil, &bytes.Buffer{}); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	want := daemon.Message{Command: daemon.CmdStatus, Target: "all", Arg: "^fg(ff0000)x"}
	for _, s := range servers {
		if got := receive(t, s); got != want {
			t.Errorf("%s got %+v, want %+v", filepath.Base(s.SocketPath()), got, want)
		}
	}
}

func TestRunTargetSocket(t *testing.T) {
	servers := startServers(t, 2)
	if err := run(context.Background(), []string{"-target-socket", "dwlb-1", "-hide", "DP-1"}, nil, &bytes.Buffer{}); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if got := receive(t, servers[1]); got.Command != daemon.CmdHide || got.Target != "DP-1" {
		t.Errorf("dwlb-1 got %+v", got)
	}
	select {
	case msg := <-servers[0].Messages():
		t.Errorf("dwlb-0 got %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRunStatusStdin(t *testing.T) {
	servers := startServers(t, 1)
	in := strings.NewReader("one\r\ntwo\n")
	if err := run(context.Background(), []string{"-status-stdin", "selected"}, in, &bytes.Buffer{}); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	for _, want := range []string{"one", "two"} {
		got := receive(t, servers[0])
		if got.Command != daemon.CmdStatus || got.Target != "selected" || got.Arg != want {
			t.Errorf("got %+v, want status %q", got, want)
		}
	}
}

func TestRunStatusStdinOverlongLine(t *testing.T) {
	servers := startServers(t, 1)
	long := strings.Repeat("x", 2<<20)
	in := strings.NewReader(long + "\nnext")
	if err := run(context.Background(), []string{"-status-stdin", "all"}, in, &bytes.Buffer{}); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	got := receive(t, servers[0])
	if got.Arg == "" || len(got.Arg) >= daemon.MaxMessageSize || strings.Trim(got.Arg, "x") != "" {
		t.Errorf("first status has %d bytes, want a truncated run of x", len(got.Arg))
	}
	if got := receive(t, servers[0]); got.Arg != "next" {
		t.Errorf("second status = %q, want %q", got.Arg, "next")
	}
}

func TestReadLine(t *testing.T) {
	r := bufio.NewReaderSize(strings.NewReader("abcdefghij\r\n\nxyz"), 16)
	for _, want := range []string{"abcd", "", "xyz"} {
		got, err := readLine(r, 4)
		if err != nil {
			t.Fatalf("readLine() error: %v", err)
		}
		if got != want {
			t.Errorf("readLine() = %q, want %q", got, want)
		}
	}
	if _, err := readLine(r, 4); !errors.Is(err, io.EOF) {
		t.Errorf("readLine() at end = %v, want io.EOF", err)
	}
}
