package click

import (
	"context"
	"fmt"
	"os/exec"
	"syscall"

	"pkt.systems/pslog"
)

// Spawner starts shell commands bound to clicks.
type Spawner interface {
	Spawn(ctx context.Context, command string) error
}

// ShellSpawner runs commands with "sh -c" in a new session with standard
// streams on /dev/null. The exit status is never reported back: a
// goroutine reaps the child, so a failing command only shows up in the
// debug log.
type ShellSpawner struct {
	Shell string
}

func (s ShellSpawner) Spawn(ctx context.Context, command string) error {
	shell := s.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.Command(shell, "-c", command)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %q: %w", command, err)
	}
	log := pslog.Ctx(ctx)
	go func() {
		err := cmd.Wait()
		log.Debug("command exited", "cmd", command, "pid", cmd.Process.Pid, "err", err)
	}()
	return nil
}
