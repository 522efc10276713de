package daemon

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/brendandebeasi/dwlb/pkg/paths"
)

const dialTimeout = time.Second

// Result is the outcome of sending to one socket.
type Result struct {
	Socket string
	Err    error
}

// Sockets lists the control sockets in dir whose names start with
// prefix, sorted by name. An empty prefix matches every socket.
func Sockets(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read socket dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if !paths.IsSocketName(name) || !strings.HasPrefix(name, prefix) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}

// Broadcast sends msg to every matching socket. Each send is
// independent: a dead socket is reported in its Result and the rest are
// still tried.
func Broadcast(ctx context.Context, dir, prefix string, msg Message) ([]Result, error) {
	sockets, err := Sockets(dir, prefix)
	if err != nil {
		return nil, err
	}
	data := msg.Encode()
	results := make([]Result, 0, len(sockets))
	for _, path := range sockets {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, Result{Socket: path, Err: Send(ctx, path, data)})
	}
	return results, nil
}

// Send delivers one encoded message to the socket at path.
func Send(ctx context.Context, path string, data []byte) error {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return fmt.Errorf("connect %s: %w", filepath.Base(path), err)
	}
	defer conn.Close()
	conn.SetWriteDeadline(time.Now().Add(dialTimeout))
	if _, err := conn.Write(truncate(data, MaxMessageSize)); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
