package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/brendandebeasi/dwlb/pkg/paths"
	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"
	"pkt.systems/pslog"
)

// MaxSockets is the number of socket slots tried at startup.
const MaxSockets = 50

// ErrNoSocketSlot means every slot in the runtime directory is taken.
var ErrNoSocketSlot = errors.New("no free socket slot")

const (
	readTimeout  = time.Second
	probeTimeout = 200 * time.Millisecond
)

// Server accepts control connections on one socket slot and hands each
// decoded message to the event loop through Messages.
type Server struct {
	dir        string
	socketPath string
	lock       *flock.Flock
	listener   *net.UnixListener
	messages   chan Message
	done       chan struct{}
	wg         sync.WaitGroup
	stopOnce   sync.Once
	uid        uint32
	log        pslog.Logger
}

// NewServer creates a server that will claim a slot in dir.
func NewServer(dir string) *Server {
	return &Server{
		dir:      dir,
		messages: make(chan Message, 16),
		done:     make(chan struct{}),
		uid:      uint32(os.Getuid()),
	}
}

// Start claims the first free slot and begins accepting connections.
func (s *Server) Start(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create socket dir: %w", err)
	}
	for n := 0; n < MaxSockets; n++ {
		ok, err := s.claim(paths.SocketPath(s.dir, n))
		if err != nil {
			return err
		}
		if ok {
			break
		}
	}
	if s.listener == nil {
		return fmt.Errorf("%w in %s", ErrNoSocketSlot, s.dir)
	}
	s.log = pslog.Ctx(ctx).With("socket", s.socketPath)
	s.log.Info("control socket listening")

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// claim takes slot path if its lock is free and no live server answers
// on the socket. A leftover socket from a crashed instance is replaced.
func (s *Server) claim(path string) (bool, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("lock %s: %w", lock.Path(), err)
	}
	if !locked {
		return false, nil
	}
	if conn, err := net.DialTimeout("unix", path, probeTimeout); err == nil {
		conn.Close()
		lock.Unlock()
		return false, nil
	}
	os.Remove(path)

	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		lock.Unlock()
		return false, fmt.Errorf("failed to listen on socket: %w", err)
	}
	s.lock = lock
	s.listener = l
	s.socketPath = path
	return true, nil
}

// Messages delivers decoded messages in arrival order. It is closed by Stop.
func (s *Server) Messages() <-chan Message {
	return s.messages
}

// SocketPath returns the claimed socket path.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Stop shuts down the server and removes its socket and lock file.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		close(s.messages)
		if s.socketPath != "" {
			os.Remove(s.socketPath)
		}
		if s.lock != nil {
			os.Remove(s.lock.Path())
			s.lock.Unlock()
		}
	})
}

// acceptLoop serves connections one at a time so messages keep the
// order they arrived in.
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.AcceptUnix()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn("accept failed", "err", err)
			continue
		}
		msg, err := s.readMessage(conn)
		conn.Close()
		if err != nil {
			s.log.Debug("dropping control message", "err", err)
			continue
		}
		select {
		case s.messages <- msg:
		case <-s.done:
			return
		}
	}
}

func (s *Server) readMessage(conn *net.UnixConn) (Message, error) {
	uid, err := peerUID(conn)
	if err != nil {
		return Message{}, err
	}
	if uid != s.uid {
		return Message{}, fmt.Errorf("peer uid %d rejected", uid)
	}
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	data, err := io.ReadAll(io.LimitReader(conn, MaxMessageSize))
	if err != nil {
		return Message{}, fmt.Errorf("read: %w", err)
	}
	return Decode(data)
}

func peerUID(conn *net.UnixConn) (uint32, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, fmt.Errorf("peer credentials: %w", err)
	}
	var cred *unix.Ucred
	var credErr error
	if err := raw.Control(func(fd uintptr) {
		cred, credErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); err != nil {
		return 0, fmt.Errorf("peer credentials: %w", err)
	}
	if credErr != nil {
		return 0, fmt.Errorf("peer credentials: %w", credErr)
	}
	return cred.Uid, nil
}
