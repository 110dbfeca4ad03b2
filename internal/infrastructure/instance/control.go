package instance

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bnema/webhub/internal/logging"
)

// Control commands understood by the running instance.
const (
	CmdPing         = "ping"
	CmdOpen         = "open"
	CmdToggle       = "toggle"
	CmdClose        = "close"
	CmdShortcut     = "shortcut"
	CmdShowMain     = "show-main"
	CmdReloadConfig = "reload-config"

	// CmdWindows answers with a JSON array of the webapp ids that have a live window.
	CmdWindows = "windows"
)

const (
	requestTimeout = 10 * time.Second
	maxRequestSize = 64 * 1024
)

// ErrNotRunning is returned by Send when no instance listens on the socket.
var ErrNotRunning = errors.New("webhub is not running")

// Request is one line on the control socket.
type Request struct {
	Command  string `json:"command"`
	WebAppID string `json:"webapp_id,omitempty"`
	Shortcut string `json:"shortcut,omitempty"`
}

// Response answers a Request.
type Response struct {
	OK     bool   `json:"ok"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Handler executes control requests inside the running instance.
type Handler interface {
	HandleControl(ctx context.Context, req Request) (string, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req Request) (string, error)

func (f HandlerFunc) HandleControl(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Server accepts control connections on a unix socket.
type Server struct {
	path    string
	handler Handler

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

// NewServer creates a server for the socket at path.
func NewServer(path string, handler Handler) *Server {
	return &Server{path: path, handler: handler}
}

// Listen binds the socket. A leftover socket file is replaced; callers must
// hold the instance Lock so it cannot belong to a live process.
func (s *Server) Listen() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale socket %s: %w", s.path, err)
	}
	l, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("unable to listen on %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, lockFilePerm); err != nil {
		_ = l.Close()
		return fmt.Errorf("failed to restrict socket permissions: %w", err)
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	return nil
}

// Serve accepts connections until ctx is done. Listen must have succeeded.
func (s *Server) Serve(ctx context.Context) error {
	ctx = logging.WithComponent(ctx, "control")
	log := logging.FromContext(ctx)

	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return errors.New("control server is not listening")
	}

	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()

	log.Debug().Str("socket", s.path).Msg("control socket ready")
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				_ = os.Remove(s.path)
				return nil
			}
			log.Warn().Err(err).Msg("accept failed")
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, conn)
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()
	log := logging.FromContext(ctx)
	_ = conn.SetDeadline(time.Now().Add(requestTimeout))

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxRequestSize)
	if !scanner.Scan() {
		return
	}

	var resp Response
	var req Request
	if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
		resp.Error = fmt.Sprintf("malformed request: %v", err)
	} else {
		log.Debug().Str("command", req.Command).Str("webapp_id", req.WebAppID).Msg("control request")
		result, err := s.handler.HandleControl(ctx, req)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.OK = true
			resp.Result = result
		}
	}

	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		log.Debug().Err(err).Msg("failed to write control response")
	}
}

// Send delivers req to the instance listening on path.
func Send(ctx context.Context, path string, req Request) (Response, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, unix.ECONNREFUSED) {
			return Response{}, ErrNotRunning
		}
		return Response{}, fmt.Errorf("unable to reach webhub at %s: %w", path, err)
	}
	defer func() { _ = conn.Close() }()

	deadline := time.Now().Add(requestTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetDeadline(deadline)

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Response{}, fmt.Errorf("failed to send request: %w", err)
	}

	var resp Response
	if err := json.NewDecoder(bufio.NewReader(conn)).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("failed to read response: %w", err)
	}
	return resp, nil
}

// Err returns the response's error, if any.
func (r Response) Err() error {
	if r.OK {
		return nil
	}
	if r.Error == "" {
		return errors.New("request failed")
	}
	return errors.New(r.Error)
}
