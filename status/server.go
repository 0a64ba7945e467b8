// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/rovlink/telebridge/lib/codec"
	"github.com/rovlink/telebridge/lib/version"
	"github.com/rovlink/telebridge/relay"
)

// Reporter is the view of a relay the server needs. *relay.Relay
// satisfies it.
type Reporter interface {
	Stats() relay.Stats
	Clients() []relay.ClientInfo
	Addr() net.Addr
}

const (
	readTimeout    = 5 * time.Second
	writeTimeout   = 5 * time.Second
	maxRequestSize = 4096
)

// Server answers status requests on a Unix socket.
type Server struct {
	socketPath string
	reporter   Reporter
	source     string
	logger     *slog.Logger

	activeConnections sync.WaitGroup
}

// NewServer returns a server for reporter. source describes the
// telemetry source in responses.
func NewServer(socketPath string, reporter Reporter, source string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		reporter:   reporter,
		source:     source,
		logger:     logger,
	}
}

// Serve listens on the socket and answers requests until ctx is
// cancelled, then waits for in-flight requests. A stale socket file at
// the path is replaced; the socket file is removed on return.
func (s *Server) Serve(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.socketPath, err)
	}
	defer func() {
		listener.Close()
		os.Remove(s.socketPath)
	}()

	// Unblock Accept when the context is cancelled.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("status socket listening", "path", s.socketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("status accept failed", "error", err)
			continue
		}

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			s.handleConnection(conn)
		}()
	}

	s.activeConnections.Wait()
	return nil
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	var request Request
	if err := codec.NewDecoder(io.LimitReader(conn, maxRequestSize)).Decode(&request); err != nil {
		if errors.Is(err, io.EOF) {
			return
		}
		s.writeResponse(conn, Response{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	result, err := s.dispatch(request.Action)
	if err != nil {
		s.writeResponse(conn, Response{Error: err.Error()})
		return
	}
	data, err := codec.Marshal(result)
	if err != nil {
		s.writeResponse(conn, Response{Error: fmt.Sprintf("internal: marshaling response: %v", err)})
		return
	}
	s.writeResponse(conn, Response{OK: true, Data: data})
}

func (s *Server) dispatch(action string) (any, error) {
	switch action {
	case ActionStatus:
		listenAddress := ""
		if address := s.reporter.Addr(); address != nil {
			listenAddress = address.String()
		}
		return NewStatus(s.reporter.Stats(), s.source, listenAddress, version.Info()), nil
	case ActionClients:
		infos := s.reporter.Clients()
		clients := make([]Client, 0, len(infos))
		for _, info := range infos {
			clients = append(clients, Client{
				ID:          info.ID,
				RemoteAddr:  info.RemoteAddr,
				ConnectedAt: info.ConnectedAt.Unix(),
			})
		}
		return clients, nil
	case "":
		return nil, errors.New("missing required field: action")
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
}

func (s *Server) writeResponse(conn net.Conn, response Response) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := codec.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Debug("failed to write status response", "error", err)
	}
}
