package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = "127.0.0.1:9257"

	// acceptTimeout bounds each accept attempt so the loop can observe
	// context cancellation between attempts without a dedicated signal
	// threaded through the blocking accept call.
	acceptTimeout = time.Second

	serverName = "oss-indexer"
)

// Version is the server version reported in the initialize response.
var Version = "0.1.0"

// Server accepts protocol connections and serves each one with its own
// isolated document session.
type Server struct {
	addr string
	log  *slog.Logger
}

// NewServer returns a Server listening on addr, or DefaultAddr when addr is
// empty.
func NewServer(addr string, log *slog.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{addr: addr, log: log}
}

// Listen accepts connections until ctx is canceled. Each accepted connection
// is handled by its own goroutine owning a private session; failures on one
// connection never affect another.
func (s *Server) Listen(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("lsp listen on %s: %w", s.addr, err)
	}
	defer listener.Close()
	s.log.Info("lsp server listening", "addr", s.addr)

	tcpListener, _ := listener.(*net.TCPListener)
	for {
		if tcpListener != nil {
			_ = tcpListener.SetDeadline(time.Now().Add(acceptTimeout))
		}
		conn, err := listener.Accept()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
					continue
				}
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Error("failed to accept lsp client", "error", err)
			continue
		}
		s.log.Info("lsp client connected", "peer", conn.RemoteAddr())
		go s.serveConn(ctx, conn)
	}
}

// serveConn runs the JSON-RPC loop for one connection. The session is owned
// by this connection alone and discarded when the connection ends.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	rpc := jsonrpc2.NewConn(jsonrpc2.NewStream(conn))
	sess := newSession(s.log.With("peer", conn.RemoteAddr().String()))
	rpc.Go(ctx, s.handler(rpc, sess))
	select {
	case <-rpc.Done():
	case <-ctx.Done():
		rpc.Close()
		<-rpc.Done()
	}
}

// handler dispatches protocol methods onto the connection's session.
func (s *Server) handler(rpc jsonrpc2.Conn, sess *session) jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		switch req.Method() {
		case protocol.MethodInitialize:
			return reply(ctx, initializeResult(), nil)

		case protocol.MethodInitialized:
			s.notifyClient(ctx, rpc, protocol.MessageTypeInfo, "Indexer LSP ready")
			return reply(ctx, nil, nil)

		case protocol.MethodShutdown:
			return reply(ctx, nil, nil)

		case protocol.MethodExit:
			return rpc.Close()

		case protocol.MethodTextDocumentDidOpen:
			var params protocol.DidOpenTextDocumentParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			if err := sess.open(ctx, params.TextDocument); err != nil {
				s.notifyClient(ctx, rpc, protocol.MessageTypeWarning, fmt.Sprintf("Failed to parse document: %v", err))
			}
			return reply(ctx, nil, nil)

		case protocol.MethodTextDocumentDidChange:
			var params protocol.DidChangeTextDocumentParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			if err := sess.change(ctx, params.TextDocument.URI, params.ContentChanges); err != nil {
				s.notifyClient(ctx, rpc, protocol.MessageTypeWarning, fmt.Sprintf("Failed to update document: %v", err))
			}
			return reply(ctx, nil, nil)

		case protocol.MethodTextDocumentDidClose:
			var params protocol.DidCloseTextDocumentParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			sess.closeDocument(params.TextDocument.URI)
			return reply(ctx, nil, nil)

		case protocol.MethodTextDocumentHover:
			var params protocol.HoverParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, sess.hover(params.TextDocument.URI, params.Position), nil)

		case protocol.MethodTextDocumentDefinition:
			var params protocol.DefinitionParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, sess.definition(params.TextDocument.URI, params.Position), nil)

		case protocol.MethodTextDocumentReferences:
			var params protocol.ReferenceParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, sess.references(params.TextDocument.URI, params.Position, params.Context.IncludeDeclaration), nil)

		default:
			return reply(ctx, nil, jsonrpc2.ErrMethodNotFound)
		}
	}
}

// initializeResult advertises full-document synchronization plus hover,
// definition, and references support.
func initializeResult() protocol.InitializeResult {
	return protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			HoverProvider:      true,
			DefinitionProvider: true,
			ReferencesProvider: true,
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    serverName,
			Version: Version,
		},
	}
}

// notifyClient sends a window/logMessage notification, logging locally when
// the notification itself fails.
func (s *Server) notifyClient(ctx context.Context, rpc jsonrpc2.Conn, level protocol.MessageType, message string) {
	err := rpc.Notify(ctx, protocol.MethodWindowLogMessage, &protocol.LogMessageParams{
		Type:    level,
		Message: message,
	})
	if err != nil {
		s.log.Warn("failed to notify client", "error", err)
	}
}
