package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

// maxRequestBytes bounds one request line; control commands are tiny.
const maxRequestBytes = 4096

// Handler processes one control command.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve accepts control clients on the listener until ctx cancellation closes
// it. Each connection carries exactly one line-framed JSON request and
// receives one JSON response.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	var conns sync.WaitGroup
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				conns.Wait()
				return nil
			}
			return fmt.Errorf("accept control connection: %w", err)
		}

		conns.Add(1)
		go func() {
			defer conns.Done()
			serveConn(ctx, conn, handler)
		}()
	}
}

// serveConn answers the single request carried by one connection. Protocol
// errors go back to the client as a failed Response rather than a hangup.
func serveConn(ctx context.Context, conn net.Conn, handler Handler) {
	defer conn.Close()

	reader := bufio.NewReader(io.LimitReader(conn, maxRequestBytes))
	line, err := reader.ReadBytes('\n')
	if err != nil {
		writeResponse(conn, Response{Error: fmt.Sprintf("read request: %v", err)})
		return
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		writeResponse(conn, Response{Error: fmt.Sprintf("decode request: %v", err)})
		return
	}

	writeResponse(conn, handler.Handle(ctx, req))
}

func writeResponse(conn net.Conn, resp Response) {
	_ = json.NewEncoder(conn).Encode(resp)
}
