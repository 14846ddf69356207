// Package rpc lets another process drive a console session with JSON-RPC 2.0
// over stdio.
//
// Messages are framed with Content-Length headers, like a language server.
// The methods are:
//
//   - initialize: returns the prompt glyph and the prompt line.
//   - session/event: feeds one event to the session and returns its effects.
//   - session/snapshot: returns the content of both panes.
//   - shutdown: acknowledged, so that clients written for language servers
//     can stop cleanly.
//   - exit (notification): closes the connection.
//
// When code submitted through session/event calls exit, the response carries
// the exit code and the connection is closed once it has been sent. The
// process then exits with that code.
package rpc

import (
	"context"
	"os"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/panerepl/panerepl/pkg/config"
	"github.com/panerepl/panerepl/pkg/prog"
	"github.com/panerepl/panerepl/pkg/session"
)

// Program is the RPC subprogram.
type Program struct {
	run bool
	rc  *string
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.run, "rpc", false,
		"serve a session over JSON-RPC on stdio instead of running the console")
	p.rc = fs.RC()
}

func (p *Program) Run(fds [3]*os.File, args []string) error {
	if !p.run {
		return prog.ErrNextProgram
	}
	if len(args) > 0 {
		return prog.BadUsage("arguments are not allowed with -rpc")
	}
	cfg, err := config.Load(*p.rc)
	if err != nil {
		return err
	}
	s, err := newServer(cfg.SessionConfig())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(transport{fds[0], fds[1]}, jsonrpc2.VSCodeObjectCodec{}),
		handler(s))
	<-conn.DisconnectNotify()
	if code, ok := s.exitCode(); ok {
		return prog.Exit(code)
	}
	return nil
}

// NewServer returns a jsonrpc2.Handler serving a new session.
func NewServer(cfg session.Config) (jsonrpc2.Handler, error) {
	s, err := newServer(cfg)
	if err != nil {
		return nil, err
	}
	return handler(s), nil
}

type transport struct{ in, out *os.File }

func (c transport) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c transport) Write(p []byte) (int, error) { return c.out.Write(p) }

func (c transport) Close() error {
	if err := c.in.Close(); err != nil {
		c.out.Close()
		return err
	}
	return c.out.Close()
}
