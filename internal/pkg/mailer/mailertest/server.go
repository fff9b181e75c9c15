// Package mailertest runs an in-process SMTP server for tests.
package mailertest

import (
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Server accepts every message it is sent. It answers the end of DATA after
// Delay, so a slow relay can be simulated.
type Server struct {
	Host string
	Port int

	delay    time.Duration
	listener net.Listener

	mu       sync.Mutex
	accepted []string
}

func NewServer(t testing.TB, delay time.Duration) *Server {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &Server{
		Host:     "127.0.0.1",
		Port:     ln.Addr().(*net.TCPAddr).Port,
		delay:    delay,
		listener: ln,
	}
	go s.serve()
	t.Cleanup(func() { ln.Close() })

	return s
}

// Accepted is the number of messages the server has acknowledged.
func (s *Server) Accepted() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.accepted)
}

// Messages returns the raw bodies acknowledged so far.
func (s *Server) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.accepted...)
}

func (s *Server) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	tp := textproto.NewConn(conn)
	if err := tp.PrintfLine("220 localhost ESMTP"); err != nil {
		return
	}

	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}

		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
		switch verb {
		case "EHLO", "HELO":
			err = tp.PrintfLine("250 localhost")
		case "MAIL", "RCPT", "RSET", "NOOP":
			err = tp.PrintfLine("250 OK")
		case "DATA":
			if err = tp.PrintfLine("354 end with <CRLF>.<CRLF>"); err != nil {
				return
			}
			body, rerr := tp.ReadDotBytes()
			if rerr != nil {
				return
			}
			time.Sleep(s.delay)

			s.mu.Lock()
			s.accepted = append(s.accepted, string(body))
			s.mu.Unlock()

			err = tp.PrintfLine("250 queued")
		case "QUIT":
			tp.PrintfLine("221 bye")
			return
		default:
			err = tp.PrintfLine("502 command not implemented")
		}
		if err != nil {
			return
		}
	}
}
