// Copyright (c) 2017 Darren Whitlen <darren@kiwiirc.com>
// released under the MIT license

package irc

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Socket owns one connection to an IRC server: the blocking line reader on
// the inbound side and the locked writer on the outbound side. Writes are
// atomic per line so concurrent senders never interleave partial lines.
type Socket struct {
	Host      string
	Port      int
	TLS       bool
	TLSConfig *tls.Config

	// MaxSendQ caps the size of a single outgoing line, 0 for no cap.
	MaxSendQ uint64

	Conn net.Conn

	// connected is read by the reader loop while Close runs on the quit
	// path, so it has to be atomic
	connected atomic.Bool
	connLock  sync.Mutex
	reader    *bufio.Reader
}

func NewSocket() *Socket {
	return &Socket{}
}

// Connect dials the configured host and port, over TLS if requested.
func (socket *Socket) Connect() error {
	socket.connected.Store(false)

	destination := net.JoinHostPort(socket.Host, strconv.Itoa(socket.Port))

	var conn net.Conn
	var err error
	if socket.TLS {
		conn, err = tls.Dial("tcp", destination, socket.TLSConfig)
	} else {
		conn, err = net.Dial("tcp", destination)
	}
	if err != nil {
		return err
	}

	socket.Use(conn)
	return nil
}

// Use adopts an already-established connection, for callers that manage
// their own transport.
func (socket *Socket) Use(conn net.Conn) {
	socket.Conn = conn
	socket.reader = bufio.NewReader(conn)
	socket.connected.Store(true)
}

// IsConnected reports whether the socket currently holds a live connection.
func (socket *Socket) IsConnected() bool {
	return socket.connected.Load()
}

func (socket *Socket) Close() error {
	if socket.connected.CompareAndSwap(true, false) {
		return socket.Conn.Close()
	}

	return nil
}

// ReadLine blocks for the next raw line, line delimiter stripped.
func (socket *Socket) ReadLine() (string, error) {
	if !socket.connected.Load() {
		return "", ErrNotConnected
	}

	line, err := socket.reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.Trim(line, "\r\n"), nil
}

// WriteLine writes a raw IRC line to the server. Auto appends \r\n.
func (socket *Socket) WriteLine(format string, args ...interface{}) (int, error) {
	if !socket.connected.Load() {
		return 0, ErrNotConnected
	}

	line := fmt.Sprintf(format, args...)
	line = strings.TrimRight(line, "\r\n") + "\r\n"

	if socket.MaxSendQ > 0 && uint64(len(line)) > socket.MaxSendQ {
		return 0, fmt.Errorf("line of %d bytes exceeds sendq of %d", len(line), socket.MaxSendQ)
	}

	return socket.Write([]byte(line))
}

func (socket *Socket) Write(p []byte) (n int, err error) {
	socket.connLock.Lock()
	defer socket.connLock.Unlock()
	return socket.Conn.Write(p)
}
