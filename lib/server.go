// Copyright (c) 2016 Alice Quiros <email@aliceq.me>
// released under the MIT license

package irc

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

// DefaultMaxReadErrors is how many consecutive stream read failures are
// tolerated before the connection is declared dead. Zero disables the
// threshold and keeps the loop reading forever.
const DefaultMaxReadErrors = 5

// Details is a snapshot of the connection state.
type Details struct {
	Connected   bool
	Registered  bool
	CurrentNick string
	Identity    Identity
}

// Server wraps one socket to an IRC server and acts as the central node for
// its subroutines: the single reader loop feeding the pending-request
// registry on the inbound side, and the shared outbound operations surface.
type Server struct {
	Socket   *Socket
	registry *Registry
	logger   *slog.Logger

	// MaxReadErrors is the consecutive-read-failure threshold. Set before
	// calling Connect.
	MaxReadErrors int

	mu         sync.Mutex
	details    Details
	channels   map[string]*Channel
	activeSubs int

	persistent sync.WaitGroup
	done       chan struct{}
	doneOnce   sync.Once
}

// NewServer returns a server for the given address and port.
func NewServer(host string, port int) *Server {
	server := &Server{
		Socket:        NewSocket(),
		logger:        slog.Default(),
		MaxReadErrors: DefaultMaxReadErrors,
		channels:      make(map[string]*Channel),
		done:          make(chan struct{}),
	}
	server.Socket.Host = host
	server.Socket.Port = port
	server.registry = NewRegistry(server.logger)
	return server
}

// SetLogger replaces the server's logger. Call before Connect.
func (server *Server) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	server.logger = logger
	server.registry = NewRegistry(logger)
}

// Connect dials the server and starts the reader loop.
func (server *Server) Connect() error {
	err := server.Socket.Connect()
	if err != nil {
		return err
	}

	server.mu.Lock()
	server.details.Connected = true
	server.mu.Unlock()

	go server.readLoop()
	return nil
}

// UseConn adopts an already-established connection and starts the reader
// loop on it.
func (server *Server) UseConn(conn net.Conn) {
	server.Socket.Use(conn)

	server.mu.Lock()
	server.details.Connected = true
	server.mu.Unlock()

	go server.readLoop()
}

// Done is closed when the connection is declared dead. Every Await pending
// at that point has already been resolved with ErrDisconnected.
func (server *Server) Done() <-chan struct{} {
	return server.done
}

// Details returns a snapshot of the connection state.
func (server *Server) Details() Details {
	server.mu.Lock()
	defer server.mu.Unlock()
	return server.details
}

// Await blocks the calling subroutine until a message matching the predicate
// arrives, the timeout elapses, or the connection dies. This is the only
// sanctioned way for a subroutine to observe inbound traffic.
func (server *Server) Await(predicate Predicate, timeout time.Duration) (Message, error) {
	return server.registry.Await(predicate, timeout)
}

// PendingRequests returns the number of subroutines currently blocked in
// Await. Diagnostic only.
func (server *Server) PendingRequests() int {
	return server.registry.Pending()
}

// readLoop runs forever on its own goroutine and is the only reader of the
// inbound stream. PING is answered inline and never reaches dispatch;
// every other parseable line runs one dispatch pass before the next read.
func (server *Server) readLoop() {
	var readErrors int

	for {
		line, err := server.Socket.ReadLine()
		if err != nil {
			if !server.Socket.IsConnected() {
				server.shutdown()
				return
			}
			readErrors++
			server.logger.Warn("could not read from server", "host", server.Socket.Host, "error", err)
			if server.MaxReadErrors > 0 && readErrors >= server.MaxReadErrors {
				server.logger.Error("giving up on dead connection", "host", server.Socket.Host, "failures", readErrors)
				server.Socket.Close()
				server.shutdown()
				return
			}
			continue
		}
		readErrors = 0

		if line == "" {
			continue
		}
		server.logger.Debug(fmt.Sprintf("[S %s] %s", server.Socket.Host, line))

		// PONG message handling bypasses the registry entirely
		if line == "PING" || strings.HasPrefix(line, "PING ") {
			reply := "PONG"
			if len(line) > 5 {
				reply = "PONG " + line[5:]
			}
			server.Send(reply)
			continue
		}

		message, parseErr := ParseMessage(line)
		if parseErr != nil {
			server.logger.Warn("discarding malformed line", "host", server.Socket.Host, "line", line)
			continue
		}

		server.registry.Dispatch(message)
	}
}

// shutdown marks the connection dead and releases every blocked waiter.
func (server *Server) shutdown() {
	server.mu.Lock()
	server.details.Connected = false
	server.details.Registered = false
	server.mu.Unlock()

	server.registry.CancelAll(ErrDisconnected)
	server.doneOnce.Do(func() {
		close(server.done)
	})
}

// Identify sends the registration messages for the given identity. The
// connection subroutine picks it up from there.
func (server *Server) Identify(identity Identity) error {
	var lines []string
	if identity.Password != "" {
		lines = append(lines, "PASS "+identity.Password)
	}
	lines = append(lines,
		"NICK "+identity.Nick,
		fmt.Sprintf("USER %s %d * :%s", identity.Username, identity.Mode, identity.Realname),
	)

	err := server.SendLines(lines)
	if err != nil {
		return err
	}

	server.mu.Lock()
	server.details.Identity = identity
	server.details.CurrentNick = identity.Nick
	server.mu.Unlock()
	return nil
}

// MarkRegistered records that the server accepted our registration under the
// given nick.
func (server *Server) MarkRegistered(nick string) {
	server.mu.Lock()
	server.details.Registered = true
	if nick != "" {
		server.details.CurrentNick = nick
	}
	server.mu.Unlock()
}

// SetNick records a nick change, ours or forced by the server.
func (server *Server) SetNick(nick string) {
	server.mu.Lock()
	server.details.CurrentNick = nick
	server.mu.Unlock()
}

// Send sends and flushes a single raw line.
func (server *Server) Send(line string) error {
	server.logger.Debug(fmt.Sprintf("[C %s] %s", server.Socket.Host, line))
	_, err := server.Socket.WriteLine("%s", line)
	return err
}

// SendLines sends a group of raw lines as one atomic write, so lines from
// concurrent senders never interleave inside the group.
func (server *Server) SendLines(lines []string) error {
	if !server.Socket.IsConnected() {
		return ErrNotConnected
	}

	var buf strings.Builder
	for _, line := range lines {
		server.logger.Debug(fmt.Sprintf("[C %s] %s", server.Socket.Host, line))
		buf.WriteString(strings.TrimRight(line, "\r\n"))
		buf.WriteString("\r\n")
	}

	_, err := server.Socket.Write([]byte(buf.String()))
	return err
}

// Join sends a join for the given channels, comma-separated, with optional
// comma-separated keys.
func (server *Server) Join(channels string, passwords string) error {
	if passwords == "" {
		return server.Send("JOIN " + channels)
	}
	return server.Send("JOIN " + channels + " " + passwords)
}

// Message sends a private message to a target, either a user or a channel.
func (server *Server) Message(target string, text string) error {
	return server.Send("PRIVMSG " + target + " :" + text)
}

// Action sends an action message to a target, usually displayed of the form
// *user message.
func (server *Server) Action(target string, text string) error {
	return server.Send("PRIVMSG " + target + " :\x01ACTION " + text + "\x01")
}

// Part leaves a channel. If the channel is not registered this does nothing.
func (server *Server) Part(channel string, message string) error {
	removed := server.UnregisterChannel(channel)
	if removed == nil {
		return nil
	}

	if message == "" {
		return server.Send("PART " + removed.Name)
	}
	return server.Send("PART " + removed.Name + " :" + message)
}

// Quit quits the server and drops all channel bookkeeping.
func (server *Server) Quit(message string) error {
	server.mu.Lock()
	server.channels = make(map[string]*Channel)
	server.details.Registered = false
	server.mu.Unlock()

	if message == "" {
		return server.Send("QUIT")
	}
	return server.Send("QUIT :" + message)
}
