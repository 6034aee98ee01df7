// Copyright (c) 2016 Alice Quiros <email@aliceq.me>
// released under the MIT license

package irc

// Priority is a scheduling hint attached to a subroutine when it is
// launched. Goroutines carry no portable priority, so this is diagnostic
// only: it shows up in logs and in tooling, never in scheduling.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Subroutine is a unit of long-running logic given exclusive use of one
// goroutine and the server's outbound operations. A subroutine observes
// inbound traffic only through Server.Await; it never touches the registry
// or the socket directly.
type Subroutine interface {
	// Name labels the subroutine in diagnostics.
	Name() string
	// Run is the subroutine's whole life. The subroutine ends when it
	// returns; a typical Run loops building a predicate, blocking in
	// server.Await and acting on the matched message.
	Run(server *Server)
}

// RunSubroutine launches a subroutine on its own goroutine with low priority
// as a daemon, matching the common case of a background watcher.
func (server *Server) RunSubroutine(sub Subroutine) {
	server.RunSubroutineOpts(sub, PriorityLow, true)
}

// RunSubroutineOpts launches a subroutine on its own goroutine. Daemon
// subroutines are fire-and-forget; non-daemon ones are waited on by Wait, so
// the process can hold on until persistent subroutines finish.
func (server *Server) RunSubroutineOpts(sub Subroutine, priority Priority, daemon bool) {
	server.logger.Debug("starting subroutine", "name", sub.Name(), "priority", priority.String(), "daemon", daemon)

	if !daemon {
		server.persistent.Add(1)
	}

	go func() {
		server.addActive(1)
		defer server.addActive(-1)
		if !daemon {
			defer server.persistent.Done()
		}
		sub.Run(server)
		server.logger.Debug("subroutine finished", "name", sub.Name())
	}()
}

// Wait blocks until every non-daemon subroutine has returned.
func (server *Server) Wait() {
	server.persistent.Wait()
}

// ActiveSubroutines returns the number of subroutine goroutines currently
// running. Purely observational.
func (server *Server) ActiveSubroutines() int {
	server.mu.Lock()
	defer server.mu.Unlock()
	return server.activeSubs
}

func (server *Server) addActive(delta int) {
	server.mu.Lock()
	server.activeSubs += delta
	server.mu.Unlock()
}
