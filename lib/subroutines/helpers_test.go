// Copyright (c) 2016 Alice Quiros <email@aliceq.me>
// released under the MIT license

package subroutines

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	irc "github.com/alicenq/Jabberwocky/lib"
)

// testRemote plays the IRC server on the far side of a pipe, draining
// everything the engine writes into a channel.
type testRemote struct {
	conn  net.Conn
	lines chan string
}

func startTestServer(t *testing.T) (*irc.Server, *testRemote) {
	t.Helper()

	near, far := net.Pipe()
	server := irc.NewServer("testnet", 6667)
	server.UseConn(near)

	remote := &testRemote{
		conn:  far,
		lines: make(chan string, 64),
	}
	go func() {
		reader := bufio.NewReader(far)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				close(remote.lines)
				return
			}
			remote.lines <- strings.Trim(line, "\r\n")
		}
	}()

	t.Cleanup(func() {
		near.Close()
		far.Close()
	})

	return server, remote
}

func (remote *testRemote) sendLine(t *testing.T, line string) {
	t.Helper()
	remote.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	_, err := remote.conn.Write([]byte(line + "\r\n"))
	require.NoError(t, err)
}

func (remote *testRemote) readLine(t *testing.T) string {
	t.Helper()
	select {
	case line, ok := <-remote.lines:
		if !ok {
			t.Fatal("remote side of the pipe closed")
		}
		return line
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a line from the engine")
	}
	return ""
}

// waitForWaiters blocks until the subroutine under test is parked in Await
// again, so the next inbound line cannot slip past an unregistered request.
func waitForWaiters(t *testing.T, server *irc.Server, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for server.PendingRequests() != want {
		if time.Now().After(deadline) {
			t.Fatalf("never reached %d pending requests (at %d)", want, server.PendingRequests())
		}
		time.Sleep(time.Millisecond)
	}
}
