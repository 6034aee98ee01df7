// Copyright (c) 2016 Alice Quiros <email@aliceq.me>
// released under the MIT license

package subroutines

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	irc "github.com/alicenq/Jabberwocky/lib"
)

func waitForDetails(t *testing.T, server *irc.Server, check func(irc.Details) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !check(server.Details()) {
		if time.Now().After(deadline) {
			t.Fatalf("details never reached expected state: %+v", server.Details())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestConnectionRegistersAndJoins(t *testing.T) {
	server, remote := startTestServer(t)
	server.RegisterChannel("#seed", "sekrit")

	server.RunSubroutineOpts(NewConnection(), irc.PriorityHigh, false)
	waitForWaiters(t, server, 1)

	require.NoError(t, server.Identify(irc.Identity{
		Nick:     "jab",
		Username: "jabber",
		Realname: "Jabberwocky",
	}))
	assert.Equal(t, "NICK jab", remote.readLine(t))
	assert.Equal(t, "USER jabber 0 * :Jabberwocky", remote.readLine(t))

	remote.sendLine(t, ":irc.example.com 001 jab :Welcome to the network jab")
	waitForDetails(t, server, func(details irc.Details) bool {
		return details.Registered && details.CurrentNick == "jab"
	})
	waitForWaiters(t, server, 1)

	remote.sendLine(t, ":irc.example.com 376 jab :End of /MOTD command")
	assert.Equal(t, "JOIN #seed sekrit", remote.readLine(t))
}

func TestConnectionJoinsWhenThereIsNoMotd(t *testing.T) {
	server, remote := startTestServer(t)
	server.RegisterChannel("#seed", "")

	server.RunSubroutineOpts(NewConnection(), irc.PriorityHigh, false)
	waitForWaiters(t, server, 1)

	require.NoError(t, server.Identify(irc.Identity{
		Nick:     "jab",
		Username: "jabber",
		Realname: "Jabberwocky",
	}))
	remote.readLine(t) // NICK
	remote.readLine(t) // USER

	remote.sendLine(t, ":irc.example.com 001 jab :Welcome")
	waitForDetails(t, server, func(details irc.Details) bool {
		return details.Registered
	})
	waitForWaiters(t, server, 1)

	remote.sendLine(t, ":irc.example.com 422 jab :MOTD File is missing")
	assert.Equal(t, "JOIN #seed", remote.readLine(t))
}

func TestConnectionAnswersCtcpVersion(t *testing.T) {
	server, remote := startTestServer(t)
	server.SetNick("jab")

	server.RunSubroutineOpts(NewConnection(), irc.PriorityHigh, false)
	waitForWaiters(t, server, 1)

	remote.sendLine(t, ":bob!u@h PRIVMSG jab :\x01VERSION\x01")
	assert.Equal(t, "NOTICE bob :\x01VERSION "+irc.Ver+"\x01", remote.readLine(t))

	// a version query aimed at a channel is not for us
	remote.sendLine(t, ":bob!u@h PRIVMSG #chan :\x01VERSION\x01")
	waitForWaiters(t, server, 1)
}

func TestConnectionFallbackNick(t *testing.T) {
	server, remote := startTestServer(t)

	server.RunSubroutineOpts(NewConnection(), irc.PriorityHigh, false)
	waitForWaiters(t, server, 1)

	require.NoError(t, server.Identify(irc.Identity{
		Nick:         "jab",
		FallbackNick: "jab2",
		Username:     "jabber",
		Realname:     "Jabberwocky",
	}))
	assert.Equal(t, "NICK jab", remote.readLine(t))
	assert.Equal(t, "USER jabber 0 * :Jabberwocky", remote.readLine(t))

	remote.sendLine(t, ":irc.example.com 433 * jab :Nickname is already in use")
	assert.Equal(t, "NICK jab2", remote.readLine(t))
	waitForWaiters(t, server, 1)

	// fallback taken too: mangle from there on
	remote.sendLine(t, ":irc.example.com 433 * jab2 :Nickname is already in use")
	assert.Equal(t, "NICK jab2_", remote.readLine(t))
	waitForWaiters(t, server, 1)

	remote.sendLine(t, ":irc.example.com 001 jab2_ :Welcome to the network")
	waitForDetails(t, server, func(details irc.Details) bool {
		return details.Registered && details.CurrentNick == "jab2_"
	})
}

func TestConnectionTracksNickChanges(t *testing.T) {
	server, remote := startTestServer(t)

	server.RunSubroutineOpts(NewConnection(), irc.PriorityHigh, false)
	waitForWaiters(t, server, 1)

	require.NoError(t, server.Identify(irc.Identity{
		Nick:     "jab",
		Username: "jabber",
		Realname: "Jabberwocky",
	}))
	remote.readLine(t) // NICK
	remote.readLine(t) // USER

	remote.sendLine(t, ":irc.example.com 001 jab :Welcome")
	waitForDetails(t, server, func(details irc.Details) bool {
		return details.Registered
	})

	remote.sendLine(t, ":jab!jabber@host NICK :wocky")
	waitForDetails(t, server, func(details irc.Details) bool {
		return details.CurrentNick == "wocky"
	})

	// someone else's nick change is none of our business
	remote.sendLine(t, ":bob!u@h NICK :robert")
	waitForWaiters(t, server, 1)
	assert.Equal(t, "wocky", server.Details().CurrentNick)
}
