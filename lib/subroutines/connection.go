// Copyright (c) 2016 Alice Quiros <email@aliceq.me>
// released under the MIT license

package subroutines

import (
	irc "github.com/alicenq/Jabberwocky/lib"
)

// Connection finishes registration after Identify has sent PASS/NICK/USER:
// it answers nick collisions, marks the server registered when the welcome
// arrives, joins every channel already in the bookkeeping once the MOTD is
// done, answers CTCP VERSION and keeps the current-nick state in step with
// server-side nick changes.
type Connection struct{}

func NewConnection() *Connection {
	return &Connection{}
}

func (sub *Connection) Name() string {
	return "connection"
}

func (sub *Connection) Run(server *irc.Server) {
	interesting := func(msg irc.Message) bool {
		switch msg.Command {
		case irc.RPL_WELCOME, irc.ERR_NICKNAMEINUSE, irc.RPL_ENDOFMOTD, irc.ERR_NOMOTD:
			return true
		case "NICK":
			// only our own nick changes matter
			return irc.Casefold(msg.Nick()) == irc.Casefold(server.Details().CurrentNick)
		case "PRIVMSG":
			return msg.Payload == "\x01VERSION\x01" &&
				irc.Casefold(msg.Target) == irc.Casefold(server.Details().CurrentNick)
		}
		return false
	}

	triedFallback := false

	for {
		msg, err := server.Await(interesting, irc.Forever)
		if err != nil {
			return
		}

		details := server.Details()

		switch msg.Command {
		case irc.RPL_WELCOME:
			// the first parameter is the nick the server granted us
			server.MarkRegistered(msg.Target)

		case irc.RPL_ENDOFMOTD, irc.ERR_NOMOTD:
			// joining waits for the end of the MOTD, the usual signal that
			// the server is done with the registration burst
			for _, channel := range server.Channels() {
				server.Join(channel.Name, channel.Key)
			}

		case irc.ERR_NICKNAMEINUSE:
			if details.Registered {
				continue
			}
			next := details.CurrentNick + "_"
			if !triedFallback && details.Identity.FallbackNick != "" {
				next = details.Identity.FallbackNick
				triedFallback = true
			}
			server.SetNick(next)
			server.Send("NICK " + next)

		case "NICK":
			newNick := msg.Payload
			if newNick == "" {
				newNick = msg.Target
			}
			if newNick != "" {
				server.SetNick(newNick)
			}

		case "PRIVMSG":
			if nick := msg.Nick(); nick != "" {
				server.Send("NOTICE " + nick + " :\x01VERSION " + irc.Ver + "\x01")
			}
		}
	}
}
