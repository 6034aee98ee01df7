// Copyright (c) 2016 Alice Quiros <email@aliceq.me>
// released under the MIT license

package subroutines

import (
	"regexp"
	"strings"

	irc "github.com/alicenq/Jabberwocky/lib"
)

// Proxy relays commands from a master user. Any PRIVMSG whose text starts
// with the key and whose sender nick matches the master pattern is relayed:
// recognized action words are translated into the corresponding outbound
// operation, anything else is echoed raw.
//
//	SAY target message
//	ACTION target message
//	JOIN channel [key]
//	PART message
//	QUIT message
type Proxy struct {
	key    string
	master *regexp.Regexp
}

// NewProxy builds a proxy for the given key and master pattern. The master
// is a regular expression matched against the whole sender nick, so several
// nicks may be allowed by one pattern. An empty key defaults to "$".
func NewProxy(key string, master string) (*Proxy, error) {
	if key == "" {
		key = "$"
	}
	pattern, err := regexp.Compile("^(?:" + master + ")$")
	if err != nil {
		return nil, err
	}
	return &Proxy{
		key:    key,
		master: pattern,
	}, nil
}

func (sub *Proxy) Name() string {
	return "proxy"
}

func (sub *Proxy) Run(server *irc.Server) {
	filter := func(msg irc.Message) bool {
		if msg.Command != "PRIVMSG" {
			return false
		}
		return strings.Index(msg.Payload, sub.key) == 0 && sub.master.MatchString(msg.Nick())
	}

	for {
		msg, err := server.Await(filter, irc.Forever)
		if err != nil {
			return
		}

		raw := msg.Payload[len(sub.key):]
		tokens := strings.SplitN(raw, " ", 3)
		if len(tokens) == 0 || tokens[0] == "" {
			continue
		}

		switch strings.ToUpper(tokens[0]) {
		case "SAY":
			if len(tokens) == 3 {
				server.Message(tokens[1], tokens[2])
			}
		case "ACTION":
			if len(tokens) == 3 {
				server.Action(tokens[1], tokens[2])
			}
		case "JOIN":
			if len(tokens) >= 2 {
				key := ""
				if len(tokens) == 3 {
					key = tokens[2]
				}
				server.Join(tokens[1], key)
			}
		default:
			// PART, QUIT and anything unrecognized pass through raw
			server.Send(raw)
		}
	}
}
