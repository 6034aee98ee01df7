// Copyright (c) 2016 Alice Quiros <email@aliceq.me>
// released under the MIT license

package subroutines

import (
	"log/slog"

	irc "github.com/alicenq/Jabberwocky/lib"
)

// ChannelMonitor keeps the server's channel bookkeeping in step with what
// actually happens on the wire: joins, parts, kicks and quits for our own
// nick update the registry, and the channel set is persisted so a restart
// rejoins them.
type ChannelMonitor struct {
	store  *irc.DataStore
	logger *slog.Logger
}

// NewChannelMonitor returns a monitor persisting to the given store. A nil
// store keeps the bookkeeping in memory only.
func NewChannelMonitor(store *irc.DataStore) *ChannelMonitor {
	return &ChannelMonitor{
		store:  store,
		logger: slog.Default(),
	}
}

func (sub *ChannelMonitor) Name() string {
	return "channel-monitor"
}

func (sub *ChannelMonitor) Run(server *irc.Server) {
	// filtering inside the predicate means membership traffic about other
	// users never consumes the pending request
	ownMembership := func(msg irc.Message) bool {
		self := irc.Casefold(server.Details().CurrentNick)
		if self == "" {
			return false
		}
		switch msg.Command {
		case "JOIN", "PART", "QUIT":
			return irc.Casefold(msg.Nick()) == self
		case "KICK":
			return len(msg.Params) >= 2 && irc.Casefold(msg.Params[1]) == self
		}
		return false
	}

	for {
		msg, err := server.Await(ownMembership, irc.Forever)
		if err != nil {
			return
		}

		switch msg.Command {
		case "JOIN":
			// some servers send the channel as trailing instead
			name := msg.Target
			if name == "" {
				name = msg.Payload
			}
			if name == "" {
				continue
			}
			channel := server.RegisterChannel(name, "")
			sub.save(channel)

		case "PART", "KICK":
			if removed := server.UnregisterChannel(msg.Target); removed != nil {
				sub.drop(removed.Name)
			}

		case "QUIT":
			// quitting empties the bookkeeping but leaves the stored set
			// intact, so a restart rejoins the same channels
			for _, channel := range server.Channels() {
				server.UnregisterChannel(channel.Name)
			}
		}
	}
}

func (sub *ChannelMonitor) save(channel *irc.Channel) {
	if sub.store == nil {
		return
	}
	if err := sub.store.SaveChannel(channel); err != nil {
		sub.logger.Warn("could not save channel", "channel", channel.Name, "error", err)
	}
}

func (sub *ChannelMonitor) drop(name string) {
	if sub.store == nil {
		return
	}
	if err := sub.store.DelChannel(name); err != nil {
		sub.logger.Warn("could not delete channel", "channel", name, "error", err)
	}
}
