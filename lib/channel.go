// Copyright (c) 2016 Alice Quiros <email@aliceq.me>
// released under the MIT license

package irc

// Channel is one channel the server is expected to be in.
type Channel struct {
	Name   string
	Key    string
	UseKey bool
}

// GetChannel returns the channel entry of the given name, creating one if it
// does not exist yet.
func (server *Server) GetChannel(name string) *Channel {
	server.mu.Lock()
	defer server.mu.Unlock()

	key := Casefold(name)
	channel, exists := server.channels[key]
	if !exists {
		channel = &Channel{Name: name}
		server.channels[key] = channel
	}
	return channel
}

// RegisterChannel adds a channel to the server's channel bookkeeping. If the
// channel is already registered the existing entry is returned unchanged.
func (server *Server) RegisterChannel(name string, channelKey string) *Channel {
	server.mu.Lock()
	defer server.mu.Unlock()

	key := Casefold(name)
	if existing, exists := server.channels[key]; exists {
		return existing
	}

	channel := &Channel{
		Name:   name,
		Key:    channelKey,
		UseKey: channelKey != "",
	}
	server.channels[key] = channel
	return channel
}

// UnregisterChannel removes a channel from the bookkeeping, returning the
// removed entry or nil if it was not registered.
func (server *Server) UnregisterChannel(name string) *Channel {
	server.mu.Lock()
	defer server.mu.Unlock()

	key := Casefold(name)
	channel := server.channels[key]
	delete(server.channels, key)
	return channel
}

// Channels returns a snapshot of every registered channel.
func (server *Server) Channels() []*Channel {
	server.mu.Lock()
	defer server.mu.Unlock()

	channels := make([]*Channel, 0, len(server.channels))
	for _, channel := range server.channels {
		channels = append(channels, channel)
	}
	return channels
}
