// Copyright (c) 2016 Alice Quiros <email@aliceq.me>
// released under the MIT license

package irc

// Identity is everything needed to register with a server.
type Identity struct {
	Nick string
	// FallbackNick is tried once if the server rejects Nick as in use.
	FallbackNick string
	Username     string
	Realname     string
	// Password is the server password, sent as PASS before registration.
	Password string
	// Mode is the initial user mode bitmask sent with USER.
	Mode int
}
