// Copyright (c) 2016 Alice Quiros <email@aliceq.me>
// released under the MIT license

package irc

import "errors"

var (
	// ErrMalformedLine is returned when a raw line has no extractable command.
	ErrMalformedLine = errors.New("line has no extractable command")

	// ErrTimeout is returned from Await when the deadline elapsed before a
	// matching message arrived.
	ErrTimeout = errors.New("await timed out")

	// ErrCancelled is returned from Await when the pending request was
	// cancelled before a matching message arrived.
	ErrCancelled = errors.New("await cancelled")

	// ErrDisconnected is returned from Await when the server connection died
	// while the request was still pending.
	ErrDisconnected = errors.New("disconnected from server")

	// ErrNotConnected is returned when a send is attempted on a connection
	// whose outbound stream was never successfully established.
	ErrNotConnected = errors.New("not connected")
)
