// Copyright (c) 2016 Alice Quiros <email@aliceq.me>
// released under the MIT license

package irc

import (
	"strings"

	"github.com/goshuirc/irc-go/ircmsg"
)

// Message is the parsed form of one inbound IRC line. Messages are immutable
// once built; everything downstream of the reader loop shares copies freely.
type Message struct {
	// Sender is the origin prefix, without the leading colon. Empty if the
	// line carried no prefix.
	Sender string
	// Command is the protocol verb, always uppercased and never empty.
	Command string
	// Target is the first parameter after the command (channel or user).
	Target string
	// Payload is the trailing argument, with the leading colon stripped.
	Payload string
	// Params is the full parameter list, trailing argument included.
	Params []string
	// Raw is the original line as it came off the wire.
	Raw string
}

// Nick returns the nickname portion of the sender prefix.
func (m Message) Nick() string {
	if i := strings.IndexByte(m.Sender, '!'); i >= 0 {
		return m.Sender[:i]
	}
	return m.Sender
}

// ParseMessage parses a single raw line, line delimiter already stripped.
// Parsing is pure: the same line always yields an equal Message. A line with
// no verb fails with ErrMalformedLine.
func ParseMessage(line string) (Message, error) {
	parsed, err := ircmsg.ParseLine(line)
	if err != nil || parsed.Command == "" {
		return Message{}, ErrMalformedLine
	}

	message := Message{
		Sender:  parsed.Prefix,
		Command: strings.ToUpper(parsed.Command),
		Params:  parsed.Params,
		Raw:     line,
	}

	// The trailing argument is marked on the wire, not by position, so it is
	// recovered from the raw line rather than from the parameter list.
	rest := line
	if strings.HasPrefix(rest, "@") {
		if sp := strings.IndexByte(rest, ' '); sp >= 0 {
			rest = rest[sp+1:]
		}
	}
	if strings.HasPrefix(rest, ":") {
		if sp := strings.IndexByte(rest, ' '); sp >= 0 {
			rest = rest[sp+1:]
		}
	}
	hasTrailing := false
	if idx := strings.Index(rest, " :"); idx >= 0 {
		message.Payload = rest[idx+2:]
		hasTrailing = true
	}

	if hasTrailing {
		if len(message.Params) >= 2 {
			message.Target = message.Params[0]
		}
	} else if len(message.Params) >= 1 {
		message.Target = message.Params[0]
	}

	return message, nil
}

// Line renders the message back into wire form, without the line delimiter.
// For any well-formed input line, ParseMessage followed by Line yields a line
// that reparses to an equal sender/command/target/payload.
func (m Message) Line() string {
	params := m.Params
	if params == nil {
		if m.Target != "" {
			params = append(params, m.Target)
		}
		if m.Payload != "" {
			params = append(params, m.Payload)
		}
	}

	rendered := ircmsg.MakeMessage(nil, m.Sender, m.Command, params...)
	line, err := rendered.Line()
	if err != nil {
		return m.Raw
	}
	line = strings.TrimRight(line, "\r\n")

	// ircmsg only writes the trailing marker when the last parameter is
	// empty, has a space or starts with a colon; restore it so a rendered
	// trailing argument reparses as the payload it was
	if m.Payload != "" && !strings.Contains(line, " :") {
		if idx := strings.LastIndexByte(line, ' '); idx >= 0 {
			line = line[:idx+1] + ":" + line[idx+1:]
		}
	}
	return line
}
