// Copyright (c) 2016 Alice Quiros <email@aliceq.me>
// released under the MIT license

package irc

import (
	"fmt"
)

const (
	// SemVer is the semantic version of Jabberwocky.
	SemVer = "0.1.0-unreleased"
)

var (
	// Ver is the full version of Jabberwocky, used in outgoing version replies.
	Ver = fmt.Sprintf("jabberwocky-%s", SemVer)
)

// Numerics the engine itself cares about. Everything else is only ever
// matched by subroutine predicates.
const (
	RPL_WELCOME       = "001"
	RPL_ENDOFMOTD     = "376"
	ERR_NOMOTD        = "422"
	ERR_NICKNAMEINUSE = "433"
)
