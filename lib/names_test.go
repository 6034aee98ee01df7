// Copyright (c) 2016 Alice Quiros <email@aliceq.me>
// released under the MIT license

package irc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIrcName(t *testing.T) {
	name, err := IrcName("  #chan  ", true)
	assert.NoError(t, err)
	assert.Equal(t, "#chan", name)

	_, err = IrcName("", true)
	assert.Error(t, err)

	_, err = IrcName("#one,#two", true)
	assert.Error(t, err)

	_, err = IrcName("bad nick", false)
	assert.Error(t, err)

	_, err = IrcName("bad!nick", false)
	assert.Error(t, err)

	name, err = IrcName("goodnick", false)
	assert.NoError(t, err)
	assert.Equal(t, "goodnick", name)
}

func TestCasefold(t *testing.T) {
	assert.Equal(t, Casefold("Alice"), Casefold("alice"))
	assert.Equal(t, Casefold("#Chan"), Casefold("#chan"))
	assert.NotEqual(t, Casefold("alice"), Casefold("bob"))
}
