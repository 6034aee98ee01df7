// Copyright (c) 2016 Alice Quiros <email@aliceq.me>
// released under the MIT license

package irc

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/secure/precis"
)

var (
	errNameBadChar = errors.New("Name contained a disallowed character")
	errNameSpace   = errors.New("Names cannot contain whitespace")
	errNameNil     = errors.New("Names need to be at least one character long")
)

// IrcName returns a name appropriate for IRC use (nick/user/channel), or an
// error if the name is bad.
func IrcName(name string, isChannel bool) (string, error) {
	name = strings.TrimSpace(name)

	if len(name) < 1 {
		return "", errNameNil
	}

	for _, char := range name {
		// exclude space characters
		if unicode.IsSpace(char) {
			return "", errNameSpace
		}
		// exclude other characters that mess with the protocol
		if isChannel {
			if strings.Contains(",?*", string(char)) {
				return "", errNameBadChar
			}
		} else {
			if strings.Contains(",.!@#?*", string(char)) {
				return "", errNameBadChar
			}
		}
	}

	return name, nil
}

// Casefold maps a nick or channel name to the key used for comparisons and
// map lookups. Names that precis refuses to fold (channel sigils, mostly)
// fall back to a plain lowercase mapping.
func Casefold(name string) string {
	folded, err := precis.UsernameCaseMapped.CompareKey(name)
	if err != nil || folded == "" {
		return strings.ToLower(name)
	}
	return folded
}
