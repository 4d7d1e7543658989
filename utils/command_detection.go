package utils

import (
	"regexp"

	"github.com/samber/mo"
)

// CompileCommandPattern compiles the configured command regex. An empty pattern disables
// command recognition and yields a nil regexp.
func CompileCommandPattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return regexp.Compile(pattern)
}

// ParseCommand applies the command pattern to a message's content.
//
// A nil pattern disables command recognition and always yields None. Otherwise every
// non-overlapping match contributes its participating capture groups (group 0 excluded) in
// group order, and the tokens of all matches are concatenated in match order. A pattern that
// matches without usable captures yields Some of an empty slice, which still routes the
// message as a command.
func ParseCommand(content string, pattern *regexp.Regexp) mo.Option[[]string] {
	if pattern == nil {
		return mo.None[[]string]()
	}

	matches := pattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return mo.None[[]string]()
	}

	tokens := make([]string, 0, len(matches))
	for _, loc := range matches {
		for group := 1; 2*group+1 < len(loc); group++ {
			start, end := loc[2*group], loc[2*group+1]
			if start < 0 {
				// group did not participate in this match
				continue
			}
			tokens = append(tokens, content[start:end])
		}
	}

	return mo.Some(tokens)
}
