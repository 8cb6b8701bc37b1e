package topic

import (
	"strings"

	"github.com/tidwall/match"
)

// Wildcard is the marker that turns a pattern into a wildcard pattern.
const Wildcard = "*"

// Pattern is a compiled subscription pattern.
// The zero value matches only the empty topic.
type Pattern struct {
	raw      string
	glob     string // lowered and escaped, set only for wildcard patterns
	wildcard bool
}

// Compile prepares a pattern for repeated matching.
func Compile(pattern string) Pattern {
	if !strings.Contains(pattern, Wildcard) {
		return Pattern{raw: pattern}
	}
	return Pattern{
		raw:      pattern,
		glob:     escapeGlob(strings.ToLower(pattern)),
		wildcard: true,
	}
}

// Literal returns a pattern that matches only the exact topic, even if it
// contains the wildcard marker.
func Literal(topic string) Pattern {
	return Pattern{raw: topic}
}

// Match reports whether topic matches pattern.
func Match(pattern, topic string) bool {
	return Compile(pattern).Match(topic)
}

// Match reports whether topic matches the compiled pattern.
func (p Pattern) Match(topic string) bool {
	if !p.wildcard {
		return p.raw == topic
	}
	return match.Match(strings.ToLower(topic), p.glob)
}

// IsWildcard returns true if the pattern contains the wildcard marker.
func (p Pattern) IsWildcard() bool {
	return p.wildcard
}

// String returns the pattern as it was given to Compile.
func (p Pattern) String() string {
	return p.raw
}

// escapeGlob neutralizes every glob metacharacter except '*'.
func escapeGlob(pattern string) string {
	if !strings.ContainsAny(pattern, `?\`) {
		return pattern
	}
	var b strings.Builder
	b.Grow(len(pattern) + 4)
	for _, r := range pattern {
		if r == '?' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
