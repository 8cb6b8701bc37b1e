package topic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/flowbus/pkg/flowbus/topic"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		topic   string
		want    bool
	}{
		{"exact match", "A.B", "A.B", true},
		{"exact mismatch", "A.B", "A.C", false},
		{"exact is case sensitive", "A.B", "a.b", false},
		{"exact has no prefix matching", "A.B", "A.B.C", false},
		{"wildcard single segment", "A.*", "A.B", true},
		{"wildcard spans segments", "A.*", "A.B.C", true},
		{"wildcard absorbs nothing", "A.*", "A.", true},
		{"wildcard wrong prefix", "A.*", "Z.B", false},
		{"wildcard requires literal dot", "A.*", "AB", false},
		{"wildcard is case insensitive", "USER.*", "user.login", true},
		{"wildcard pattern lowercase", "user.*", "USER.LOGIN.EXTRA", true},
		{"leading wildcard", "*.CHANGE", "WF.W.STATE.CHANGE", true},
		{"inner wildcard", "WF.*.STATE.CHANGE", "WF.checkout.STATE.CHANGE", true},
		{"inner wildcard mismatch", "WF.*.STATE.CHANGE", "WF.checkout.INIT", false},
		{"bare wildcard", "*", "ANYTHING.AT.ALL", true},
		{"question mark is literal", "A?.*", "AB.C", false},
		{"question mark matches itself", "A?.*", "A?.C", true},
		{"backslash is literal", `A\.*`, `A\.B`, true},
		{"empty pattern empty topic", "", "", true},
		{"empty pattern", "", "A", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, topic.Match(tt.pattern, tt.topic))
		})
	}
}

func TestCompile(t *testing.T) {
	p := topic.Compile("Orders.*")
	assert.True(t, p.IsWildcard())
	assert.Equal(t, "Orders.*", p.String())
	assert.True(t, p.Match("ORDERS.CREATED"))
	assert.False(t, p.Match("INVOICES.CREATED"))

	exact := topic.Compile("Orders.Created")
	assert.False(t, exact.IsWildcard())
	assert.True(t, exact.Match("Orders.Created"))
	assert.False(t, exact.Match("ORDERS.CREATED"))
}

func TestLiteral(t *testing.T) {
	p := topic.Literal("WF.a*.STATE.CHANGE")
	assert.False(t, p.IsWildcard())
	assert.Equal(t, "WF.a*.STATE.CHANGE", p.String())
	assert.True(t, p.Match("WF.a*.STATE.CHANGE"))
	assert.False(t, p.Match("WF.abc.STATE.CHANGE"))
	assert.False(t, p.Match("wf.a*.state.change"))
}
