package doc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePointer_Tokens(t *testing.T) {
	ptr := ParsePointer("/p1/2/p3~0p3.p3/-/p4~1p4/p5")
	assert.Equal(t, Pointer{
		{Kind: TokenProperty, Property: "p1"},
		{Kind: TokenIndex, Index: 2},
		{Kind: TokenProperty, Property: "p3~p3.p3"},
		{Kind: TokenNextIndex},
		{Kind: TokenProperty, Property: "p4/p4"},
		{Kind: TokenProperty, Property: "p5"},
	}, ptr)

	assert.Nil(t, ParsePointer(""))
}

func TestParsePointer_IntegerLikeProperties(t *testing.T) {
	// Leading zeros and a leading plus keep the property interpretation.
	cases := []struct {
		segment string
		expect  Token
	}{
		{"9", Token{Kind: TokenIndex, Index: 9}},
		{"0", Token{Kind: TokenIndex, Index: 0}},
		{"009", Token{Kind: TokenProperty, Property: "009"}},
		{"+9", Token{Kind: TokenProperty, Property: "+9"}},
		{"-", Token{Kind: TokenNextIndex}},
		{"-1", Token{Kind: TokenProperty, Property: "-1"}},
	}
	for _, tc := range cases {
		got := ParsePointer("/" + tc.segment)
		assert.Equal(t, Pointer{tc.expect}, got, "segment %q", tc.segment)
	}
}

func TestPointer_StringRoundTrip(t *testing.T) {
	for _, raw := range []string{
		"",
		"/a/b/c",
		"/0/12/-",
		"/a~0b/c~1d",
		"/009/+9",
	} {
		assert.Equal(t, raw, ParsePointer(raw).String())
	}
}

func TestPointer_Query(t *testing.T) {
	node := mustParse(t, `{
		"hello": {"world": [null, true, {"deep": 42}]},
		"3": "index-like",
		"-": "dash"
	}`)

	cases := []struct {
		ptr    string
		expect Node
		found  bool
	}{
		{"", node, true},
		{"/hello/world/1", Bool(true), true},
		{"/hello/world/2/deep", Uint(42), true},
		{"/hello/world/0", Null{}, true},
		{"/3", String("index-like"), true},
		{"/-", String("dash"), true},
		{"/hello/world/9", nil, false},
		{"/hello/world/-", nil, false},
		{"/hello/missing", nil, false},
		{"/hello/world/1/deeper", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.ptr, func(t *testing.T) {
			got, ok := ParsePointer(tc.ptr).Query(node)
			assert.Equal(t, tc.found, ok)
			if tc.found {
				assert.Equal(t, tc.expect, got)
			}
		})
	}
}
