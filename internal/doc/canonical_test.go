package doc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_Basics(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		expect string
	}{
		{"scalars", `[null, true, false, 42, -7, 3.25, "hi"]`,
			`[null,true,false,42,-7,3.25,"hi"]`},
		{"integral float", `[10.0, -3.0]`, `[10,-3]`},
		{"nested", `{"b":{"d":[1,2],"c":null},"a":"x"}`,
			`{"a":"x","b":{"c":null,"d":[1,2]}}`},
		{"empty containers", `{"a":[],"b":{}}`, `{"a":[],"b":{}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MarshalCanonical(mustParse(t, tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.expect, string(got))
		})
	}
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical(String(`<a href="x">&</a>`))
	require.NoError(t, err)
	assert.Equal(t, `"<a href=\"x\">&</a>"`, string(got))
}

func TestMarshalCanonical_ControlEscapes(t *testing.T) {
	got, err := MarshalCanonical(String("a\tb\nc\x01d"))
	require.NoError(t, err)
	assert.Equal(t, `"a\tb\nc\u0001d"`, string(got))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// U+0065 U+0301 (e + combining acute) normalizes to U+00E9.
	got, err := MarshalCanonical(String("café"))
	require.NoError(t, err)
	assert.Equal(t, "\"café\"", string(got))
}

func TestMarshalCanonical_UTF16KeyOrder(t *testing.T) {
	// UTF-8 byte order puts U+FF21 (EF BC A1) before U+1F600 (F0 9F 98 80),
	// but the surrogate pair D83D DE00 sorts before the single unit FF21
	// under UTF-16 code unit order.
	obj := NewObject(
		Field{Property: "\U0001F600", Value: Uint(1)},
		Field{Property: "Ａ", Value: Uint(2)},
	)
	got, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":1,\"Ａ\":2}", string(got))
}

func TestMarshalCanonical_EqualDocumentsAgree(t *testing.T) {
	a := mustParse(t, `{"z":1,"a":[true,{"y":2,"x":3}]}`)
	b := mustParse(t, `{"a":[true,{"x":3,"y":2}],"z":1}`)
	require.Equal(t, 0, Compare(a, b))

	ca, err := MarshalCanonical(a)
	require.NoError(t, err)
	cb, err := MarshalCanonical(b)
	require.NoError(t, err)
	assert.Equal(t, ca, cb)
}
