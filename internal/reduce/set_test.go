package reduce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDestructureSet(t *testing.T) {
	cases := []struct {
		name     string
		lhs, rhs string
		isArray  bool
		lt, rt   [3]bool // presence of add, intersect, remove
	}{
		{
			name: "add and remove arrays",
			lhs:  `{"add": []}`, rhs: `{"remove": []}`,
			isArray: true,
			lt:      [3]bool{true, false, false},
			rt:      [3]bool{false, false, true},
		},
		{
			name: "remove and intersect arrays",
			lhs:  `{"remove": []}`, rhs: `{"intersect": []}`,
			isArray: true,
			lt:      [3]bool{false, false, true},
			rt:      [3]bool{false, true, false},
		},
		{
			name: "intersect and add arrays",
			lhs:  `{"intersect": []}`, rhs: `{"add": []}`,
			isArray: true,
			lt:      [3]bool{false, true, false},
			rt:      [3]bool{true, false, false},
		},
		{
			name: "add and remove objects",
			lhs:  `{"add": {}}`, rhs: `{"remove": {}}`,
			lt:   [3]bool{true, false, false},
			rt:   [3]bool{false, false, true},
		},
		{
			name: "remove and intersect objects",
			lhs:  `{"remove": {}}`, rhs: `{"intersect": {}}`,
			lt:   [3]bool{false, false, true},
			rt:   [3]bool{false, true, false},
		},
		{
			name: "empty lhs side",
			lhs:  `{}`, rhs: `{"add": {}, "remove": {}}`,
			rt: [3]bool{true, false, true},
		},
		{
			name: "empty rhs side",
			lhs:  `{"add": [], "remove": []}`, rhs: `{}`,
			isArray: true,
			lt:      [3]bool{true, false, true},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lhs := parseNode(t, tc.lhs)
			rhs := parseNode(t, tc.rhs)

			lt, rt, isArray, err := destructureSet(nil, lhs, rhs)
			require.NoError(t, err)
			assert.Equal(t, tc.isArray, isArray)
			for i := range lt {
				assert.Equal(t, tc.lt[i], lt[i] != nil, "lhs term %s", termNames[i])
				assert.Equal(t, tc.rt[i], rt[i] != nil, "rhs term %s", termNames[i])
			}
		})
	}
}

func TestDestructureSet_Rejections(t *testing.T) {
	cases := []struct {
		name     string
		lhs, rhs string
	}{
		{"mixed types within a side", `{"add": {}, "intersect": []}`, `{}`},
		{"mixed types across sides", `{"add": {}}`, `{"intersect": []}`},
		{"intersect and remove on one side", `{"intersect": [], "remove": []}`, `{}`},
		{"not an object", `{"intersect": []}`, `42`},
		{"scalar term", `{"add": 42}`, `{}`},
		{"unknown property", `{"subtract": []}`, `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lhs := parseNode(t, tc.lhs)
			rhs := parseNode(t, tc.rhs)

			_, _, _, err := destructureSet(nil, lhs, rhs)
			assert.Error(t, err)
		})
	}
}
