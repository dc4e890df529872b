package codes_test

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tally/pkg/codes"
	"github.com/agentstation/tally/pkg/errors"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want codes.Code
	}{
		{"single digit", "1", codes.Code{Kind: codes.Mainland, Value: "01"}},
		{"padded", "01", codes.Code{Kind: codes.Mainland, Value: "01"}},
		{"three digit pad", "075", codes.Code{Kind: codes.Mainland, Value: "75"}},
		{"two digit", "75", codes.Code{Kind: codes.Mainland, Value: "75"}},
		{"upper bound", "95", codes.Code{Kind: codes.Mainland, Value: "95"}},
		{"surrounding spaces", "  9 ", codes.Code{Kind: codes.Mainland, Value: "09"}},
		{"corsica 2A", "2A", codes.Code{Kind: codes.Corsican, Value: "2A"}},
		{"corsica lower case", "2b", codes.Code{Kind: codes.Corsican, Value: "2B"}},
		{"corsica padded", "02A", codes.Code{Kind: codes.Corsican, Value: "2A"}},
		{"guadeloupe", "971", codes.Code{Kind: codes.Overseas, Value: "971"}},
		{"mayotte", "976", codes.Code{Kind: codes.Overseas, Value: "976"}},
		{"new caledonia", "988", codes.Code{Kind: codes.Overseas, Value: "988"}},
		{"abroad ZZ", "ZZ", codes.Code{Kind: codes.Overseas, Value: "ZZ"}},
		{"abroad lower", "za", codes.Code{Kind: codes.Overseas, Value: "ZA"}},
		{"empty", "", codes.Code{}},
		{"blank", "   ", codes.Code{}},
		{"zero", "0", codes.Code{}},
		{"zero padded zero", "00", codes.Code{}},
		{"96 out of range", "96", codes.Code{}},
		{"970 gap", "970", codes.Code{}},
		{"990 past overseas", "990", codes.Code{}},
		{"four digits", "0075", codes.Code{}},
		{"corsica over padded", "002A", codes.Code{}},
		{"2C", "2C", codes.Code{}},
		{"header artifact", "Department code", codes.Code{}},
		{"float artifact", "1.0", codes.Code{}},
		{"negative", "-1", codes.Code{}},
		{"Z with punctuation", "Z-1", codes.Code{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codes.Normalize(tt.raw))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	candidates := []string{"1", "01", "001", "2A", "2b", "971", "ZZ", "ZA", "", "96", "abc", "20", "95", "989"}
	for _, raw := range candidates {
		once := codes.Normalize(raw)
		twice := codes.Normalize(once.String())
		assert.Equal(t, once, twice, "normalize(normalize(%q))", raw)
	}
}

func TestNormalizeIdempotentRandom(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	alphabet := "0123456789ABZ ab-"
	for i := 0; i < 5000; i++ {
		n := r.IntN(5)
		b := make([]byte, n)
		for j := range b {
			b[j] = alphabet[r.IntN(len(alphabet))]
		}
		raw := string(b)
		once := codes.Normalize(raw)
		require.Equal(t, once, codes.Normalize(once.String()), "raw=%q", raw)
	}
}

func TestNormalizeMainlandRange(t *testing.T) {
	for n := 1; n <= 95; n++ {
		for _, raw := range []string{fmt.Sprint(n), fmt.Sprintf("%02d", n), fmt.Sprintf("%03d", n)} {
			c := codes.Normalize(raw)
			assert.Equal(t, codes.Mainland, c.Kind, raw)
			assert.Equal(t, fmt.Sprintf("%02d", n), c.Value, raw)
			assert.True(t, c.InScope(), raw)
		}
	}
}

func TestExclusion(t *testing.T) {
	for _, raw := range []string{"971", "972", "973", "974", "976", "ZA", "ZB", "ZZ"} {
		c := codes.Normalize(raw)
		assert.Contains(t, []codes.Kind{codes.Overseas, codes.Invalid}, c.Kind, raw)
		assert.False(t, c.InScope(), raw)
	}
}

func TestParse(t *testing.T) {
	c, err := codes.Parse("5")
	require.NoError(t, err)
	assert.Equal(t, "05", c.String())

	c, err = codes.Parse("ZZ")
	require.NoError(t, err)
	assert.Equal(t, codes.Overseas, c.Kind)

	_, err = codes.Parse("Département")
	require.Error(t, err)
	assert.True(t, errors.IsMalformedCode(err))

	assert.Panics(t, func() { codes.MustParse("") })
	assert.Equal(t, "2A", codes.MustParse("2a").Value)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "mainland", codes.Mainland.String())
	assert.Equal(t, "corsican", codes.Corsican.String())
	assert.Equal(t, "overseas", codes.Overseas.String())
	assert.Equal(t, "invalid", codes.Invalid.String())
	assert.True(t, codes.Code{}.IsZero())
	assert.False(t, codes.Code{}.InScope())

	data, err := json.Marshal(codes.Normalize("7"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"mainland","value":"07"}`, string(data))

	var back codes.Code
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"corsican","value":"2B"}`), &back))
	assert.Equal(t, codes.Code{Kind: codes.Corsican, Value: "2B"}, back)

	var kind codes.Kind
	assert.Error(t, kind.UnmarshalText([]byte("colonial")))
}
