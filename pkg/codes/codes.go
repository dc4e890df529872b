// Package codes classifies French department codes.
//
// Department codes reach the pipeline in several spellings: the areas
// table pads single digits ("01"), referendum exports may not ("1"), and
// some INSEE files pad to three characters ("075"). Corsica uses the two
// historical exceptions "2A" and "2B". Overseas departments and
// territories use three-digit codes in the 971–989 range, and the
// referendum files put French citizens abroad under "Z"-prefixed codes.
//
// Normalize maps every spelling to a Code, a tagged value whose Kind says
// whether the code is mainland, Corsican, overseas or invalid. Filtering
// code elsewhere switches on the Kind; there is no other list of
// out-of-scope codes in the module.
package codes

import (
	"strconv"
	"strings"

	"github.com/agentstation/tally/pkg/errors"
)

// Kind tags a normalized code.
type Kind uint8

const (
	// Invalid is a code that cannot be classified (blank, header artifact, out of range).
	Invalid Kind = iota
	// Mainland is a metropolitan department numbered 1 to 95.
	Mainland
	// Corsican is one of the two Corsican departments, 2A or 2B.
	Corsican
	// Overseas is an overseas department, territory or the abroad constituency.
	Overseas
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Mainland:
		return "mainland"
	case Corsican:
		return "corsican"
	case Overseas:
		return "overseas"
	default:
		return "invalid"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "mainland":
		*k = Mainland
	case "corsican":
		*k = Corsican
	case "overseas":
		*k = Overseas
	case "invalid", "":
		*k = Invalid
	default:
		return errors.NewValidationError("kind", string(text), "unknown code kind")
	}
	return nil
}

// Numeric bounds of the code spaces.
const (
	minMainland = 1
	maxMainland = 95
	minOverseas = 971
	maxOverseas = 989

	// maxDigits bounds zero padding, "075" is accepted but "0075" is not.
	maxDigits = 3
)

// Code is a normalized department code.
type Code struct {
	Kind  Kind   `json:"kind" yaml:"kind"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// String returns the canonical spelling. Normalizing it again yields the
// same Code.
func (c Code) String() string {
	return c.Value
}

// InScope reports whether the code belongs to the mainland aggregation,
// i.e. it is a mainland or Corsican department.
func (c Code) InScope() bool {
	return c.Kind == Mainland || c.Kind == Corsican
}

// IsZero reports whether c is the zero Code.
func (c Code) IsZero() bool {
	return c == Code{}
}

// Normalize classifies a raw department code. It never fails: codes that
// fit no category come back with Kind Invalid and an empty Value.
func Normalize(raw string) Code {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return Code{}
	}

	if s[0] == 'Z' {
		if !isAlnum(s) {
			return Code{}
		}
		return Code{Kind: Overseas, Value: s}
	}

	if corsican, ok := corsicanCode(s); ok {
		return Code{Kind: Corsican, Value: corsican}
	}

	if len(s) > maxDigits || !isDigits(s) {
		return Code{}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return Code{}
	}

	switch {
	case n >= minMainland && n <= maxMainland:
		return Code{Kind: Mainland, Value: pad2(n)}
	case n >= minOverseas && n <= maxOverseas:
		return Code{Kind: Overseas, Value: strconv.Itoa(n)}
	default:
		return Code{}
	}
}

// Parse is the strict form of Normalize. It returns a MalformedCodeError
// for codes that normalize to Invalid.
func Parse(raw string) (Code, error) {
	c := Normalize(raw)
	if c.Kind == Invalid {
		return c, errors.NewMalformedCodeError("", "", raw)
	}
	return c, nil
}

// MustParse is like Parse but panics on malformed codes. Meant for
// constants and tests.
func MustParse(raw string) Code {
	c, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// corsicanCode matches "2A"/"2B", tolerating a leading zero pad ("02A").
func corsicanCode(s string) (string, bool) {
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "2A" || trimmed == "2B" {
		if len(s)-len(trimmed) > maxDigits-len(trimmed) {
			return "", false
		}
		return trimmed, true
	}
	return "", false
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isAlnum(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
