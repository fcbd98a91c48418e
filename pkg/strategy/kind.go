package strategy

import (
	"fmt"
	"strings"

	"github.com/aretw0/dialectic/pkg/domain"
)

// Kind enumerates the strategic actions.
type Kind int

const (
	// KindNone means no action is armed.
	KindNone Kind = iota
	KindReframe
	KindExtrapolate
	KindBoast
	KindSynthesis
)

var kindNames = map[Kind]string{
	KindNone:        "none",
	KindReframe:     "reframe",
	KindExtrapolate: "extrapolate",
	KindBoast:       "boast",
	KindSynthesis:   "synthesis",
}

// Kinds returns the dispatchable kinds in declaration order.
func Kinds() []Kind {
	return []Kind{KindReframe, KindExtrapolate, KindBoast, KindSynthesis}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves an action name. The empty string and "none" map to KindNone.
func ParseKind(s string) (Kind, error) {
	clean := strings.ToLower(strings.TrimSpace(s))
	if clean == "" {
		return KindNone, nil
	}
	for k, name := range kindNames {
		if name == clean {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("%w: %q", domain.ErrUnknownAction, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
