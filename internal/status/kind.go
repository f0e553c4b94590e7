package status

import (
	"fmt"
	"strings"
)

// Kind is the elemental type of a status or damage source.
type Kind uint8

const (
	Physical Kind = iota
	Fire
	Ice
	Electric
	Toxic
)

var kindNames = map[Kind]string{
	Physical: "physical",
	Fire:     "fire",
	Ice:      "ice",
	Electric: "electric",
	Toxic:    "toxic",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind parses a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == key {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown status kind %q", s)
}

// overlays maps a kind to its looping overlay effect. Physical has none.
var overlays = map[Kind]string{
	Fire:     "burn_loop",
	Ice:      "freeze_loop",
	Electric: "shock_loop",
	Toxic:    "poison_loop",
}

// OverlayEffect returns the effect name shown while kind is active.
func OverlayEffect(k Kind) (string, bool) {
	name, ok := overlays[k]
	return name, ok
}
