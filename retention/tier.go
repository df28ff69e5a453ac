package retention

import (
	"fmt"
	"strings"
)

type Tier int

const (
	Unclassified Tier = iota
	Daily
	Weekly
	Monthly
)

var tierNames = map[Tier]string{
	Unclassified: "unclassified",
	Daily:        "daily",
	Weekly:       "weekly",
	Monthly:      "monthly",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func ParseTier(s string) (Tier, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for tier, name := range tierNames {
		if name == s {
			return tier, nil
		}
	}
	return Unclassified, fmt.Errorf("unknown retention tier %q", s)
}
