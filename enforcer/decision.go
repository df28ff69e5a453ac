package enforcer

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stupid-simple/retention/catalog"
	"github.com/stupid-simple/retention/retention"
)

type Action int

const (
	Keep Action = iota
	Delete
)

func (a Action) String() string {
	switch a {
	case Keep:
		return "keep"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "keep":
		*a = Keep
	case "delete":
		*a = Delete
	default:
		return fmt.Errorf("unknown action %q", text)
	}
	return nil
}

// Decision is what happens to one artifact. Tier is only meaningful for Keep.
type Decision struct {
	Artifact catalog.Artifact
	Action   Action
	Tier     retention.Tier
	Reason   string
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (d Decision) MarshalZerologObject(e *zerolog.Event) {
	e.Str("id", d.Artifact.Identifier)
	e.Str("action", d.Action.String())
	if d.Action == Keep {
		e.Str("tier", d.Tier.String())
	}
	e.Str("reason", d.Reason)
}

// Plan turns classifications into decisions: Keep for every classified
// artifact, Delete for every unclassified one. It has no side effects and
// returns the same decisions for the same input, in the same order.
func Plan(classifications []retention.Classification) []Decision {
	decisions := make([]Decision, 0, len(classifications))
	for _, cl := range classifications {
		d := Decision{
			Artifact: cl.Artifact,
			Tier:     cl.Tier,
		}
		if cl.Tier == retention.Unclassified {
			d.Action = Delete
			d.Reason = deleteReason(cl)
		} else {
			d.Action = Keep
			d.Reason = fmt.Sprintf("%s backup, %d days old", cl.Tier, cl.AgeDays)
		}
		decisions = append(decisions, d)
	}
	return decisions
}

func deleteReason(cl retention.Classification) string {
	if cl.Err != nil {
		return cl.Err.Error()
	}
	return fmt.Sprintf("%d days old, outside every tier", cl.AgeDays)
}
