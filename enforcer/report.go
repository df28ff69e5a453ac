package enforcer

import (
	"cmp"
	"slices"

	"github.com/docker/go-units"
	"github.com/rs/zerolog"
	"github.com/stupid-simple/retention/retention"
)

type Failure struct {
	Identifier string `json:"identifier"`
	Reason     string `json:"reason"`
	Err        error  `json:"-"`
}

type Kept struct {
	Identifier string         `json:"identifier"`
	Tier       retention.Tier `json:"tier"`
}

// ApplyReport is the outcome of Apply. Deletions that were never attempted,
// for example because the context expired, appear in no list.
type ApplyReport struct {
	Deleted    []string  `json:"deleted"`
	Failed     []Failure `json:"failed"`
	Kept       []Kept    `json:"kept"`
	FreedBytes int64     `json:"freed_bytes"`
	DryRun     bool      `json:"dry_run,omitempty"`
}

// ToMap returns the report as a plain mapping for logging and alerting consumers.
func (r ApplyReport) ToMap() map[string]any {
	failed := make([]map[string]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		failed = append(failed, map[string]string{"identifier": f.Identifier, "reason": f.Reason})
	}
	kept := make([]map[string]string, 0, len(r.Kept))
	for _, k := range r.Kept {
		kept = append(kept, map[string]string{"identifier": k.Identifier, "tier": k.Tier.String()})
	}
	deleted := make([]string, len(r.Deleted))
	copy(deleted, r.Deleted)

	return map[string]any{
		"deleted": deleted,
		"failed":  failed,
		"kept":    kept,
	}
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (r ApplyReport) MarshalZerologObject(e *zerolog.Event) {
	e.Int("deleted", len(r.Deleted))
	e.Int("failed", len(r.Failed))
	e.Int("kept", len(r.Kept))
	e.Str("freed", units.HumanSize(float64(r.FreedBytes)))
	if r.DryRun {
		e.Bool("dryrun", true)
	}
}

func (r *ApplyReport) sort() {
	slices.Sort(r.Deleted)
	slices.SortFunc(r.Failed, func(a, b Failure) int {
		return cmp.Compare(a.Identifier, b.Identifier)
	})
	slices.SortFunc(r.Kept, func(a, b Kept) int {
		return cmp.Compare(a.Identifier, b.Identifier)
	})
}
