package catalog

import (
	"time"

	"github.com/docker/go-units"
	"github.com/rs/zerolog"
)

type TimestampSource string

const (
	TimestampFromName  TimestampSource = "name"
	TimestampFromMTime TimestampSource = "mtime"
)

// Artifact is a single backup unit found in a backup root: a dump file,
// a directory archive or a volume archive.
type Artifact struct {
	Identifier      string // base name, unique within the root
	Path            string
	CreatedAt       time.Time
	SizeBytes       int64
	IsDir           bool
	TimestampSource TimestampSource
	TimestampErr    error // *ClassificationError when the embedded timestamp is malformed
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (a Artifact) MarshalZerologObject(e *zerolog.Event) {
	e.Str("id", a.Identifier)
	e.Str("path", a.Path)
	if !a.CreatedAt.IsZero() {
		e.Time("created_at", a.CreatedAt)
	}
	e.Str("created_from", string(a.TimestampSource))
	e.Str("size", units.HumanSize(float64(a.SizeBytes)))
	if a.IsDir {
		e.Bool("dir", true)
	}
	if a.TimestampErr != nil {
		e.AnErr("timestamp_err", a.TimestampErr)
	}
}
