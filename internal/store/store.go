// Package store persists the history of generated drafts.
package store

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/cache"
	"github.com/sells-group/outreach-cli/internal/model"
)

// ErrNotFound is returned when a draft does not exist.
var ErrNotFound = eris.New("store: draft not found")

// DraftFilter specifies criteria for listing drafts.
type DraftFilter struct {
	Company string `json:"company,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for draft history.
type Store interface {
	SaveDraft(ctx context.Context, rec model.DraftRecord) error
	GetDraft(ctx context.Context, id string) (*model.DraftRecord, error)
	ListDrafts(ctx context.Context, filter DraftFilter) ([]model.DraftRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Recorder adapts a Store to the orchestrator's recorder hook.
type Recorder struct {
	st Store
}

// NewRecorder wraps st.
func NewRecorder(st Store) *Recorder { return &Recorder{st: st} }

func (r *Recorder) Name() string { return "store" }

func (r *Recorder) Record(ctx context.Context, rec model.DraftRecord) error {
	return r.st.SaveDraft(ctx, rec)
}

const defaultListLimit = 100

func listLimit(l int) int {
	if l <= 0 {
		return defaultListLimit
	}
	return l
}

// draftRow is the column form of a DraftRecord shared by both backends.
type draftRow struct {
	id, company, companyKey string
	facts, draft, sources   []byte
	ceoEmail, synthesis     string
	cacheHit                bool
	durationMS              int64
}

func toRow(rec model.DraftRecord) (draftRow, error) {
	facts, err := json.Marshal(rec.Facts)
	if err != nil {
		return draftRow{}, eris.Wrap(err, "store: marshal facts")
	}
	draft, err := json.Marshal(rec.Draft)
	if err != nil {
		return draftRow{}, eris.Wrap(err, "store: marshal draft")
	}
	sources := rec.Sources
	if sources == nil {
		sources = []model.SourceID{}
	}
	srcJSON, err := json.Marshal(sources)
	if err != nil {
		return draftRow{}, eris.Wrap(err, "store: marshal sources")
	}
	return draftRow{
		id:         rec.ID,
		company:    rec.CompanyName,
		companyKey: cache.Key(rec.CompanyName),
		facts:      facts,
		draft:      draft,
		sources:    srcJSON,
		ceoEmail:   rec.CEOEmail,
		synthesis:  rec.Synthesis,
		cacheHit:   rec.CacheHit,
		durationMS: rec.DurationMS,
	}, nil
}

func decodeJSONColumns(rec *model.DraftRecord, facts, draft, sources []byte) error {
	if err := json.Unmarshal(facts, &rec.Facts); err != nil {
		return eris.Wrap(err, "store: unmarshal facts")
	}
	if err := json.Unmarshal(draft, &rec.Draft); err != nil {
		return eris.Wrap(err, "store: unmarshal draft")
	}
	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &rec.Sources); err != nil {
			return eris.Wrap(err, "store: unmarshal sources")
		}
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// Open connects to the configured backend and applies migrations. The none
// driver returns a nil Store.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		st  Store
		err error
	)
	switch driver {
	case DriverNone, "":
		return nil, nil
	case DriverSQLite:
		st, err = NewSQLite(dsn)
	case DriverPostgres:
		st, err = NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
