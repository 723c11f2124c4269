package aggregate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/expand"
)

// Hierarchy names a group-by path over timesheet records.
type Hierarchy string

const (
	ByManager Hierarchy = "manager" // manager → client → sponsor → case → worker
	ByClient  Hierarchy = "client"  // client → sponsor → case → worker
	ByWorker  Hierarchy = "worker"  // worker → client → sponsor → case
)

// AllHierarchies lists the hierarchies in browser cycle order.
func AllHierarchies() []Hierarchy {
	return []Hierarchy{ByManager, ByClient, ByWorker}
}

func ParseHierarchy(s string) (Hierarchy, error) {
	switch h := Hierarchy(strings.ToLower(strings.TrimSpace(s))); h {
	case ByManager, ByClient, ByWorker:
		return h, nil
	case "account-manager", "account_manager", "accountmanager":
		return ByManager, nil
	}
	return "", fmt.Errorf("unknown hierarchy %q (want manager, client or worker)", s)
}

// Kinds returns the level kinds from the root down.
func (h Hierarchy) Kinds() []Kind {
	levels := h.levels()
	kinds := make([]Kind, len(levels))
	for i, l := range levels {
		kinds[i] = l.Kind
	}
	return kinds
}

// CollapsePolicy is how the browser treats expanded descendants of a
// collapsed node in this hierarchy.
func (h Hierarchy) CollapsePolicy() expand.CollapsePolicy {
	if h == ByClient {
		return expand.PruneDescendants
	}
	return expand.RetainDescendants
}

// entry is one worker's hours on one case record.
type entry struct {
	// occurrence numbers records with the same manager, client, sponsor
	// and title in input order. Case paths stay put when unrelated records
	// move.
	occurrence int
	manager string
	client  string
	sponsor string
	title   string
	worker  string
	hours   float64
}

var (
	managerLevel = Level[entry]{Kind: KindManager, Key: func(e entry) string { return e.manager }}
	clientLevel  = Level[entry]{Kind: KindClient, Key: func(e entry) string { return e.client }}
	sponsorLevel = Level[entry]{Kind: KindSponsor, Key: func(e entry) string { return e.sponsor }}
	workerLevel  = Level[entry]{Kind: KindWorker, Key: func(e entry) string { return e.worker }}
	// Each record is its own case even when titles repeat.
	caseLevel = Level[entry]{
		Kind:  KindCase,
		Key:   func(e entry) string { return e.title },
		Group: func(e entry) string { return strconv.Itoa(e.occurrence) + "#" + e.title },
	}
)

func (h Hierarchy) levels() []Level[entry] {
	switch h {
	case ByClient:
		return []Level[entry]{clientLevel, sponsorLevel, caseLevel, workerLevel}
	case ByWorker:
		return []Level[entry]{workerLevel, clientLevel, sponsorLevel, caseLevel}
	default:
		return []Level[entry]{managerLevel, clientLevel, sponsorLevel, caseLevel, workerLevel}
	}
}

// Aggregate folds records into h on category field. Records whose field
// total is zero are dropped, as are workers with zero hours. Bad hour
// values are not reported: non-finite values count as zero and negative
// values are summed as given, and any node they cancel out to zero is
// left out. The result is unsorted.
func Aggregate(records []domain.CaseTimeRecord, field domain.HoursField, h Hierarchy) []*Node {
	return Fold(flatten(records, field), h.levels(), func(e entry) float64 { return e.hours })
}

// AggregateStrict validates records before folding and returns every
// negative or non-finite hour value as an error.
func AggregateStrict(records []domain.CaseTimeRecord, field domain.HoursField, h Hierarchy) ([]*Node, error) {
	if err := domain.ValidateRecords(records); err != nil {
		return nil, fmt.Errorf("aggregating %s hours: %w", field, err)
	}
	return Aggregate(records, field, h), nil
}

type caseIdentity struct {
	manager, client, sponsor, title string
}

func flatten(records []domain.CaseTimeRecord, field domain.HoursField) []entry {
	var entries []entry
	seen := make(map[caseIdentity]int)
	for _, r := range records {
		id := caseIdentity{r.AccountManagerName, r.ClientName, r.SponsorName, r.Title}
		occurrence := seen[id]
		seen[id]++
		if r.HoursFor(field) == 0 {
			continue
		}
		for _, w := range r.PerWorkerHours {
			hours := field.Of(w)
			if hours == 0 {
				continue
			}
			entries = append(entries, entry{
				occurrence: occurrence,
				manager:    r.AccountManagerName,
				client:     r.ClientName,
				sponsor:    r.SponsorName,
				title:      r.Title,
				worker:     w.WorkerName,
				hours:      hours,
			})
		}
	}
	return entries
}
