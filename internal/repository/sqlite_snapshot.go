package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/domain"
)

// SQLiteSnapshotRepo implements SnapshotRepo on a DBTX, so it can be
// bound to either the database or a transaction.
type SQLiteSnapshotRepo struct {
	db db.DBTX
}

func NewSQLiteSnapshotRepo(db db.DBTX) *SQLiteSnapshotRepo {
	return &SQLiteSnapshotRepo{db: db}
}

const (
	dateLayout = domain.DateLayoutISO
	// Fixed width so created_at sorts as text.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

const snapshotColumns = `id, slug, label, filters_json, date_start, date_end, summary_json, record_count, created_at`

type filterRow struct {
	Field          string   `json:"field"`
	SelectedValues []string `json:"selectedValues"`
}

type summaryRow struct {
	TotalHours            float64 `json:"totalHours"`
	TotalConsultingHours  float64 `json:"totalConsultingHours"`
	TotalHandsOnHours     float64 `json:"totalHandsOnHours"`
	TotalSquadHours       float64 `json:"totalSquadHours"`
	TotalInternalHours    float64 `json:"totalInternalHours"`
	UniqueClients         int     `json:"uniqueClients"`
	UniqueSponsors        int     `json:"uniqueSponsors"`
	UniqueCases           int     `json:"uniqueCases"`
	UniqueWorkers         int     `json:"uniqueWorkers"`
	UniqueAccountManagers int     `json:"uniqueAccountManagers"`
}

func (r *SQLiteSnapshotRepo) Create(ctx context.Context, s *domain.Snapshot, records []domain.CaseTimeRecord) error {
	filters := make([]filterRow, 0, len(s.Filters))
	for _, f := range s.Filters {
		filters = append(filters, filterRow{Field: f.Field, SelectedValues: f.SelectedValues})
	}
	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return fmt.Errorf("encoding snapshot filters: %w", err)
	}
	summaryJSON, err := json.Marshal(toSummaryRow(s.Summary))
	if err != nil {
		return fmt.Errorf("encoding snapshot summary: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO snapshots (`+snapshotColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.Slug,
		s.Label,
		string(filtersJSON),
		nullableTimeToString(s.Range.Start, dateLayout),
		nullableTimeToString(s.Range.End, dateLayout),
		string(summaryJSON),
		len(records),
		s.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}

	for i, rec := range records {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO snapshot_cases (snapshot_id, seq, title, client_name, sponsor_name, account_manager_name)
			VALUES (?, ?, ?, ?, ?, ?)`,
			s.ID, i, rec.Title, rec.ClientName, rec.SponsorName, rec.AccountManagerName)
		if err != nil {
			return fmt.Errorf("inserting snapshot case %d: %w", i, err)
		}
		for j, w := range rec.PerWorkerHours {
			_, err := r.db.ExecContext(ctx,
				`INSERT INTO snapshot_worker_hours
				(snapshot_id, case_seq, seq, worker_name, consulting_hours, hands_on_hours, squad_hours, internal_hours)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				s.ID, i, j, w.WorkerName,
				finiteOrZero(w.ConsultingHours),
				finiteOrZero(w.HandsOnHours),
				finiteOrZero(w.SquadHours),
				finiteOrZero(w.InternalHours))
			if err != nil {
				return fmt.Errorf("inserting snapshot worker hours %d/%d: %w", i, j, err)
			}
		}
	}
	s.RecordCount = len(records)
	return nil
}

func (r *SQLiteSnapshotRepo) GetByID(ctx context.Context, id string) (*domain.Snapshot, error) {
	if id == "" {
		return nil, fmt.Errorf("snapshot %q: %w", id, ErrNotFound)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots
		WHERE id = ? OR id LIKE ? ESCAPE '\'
		ORDER BY id = ? DESC LIMIT 2`,
		id, escapeLike(id)+"%", id)
	if err != nil {
		return nil, fmt.Errorf("getting snapshot: %w", err)
	}
	defer rows.Close()

	var found []*domain.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("getting snapshot: %w", err)
	}

	switch {
	case len(found) == 0:
		return nil, fmt.Errorf("snapshot %q: %w", id, ErrNotFound)
	case found[0].ID == id, len(found) == 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("snapshot %q: %w", id, ErrAmbiguousID)
	}
}

func (r *SQLiteSnapshotRepo) List(ctx context.Context, slug string) ([]*domain.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM snapshots`
	var args []any
	if slug != "" {
		query += ` WHERE slug = ?`
		args = append(args, slug)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []*domain.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	return out, nil
}

// LoadRecords returns the saved records in their original order. Worker
// rows are read with a single join so no second query runs while rows
// are open.
func (r *SQLiteSnapshotRepo) LoadRecords(ctx context.Context, id string) ([]domain.CaseTimeRecord, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot records: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("snapshot %q: %w", id, ErrNotFound)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT c.seq, c.title, c.client_name, c.sponsor_name, c.account_manager_name,
			w.worker_name, w.consulting_hours, w.hands_on_hours, w.squad_hours, w.internal_hours
		FROM snapshot_cases c
		LEFT JOIN snapshot_worker_hours w ON w.snapshot_id = c.snapshot_id AND w.case_seq = c.seq
		WHERE c.snapshot_id = ?
		ORDER BY c.seq, w.seq`, id)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot records: %w", err)
	}
	defer rows.Close()

	records := []domain.CaseTimeRecord{}
	lastSeq := -1
	for rows.Next() {
		var (
			seq                                  int
			rec                                  domain.CaseTimeRecord
			worker                               sql.NullString
			consulting, handsOn, squad, internal sql.NullFloat64
		)
		if err := rows.Scan(&seq, &rec.Title, &rec.ClientName, &rec.SponsorName, &rec.AccountManagerName,
			&worker, &consulting, &handsOn, &squad, &internal); err != nil {
			return nil, fmt.Errorf("scanning snapshot record: %w", err)
		}
		if seq != lastSeq {
			records = append(records, rec)
			lastSeq = seq
		}
		if worker.Valid {
			cur := &records[len(records)-1]
			cur.PerWorkerHours = append(cur.PerWorkerHours, domain.WorkerHours{
				WorkerName:      worker.String,
				ConsultingHours: consulting.Float64,
				HandsOnHours:    handsOn.Float64,
				SquadHours:      squad.Float64,
				InternalHours:   internal.Float64,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading snapshot records: %w", err)
	}
	return records, nil
}

func (r *SQLiteSnapshotRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("snapshot %q: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*domain.Snapshot, error) {
	var (
		s                    domain.Snapshot
		filtersJSON, sumJSON string
		dateStart, dateEnd   sql.NullString
		createdAt            string
	)
	if err := row.Scan(&s.ID, &s.Slug, &s.Label, &filtersJSON, &dateStart, &dateEnd,
		&sumJSON, &s.RecordCount, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}

	var filters []filterRow
	if err := json.Unmarshal([]byte(filtersJSON), &filters); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s filters: %w", s.ID, err)
	}
	for _, f := range filters {
		s.Filters = append(s.Filters, domain.Filter{Field: f.Field, SelectedValues: f.SelectedValues})
	}

	var sum summaryRow
	if err := json.Unmarshal([]byte(sumJSON), &sum); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s summary: %w", s.ID, err)
	}
	s.Summary = fromSummaryRow(sum)

	s.Range.Start = parseNullableTime(dateStart, dateLayout)
	s.Range.End = parseNullableTime(dateEnd, dateLayout)

	t, err := time.Parse(timestampLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot %s created_at: %w", s.ID, err)
	}
	s.CreatedAt = t
	return &s, nil
}

func toSummaryRow(s domain.TimesheetSummary) summaryRow {
	return summaryRow{
		TotalHours:            finiteOrZero(s.TotalHours),
		TotalConsultingHours:  finiteOrZero(s.TotalConsultingHours),
		TotalHandsOnHours:     finiteOrZero(s.TotalHandsOnHours),
		TotalSquadHours:       finiteOrZero(s.TotalSquadHours),
		TotalInternalHours:    finiteOrZero(s.TotalInternalHours),
		UniqueClients:         s.UniqueClients,
		UniqueSponsors:        s.UniqueSponsors,
		UniqueCases:           s.UniqueCases,
		UniqueWorkers:         s.UniqueWorkers,
		UniqueAccountManagers: s.UniqueAccountManagers,
	}
}

func fromSummaryRow(r summaryRow) domain.TimesheetSummary {
	return domain.TimesheetSummary{
		TotalHours:            r.TotalHours,
		TotalConsultingHours:  r.TotalConsultingHours,
		TotalHandsOnHours:     r.TotalHandsOnHours,
		TotalSquadHours:       r.TotalSquadHours,
		TotalInternalHours:    r.TotalInternalHours,
		UniqueClients:         r.UniqueClients,
		UniqueSponsors:        r.UniqueSponsors,
		UniqueCases:           r.UniqueCases,
		UniqueWorkers:         r.UniqueWorkers,
		UniqueAccountManagers: r.UniqueAccountManagers,
	}
}
