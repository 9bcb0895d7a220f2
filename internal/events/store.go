package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/riskdesk/internal/db"
)

const eventColumns = `event_id, occurred_at, resolved_at, resolution_hours, risk_level, description,
	financial_impact, customer_impact, affected_customers, unavailability_hours, frequency,
	system_criticality, process_failure, internal_fraud, recurrence, status, created_at`

var orderClauses = map[Order]string{
	OrderImpact:         "financial_impact DESC",
	OrderCustomers:      "affected_customers DESC",
	OrderRecent:         "occurred_at DESC",
	OrderUnavailability: "unavailability_hours DESC",
}

// Store reads and writes risk events.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Insert adds or replaces a single event.
func (s *Store) Insert(ctx context.Context, e Event) error {
	return insertEvent(ctx, s.db, e)
}

// InsertMany loads events inside one transaction. progress, when non-nil, is
// called after each insert with the number of events written so far.
func (s *Store) InsertMany(ctx context.Context, list []Event, progress func(done int)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for i, e := range list {
		if err := insertEvent(ctx, tx, e); err != nil {
			return fmt.Errorf("event %s: %w", e.ID, err)
		}
		if progress != nil {
			progress(i + 1)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing events: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEvent(ctx context.Context, ex execer, e Event) error {
	if _, err := ParseLevel(string(e.Level)); err != nil {
		return fmt.Errorf("%w: %q", err, e.Level)
	}
	if e.Status == "" {
		e.Status = StatusOpen
	}
	if !e.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, e.Status)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	var resolvedAt sql.NullString
	if e.ResolvedAt != nil {
		resolvedAt = sql.NullString{String: formatTime(*e.ResolvedAt), Valid: true}
	}

	_, err := ex.ExecContext(ctx, `
		INSERT OR REPLACE INTO risk_events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		formatTime(e.OccurredAt),
		resolvedAt,
		nullFloat(e.ResolutionHours),
		string(e.Level),
		e.Description,
		nullFloat(e.FinancialImpact),
		e.CustomerImpact,
		nullInt64(e.AffectedCustomers),
		nullFloat(e.UnavailabilityHours),
		e.Frequency,
		nullInt(e.SystemCriticality),
		e.ProcessFailure,
		e.InternalFraud,
		e.Recurrence,
		string(e.Status),
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// Get returns a single event or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Event, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM risk_events WHERE event_id = ?", id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting event %s: %w", id, err)
	}
	return e, nil
}

// GetByID is Get under the name the assistant's data gateway uses.
func (s *Store) GetByID(ctx context.Context, id string) (*Event, error) {
	return s.Get(ctx, id)
}

// List returns events for the dashboard, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Event, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.From != "" {
		clauses = append(clauses, "date(occurred_at) >= date(?)")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		clauses = append(clauses, "date(occurred_at) <= date(?)")
		args = append(args, filter.To)
	}
	if filter.Level != "" {
		clauses = append(clauses, "risk_level = ?")
		args = append(args, string(filter.Level))
	}

	query := "SELECT " + eventColumns + " FROM risk_events"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY occurred_at DESC, event_id"

	return s.queryEvents(ctx, "listing events", query, args...)
}

// Statistics aggregates the entire event base.
func (s *Store) Statistics(ctx context.Context) (*Statistics, error) {
	var (
		st               Statistics
		earliest, latest string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN risk_level = 'Crítico' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN risk_level = 'Alto' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN risk_level = 'Médio' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN risk_level = 'Baixo' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(financial_impact), 0),
			COALESCE(AVG(financial_impact), 0),
			COALESCE(SUM(affected_customers), 0),
			COALESCE(SUM(CASE WHEN status = 'aberto' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'em_andamento' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'resolvido' THEN 1 ELSE 0 END), 0),
			COALESCE(MIN(occurred_at), ''),
			COALESCE(MAX(occurred_at), '')
		FROM risk_events`).Scan(
		&st.Total, &st.Critical, &st.High, &st.Medium, &st.Low,
		&st.TotalImpact, &st.AverageImpact, &st.TotalAffectedCustomers,
		&st.Open, &st.InProgress, &st.Resolved,
		&earliest, &latest,
	)
	if err != nil {
		return nil, fmt.Errorf("computing statistics: %w", err)
	}
	st.Earliest = parseTime(earliest)
	st.Latest = parseTime(latest)
	return &st, nil
}

// TopCritical returns the Crítico and Alto events with the largest financial impact.
func (s *Store) TopCritical(ctx context.Context, limit int) ([]Event, error) {
	return s.queryEvents(ctx, "querying top critical events", `
		SELECT `+eventColumns+` FROM risk_events
		WHERE risk_level IN ('Crítico', 'Alto')
		ORDER BY financial_impact DESC, event_id
		LIMIT ?`, limit)
}

// MonthlyRollup returns up to twelve months, newest first.
func (s *Store) MonthlyRollup(ctx context.Context) ([]MonthBucket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m', occurred_at) AS month,
			COUNT(*),
			COALESCE(SUM(CASE WHEN risk_level = 'Crítico' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(financial_impact), 0)
		FROM risk_events
		GROUP BY month
		ORDER BY month DESC
		LIMIT 12`)
	if err != nil {
		return nil, fmt.Errorf("querying monthly rollup: %w", err)
	}
	defer rows.Close()

	var buckets []MonthBucket
	for rows.Next() {
		var b MonthBucket
		if err := rows.Scan(&b.Month, &b.Total, &b.Critical, &b.TotalImpact); err != nil {
			return nil, fmt.Errorf("scanning monthly rollup: %w", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// LevelRollup returns one summary per risk level, most severe first. Levels
// with no events are included with zero counts.
func (s *Store) LevelRollup(ctx context.Context) ([]LevelSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT risk_level, COUNT(*),
			COALESCE(SUM(financial_impact), 0),
			COALESCE(AVG(financial_impact), 0),
			COALESCE(SUM(affected_customers), 0),
			COALESCE(AVG(affected_customers), 0)
		FROM risk_events
		GROUP BY risk_level`)
	if err != nil {
		return nil, fmt.Errorf("querying level rollup: %w", err)
	}
	defer rows.Close()

	byLevel := make(map[RiskLevel]LevelSummary)
	for rows.Next() {
		var (
			ls    LevelSummary
			level string
		)
		if err := rows.Scan(&level, &ls.Total, &ls.TotalImpact, &ls.AverageImpact, &ls.TotalAffectedCustomers, &ls.AverageAffectedCustomers); err != nil {
			return nil, fmt.Errorf("scanning level rollup: %w", err)
		}
		ls.Level = RiskLevel(level)
		byLevel[ls.Level] = ls
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summaries := make([]LevelSummary, 0, len(Levels))
	for _, level := range Levels {
		ls, ok := byLevel[level]
		if !ok {
			ls = LevelSummary{Level: level}
		}
		summaries = append(summaries, ls)
	}
	return summaries, nil
}

// Search runs a structured query with optional level, status and month filters.
func (s *Store) Search(ctx context.Context, p SearchParams) ([]Event, error) {
	var (
		clauses []string
		args    []any
	)
	if p.Level != "" {
		clauses = append(clauses, "risk_level = ?")
		args = append(args, string(p.Level))
	}
	if p.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(p.Status))
	}
	if p.Month != "" {
		clauses = append(clauses, "strftime('%Y-%m', occurred_at) = ?")
		args = append(args, p.Month)
	}

	order, ok := orderClauses[p.Order]
	if !ok {
		order = orderClauses[OrderImpact]
	}

	query := "SELECT " + eventColumns + " FROM risk_events"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY " + order + ", event_id"
	if p.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", p.Limit)
	}

	return s.queryEvents(ctx, "searching events", query, args...)
}

// SearchText matches term against descriptions, case-insensitively, largest impact first.
func (s *Store) SearchText(ctx context.Context, term string, limit int) ([]Event, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	return s.queryEvents(ctx, "searching event descriptions", `
		SELECT `+eventColumns+` FROM risk_events
		WHERE `+db.UnicodeLower+`(description) LIKE ? ESCAPE '\'
		ORDER BY financial_impact DESC, event_id
		LIMIT ?`, pattern, limit)
}

// UpdateStatus sets the status of one event. The new value is validated
// before anything is written.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status) (*StatusChange, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var previous string
	err = tx.QueryRowContext(ctx, "SELECT status FROM risk_events WHERE event_id = ?", id).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading status of %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE risk_events SET status = ? WHERE event_id = ?", string(status), id); err != nil {
		return nil, fmt.Errorf("updating status of %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing status update: %w", err)
	}

	return &StatusChange{EventID: id, Previous: Status(previous), Current: status}, nil
}

func (s *Store) queryEvents(ctx context.Context, what, query string, args ...any) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	var list []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", what, err)
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(sc scanner) (*Event, error) {
	var (
		e                                  Event
		occurredAt, level, status, created string
		resolvedAt                         sql.NullString
		resolutionHours, impact, downtime  sql.NullFloat64
		customers, criticality             sql.NullInt64
		processFailure, fraud, recurrence  bool
	)

	err := sc.Scan(
		&e.ID, &occurredAt, &resolvedAt, &resolutionHours, &level, &e.Description,
		&impact, &e.CustomerImpact, &customers, &downtime, &e.Frequency,
		&criticality, &processFailure, &fraud, &recurrence, &status, &created,
	)
	if err != nil {
		return nil, err
	}

	e.OccurredAt = parseTime(occurredAt)
	e.CreatedAt = parseTime(created)
	e.Level = RiskLevel(level)
	e.Status = Status(status)
	e.ProcessFailure = processFailure
	e.InternalFraud = fraud
	e.Recurrence = recurrence

	if resolvedAt.Valid {
		t := parseTime(resolvedAt.String)
		e.ResolvedAt = &t
	}
	if resolutionHours.Valid {
		e.ResolutionHours = &resolutionHours.Float64
	}
	if impact.Valid {
		e.FinancialImpact = &impact.Float64
	}
	if customers.Valid {
		e.AffectedCustomers = &customers.Int64
	}
	if downtime.Valid {
		e.UnavailabilityHours = &downtime.Float64
	}
	if criticality.Valid {
		c := int(criticality.Int64)
		e.SystemCriticality = &c
	}
	return &e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.DateTime)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.DateTime, time.RFC3339, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
