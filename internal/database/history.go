package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"police/fcr/internal/dispatch"
	"police/fcr/internal/sim"
)

const insertRun = `
INSERT INTO simulation_runs (id, started_at, ended_at, ticks, created, assigned, reported, en_route, attended, resolved, mean_response_seconds)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

var historyColumns = []string{
	"run_id", "incident_id", "isr", "priority", "crime_type", "lon", "lat", "status",
	"station_id", "officer_id", "reported_at", "assigned_at", "arrived_at", "resolved_at",
	"travel_distance_m", "attempts",
}

// HistoryStore keeps finished simulation runs and their incidents.
type HistoryStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

var _ sim.HistoryStore = (*HistoryStore)(nil)

func NewHistoryStore(pool *pgxpool.Pool, log zerolog.Logger) *HistoryStore {
	return &HistoryStore{pool: pool, log: log}
}

// SaveRun writes the run summary and every incident in one transaction.
func (s *HistoryStore) SaveRun(ctx context.Context, summary sim.Summary, incidents []*dispatch.Incident) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertRun,
			summary.RunID,
			summary.Start,
			summary.End,
			summary.Ticks,
			summary.Created,
			summary.Assigned,
			summary.Counts.Reported,
			summary.Counts.EnRoute,
			summary.Counts.Attended,
			summary.Counts.Resolved,
			summary.MeanResponse.Seconds(),
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		n, err := tx.CopyFrom(ctx, pgx.Identifier{"incident_history"}, historyColumns,
			pgx.CopyFromSlice(len(incidents), func(i int) ([]any, error) {
				return historyRow(summary.RunID, incidents[i]), nil
			}))
		if err != nil {
			return fmt.Errorf("copy incidents: %w", err)
		}
		if int(n) != len(incidents) {
			return fmt.Errorf("copied %d of %d incidents", n, len(incidents))
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("run_id", summary.RunID.String()).
		Int("incidents", len(incidents)).
		Msg("run history saved")
	return nil
}

func historyRow(runID uuid.UUID, inc *dispatch.Incident) []any {
	var stationID, officerID *int
	if st := inc.Station(); st != nil {
		id := st.ID()
		stationID = &id
	}
	switch {
	case inc.Officer() != nil:
		id := inc.Officer().ID()
		officerID = &id
	case inc.ResolvedBy() != 0:
		id := inc.ResolvedBy()
		officerID = &id
	}
	return []any{
		runID,
		inc.ID(),
		inc.ISR(),
		inc.Priority().String(),
		inc.CrimeType(),
		inc.Location().Lon(),
		inc.Location().Lat(),
		inc.Status().String(),
		stationID,
		officerID,
		inc.ReportTime(),
		optionalTime(inc.AssignedAt()),
		optionalTime(inc.ArrivedAt()),
		optionalTime(inc.ResolvedAt()),
		inc.TravelDistance(),
		inc.Attempts(),
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
