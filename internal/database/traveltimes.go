package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"police/fcr/internal/geo"
	"police/fcr/internal/traveltime"
)

const (
	selectSampledPoints = `SELECT point_index, lon, lat FROM sampled_points ORDER BY point_index`
	selectTravelTimes   = `SELECT point1_index, point2_index, distance_metres, duration_seconds FROM travel_times`
)

// LoadTravelTimes builds a travel-time table from the sampled_points and
// travel_times tables. Point indexes must be dense from zero.
func LoadTravelTimes(ctx context.Context, pool *pgxpool.Pool) (*traveltime.Table, error) {
	rows, err := pool.Query(ctx, selectSampledPoints)
	if err != nil {
		return nil, fmt.Errorf("query sampled points: %w", err)
	}
	var points []geo.Point
	var idx int
	var lon, lat float64
	_, err = pgx.ForEachRow(rows, []any{&idx, &lon, &lat}, func() error {
		if idx != len(points) {
			return fmt.Errorf("sampled point index %d out of sequence, expected %d", idx, len(points))
		}
		points = append(points, geo.NewPoint(lon, lat))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan sampled points: %w", err)
	}

	rows, err = pool.Query(ctx, selectTravelTimes)
	if err != nil {
		return nil, fmt.Errorf("query travel times: %w", err)
	}
	routes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (traveltime.Route, error) {
		var r traveltime.Route
		err := row.Scan(&r.From, &r.To, &r.DistanceMeters, &r.DurationSeconds)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan travel times: %w", err)
	}

	return traveltime.NewTable(points, routes)
}
