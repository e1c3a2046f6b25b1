// Package records reads pitcher season records from PostgreSQL. Each row
// of pitcher_stats carries the identifying columns plus the full merged
// statistics row as JSONB.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nermal1/MLB-Pitcher-Market-Value/models"
)

// Querier is the subset of a pgx pool the store uses
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Config holds the connection settings
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// URL returns the connection string
func (c Config) URL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// Open connects a pool and verifies it with a ping
func Open(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse db config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

const selectColumns = `
		SELECT COALESCE(p.name, ''), COALESCE(p.team, ''), COALESCE(p.archetype, ''),
		       COALESCE(p.position, ''), p.stats
		FROM pitcher_stats p`

// allArchetypes is the archetype filter value meaning no filter
const allArchetypes = "All Archetypes"

// columnSorts are sort keys backed by real columns
var columnSorts = map[string]string{
	"Name":      "p.name",
	"Team":      "p.team",
	"Archetype": "p.archetype",
	"Position":  "p.position",
}

// metricKey matches stat names such as WAR, K%, Stuff+ or vFA (sc)
var metricKey = regexp.MustCompile(`^[A-Za-z0-9_%+\-. ()/]{1,32}$`)

// Store serves pitcher records from the pitcher_stats table
type Store struct {
	db Querier
}

// NewStore creates a store over db
func NewStore(db Querier) *Store {
	return &Store{db: db}
}

// ListPitchers returns one page of pitchers matching q
func (s *Store) ListPitchers(ctx context.Context, q models.PitcherQuery) (models.PitcherPage, error) {
	if q.Limit <= 0 {
		q.Limit = models.DefaultPitcherQuery().Limit
	}
	if q.Skip < 0 {
		q.Skip = 0
	}

	whereClause, args := buildWhereClause(q)

	var total int
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM pitcher_stats p"+whereClause, args...).Scan(&total)
	if err != nil {
		return models.PitcherPage{}, fmt.Errorf("failed to count pitchers: %w", err)
	}

	orderClause, args := buildOrderClause(q, args)
	limitClause := fmt.Sprintf(" LIMIT %d OFFSET %d", q.Limit, q.Skip)

	rows, err := s.db.Query(ctx, selectColumns+whereClause+orderClause+limitClause, args...)
	if err != nil {
		return models.PitcherPage{}, fmt.Errorf("failed to query pitchers: %w", err)
	}
	defer rows.Close()

	var data []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return models.PitcherPage{}, err
		}
		data = append(data, rec)
	}
	if err := rows.Err(); err != nil {
		return models.PitcherPage{}, fmt.Errorf("failed to read pitchers: %w", err)
	}

	return models.NewPitcherPage(data, total, q.Skip, q.Limit), nil
}

// FindPitcher returns the record with the given name, ignoring case
func (s *Store) FindPitcher(ctx context.Context, name string) (models.Record, error) {
	row := s.db.QueryRow(ctx, selectColumns+" WHERE LOWER(p.name) = LOWER($1) LIMIT 1", strings.TrimSpace(name))
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", name, models.ErrPitcherNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Archetypes returns the distinct archetype names in order
func (s *Store) Archetypes(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx,
		"SELECT DISTINCT p.archetype FROM pitcher_stats p WHERE p.archetype IS NOT NULL AND p.archetype <> '' ORDER BY p.archetype")
	if err != nil {
		return nil, fmt.Errorf("failed to query archetypes: %w", err)
	}
	defer rows.Close()

	archetypes := []string{}
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("failed to scan archetype: %w", err)
		}
		archetypes = append(archetypes, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read archetypes: %w", err)
	}
	return archetypes, nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// scanRecord merges the identifying columns into the stats document
func scanRecord(row pgx.Row) (models.Record, error) {
	var (
		name, team, archetype, position string
		stats                           []byte
	)
	if err := row.Scan(&name, &team, &archetype, &position, &stats); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan pitcher: %w", err)
	}

	rec := models.Record{}
	if len(stats) > 0 {
		if err := json.Unmarshal(stats, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode stats for %s: %w", name, err)
		}
	}
	rec["Name"] = name
	rec["Team"] = team
	rec["Archetype"] = archetype
	rec["Position"] = position
	return rec, nil
}

// buildWhereClause builds the filter of a pitcher list
func buildWhereClause(q models.PitcherQuery) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if q.Search != "" {
		conditions = append(conditions, "p.name ILIKE '%' || $"+strconv.Itoa(argIndex)+" || '%'")
		args = append(args, q.Search)
		argIndex++
	}

	if q.Archetype != "" && q.Archetype != allArchetypes {
		conditions = append(conditions, "p.archetype = $"+strconv.Itoa(argIndex))
		args = append(args, q.Archetype)
		argIndex++
	}

	if q.Position != "" {
		conditions = append(conditions, "p.position = $"+strconv.Itoa(argIndex))
		args = append(args, q.Position)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}
	return whereClause, args
}

// buildOrderClause builds the ORDER BY of a pitcher list. Column sorts are
// whitelisted; any other key sorts by that stat, passed as a parameter.
func buildOrderClause(q models.PitcherQuery, args []interface{}) (string, []interface{}) {
	order := "DESC"
	if strings.ToLower(q.SortOrder) == "asc" {
		order = "ASC"
	}

	sortBy := q.SortBy
	if sortBy == "" || !metricKey.MatchString(sortBy) {
		sortBy = models.DefaultPitcherQuery().SortBy
	}

	if col, ok := columnSorts[sortBy]; ok {
		return " ORDER BY " + col + " " + order, args
	}

	args = append(args, sortBy)
	expr := "(p.stats->>$" + strconv.Itoa(len(args)) + ")::float8"
	return " ORDER BY " + expr + " " + order + " NULLS LAST, p.name ASC", args
}
