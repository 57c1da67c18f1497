package pg

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migration file format: {version}_{name}.sql (e.g. 0001_init.sql), applied
// in ascending version order.
var migrationFileRe = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

type Migration struct {
	Version int
	Name    string
	SQL     string
}

// ParseMigrations reads every versioned .sql file out of fsys, sorted by
// version. Files that do not match the naming pattern are ignored.
func ParseMigrations(fsys fs.FS) ([]Migration, error) {
	var out []Migration
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		m := migrationFileRe.FindStringSubmatch(path.Base(p))
		if m == nil {
			return nil
		}
		version, _ := strconv.Atoi(m[1])
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		out = append(out, Migration{Version: version, Name: m[2], SQL: string(content)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Migrate applies the pending migrations from fsys. Applied versions are
// tracked in the _migrations table, so reruns are no-ops. Returns the
// versions applied this run.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) ([]int, error) {
	const ensure = `
		CREATE TABLE IF NOT EXISTS _migrations (
			version    INT PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := pool.Exec(ctx, ensure); err != nil {
		return nil, fmt.Errorf("creating migrations table: %w", err)
	}

	applied := map[int]bool{}
	rows, err := pool.Query(ctx, `SELECT version FROM _migrations`)
	if err != nil {
		return nil, fmt.Errorf("reading applied versions: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return nil, err
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	migs, err := ParseMigrations(fsys)
	if err != nil {
		return nil, err
	}

	var done []int
	for _, m := range migs {
		if applied[m.Version] {
			continue
		}
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			return done, fmt.Errorf("applying %04d_%s: %w", m.Version, m.Name, err)
		}
		const record = `INSERT INTO _migrations (version, name) VALUES ($1, $2)`
		if _, err := pool.Exec(ctx, record, m.Version, m.Name); err != nil {
			return done, fmt.Errorf("recording %04d_%s: %w", m.Version, m.Name, err)
		}
		done = append(done, m.Version)
	}
	return done, nil
}
