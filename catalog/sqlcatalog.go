package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wkalt/msgdef/util"
)

type sqlCatalog struct {
	db *sql.DB
}

// NewSQLCatalog returns a catalog backed by the given database, creating its
// tables if required. The database is expected to be sqlite.
func NewSQLCatalog(db *sql.DB) (Catalog, error) {
	c := &sqlCatalog{
		db: db,
	}
	if err := c.initialize(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *sqlCatalog) initialize() error {
	var maxApplied sql.NullInt64
	err := c.db.QueryRow("select max(version) from schema_migrations").Scan(&maxApplied)
	if err == nil && maxApplied.Valid && maxApplied.Int64 == 1 {
		return nil
	}
	if _, err := c.db.Exec(`
	create table if not exists definitions (
		name text not null,
		fingerprint text not null,
		md5sum text not null,
		first_seen bigint not null,
		primary key (name, fingerprint)
	);

	create index if not exists definitions_first_seen on definitions (first_seen);

	create table if not exists schema_migrations(
		version bigint not null,
		timestamp text not null default current_timestamp
	);

	insert into schema_migrations(version) values (1);
	`); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (c *sqlCatalog) Record(
	ctx context.Context,
	name string,
	fingerprint string,
	md5sum string,
	seen time.Time,
) (bool, error) {
	result, err := c.db.ExecContext(ctx, `
	insert or ignore into definitions (name, fingerprint, md5sum, first_seen) values ($1, $2, $3, $4)`,
		name, fingerprint, md5sum, seen.UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to record definition: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to record definition: %w", err)
	}
	return n > 0, nil
}

func (c *sqlCatalog) Latest(ctx context.Context, name string) (Entry, error) {
	row := c.db.QueryRowContext(ctx, `
	select name, fingerprint, md5sum, first_seen from definitions
	where name = $1 order by first_seen desc, rowid desc limit 1`,
		name,
	)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, TypeNotFoundError{name}
		}
		return Entry{}, fmt.Errorf("failed to read from catalog: %w", err)
	}
	return entry, nil
}

func (c *sqlCatalog) History(ctx context.Context, name string) ([]Entry, error) {
	entries, err := c.query(ctx, `
	select name, fingerprint, md5sum, first_seen from definitions
	where name = $1 order by first_seen, rowid`,
		name,
	)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, TypeNotFoundError{name}
	}
	return entries, nil
}

func (c *sqlCatalog) ChangedSince(ctx context.Context, since time.Time) (map[string][]Entry, error) {
	entries, err := c.query(ctx, `
	select name, fingerprint, md5sum, first_seen from definitions
	where first_seen > $1 order by first_seen, rowid`,
		since.UnixNano(),
	)
	if err != nil {
		return nil, err
	}
	return util.GroupBy(entries, func(e Entry) string { return e.Name }), nil
}

func (c *sqlCatalog) Names(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "select distinct name from definitions order by name")
	if err != nil {
		return nil, fmt.Errorf("failed to read from catalog: %w", err)
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read from catalog: %w", err)
	}
	return names, nil
}

func (c *sqlCatalog) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read from catalog: %w", err)
	}
	defer rows.Close()
	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read from catalog: %w", err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var entry Entry
	var firstSeen int64
	if err := s.Scan(&entry.Name, &entry.Fingerprint, &entry.MD5Sum, &firstSeen); err != nil {
		return Entry{}, err
	}
	entry.FirstSeen = util.ParseNanos(uint64(firstSeen))
	return entry, nil
}
