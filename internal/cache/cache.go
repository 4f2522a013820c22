// Package cache implements the persistent version store: one SQLite
// file shared by every editor process attached to this server, opened
// through the pure-Go driver modernc.org/sqlite so the binary stays
// cgo-free. WAL journaling lets readers proceed concurrently across
// processes; writes inside this process are serialized through one
// mutex behind a narrow Cache-shaped type, with structured errors
// rather than bare *sql.DB calls scattered through callers.
package cache

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/errs"
	"github.com/skanehira/version-lsp/pkg/observability"
)

const schema = `
CREATE TABLE IF NOT EXISTS packages (
	id INTEGER PRIMARY KEY,
	registry_type TEXT NOT NULL,
	package_name TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	fetching_since INTEGER,
	UNIQUE(registry_type, package_name)
);
CREATE TABLE IF NOT EXISTS versions (
	id INTEGER PRIMARY KEY,
	package_id INTEGER NOT NULL REFERENCES packages(id) ON DELETE CASCADE,
	version TEXT NOT NULL,
	UNIQUE(package_id, version)
);
CREATE TABLE IF NOT EXISTS dist_tags (
	id INTEGER PRIMARY KEY,
	package_id INTEGER NOT NULL REFERENCES packages(id) ON DELETE CASCADE,
	tag_name TEXT NOT NULL,
	version TEXT NOT NULL,
	UNIQUE(package_id, tag_name)
);
CREATE INDEX IF NOT EXISTS idx_packages_updated_at ON packages(updated_at);
CREATE INDEX IF NOT EXISTS idx_packages_kind_name ON packages(registry_type, package_name);
`

// fetchLockTimeout bounds how long a fetching_since row is honored
// before try_start_fetch treats it as abandoned by a crashed holder.
const fetchLockTimeout = 30 * time.Second

// Cache is the SQL-backed version store. All writes funnel through mu so
// concurrent goroutines inside this process never interleave statements
// on the single writer connection; WAL lets other processes read without
// contention.
type Cache struct {
	db *sql.DB
	mu sync.Mutex
}

// Package identifies one (kind, name) row.
type Package struct {
	Kind domain.RegistryKind
	Name string
}

// Open opens (creating if necessary) the database at path and ensures
// the schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, errs.Wrap(errs.CodeStorage, err, "opening cache at %s", path)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.CodeStorage, err, "initializing schema at %s", path)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// GetVersions returns the stored versions for (kind, name) in insertion
// (publish) order, or nil if there is no row yet.
func (c *Cache) GetVersions(ctx context.Context, kind domain.RegistryKind, name string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT v.version FROM versions v
		JOIN packages p ON p.id = v.package_id
		WHERE p.registry_type = ? AND p.package_name = ?
		ORDER BY v.id ASC`, string(kind), name)
	if err != nil {
		return nil, errs.Wrap(errs.CodeStorage, err, "reading versions for %s/%s", kind, name)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errs.Wrap(errs.CodeStorage, err, "scanning version row for %s/%s", kind, name)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// GetDistTag returns the version a dist-tag resolves to, or "" if absent.
func (c *Cache) GetDistTag(ctx context.Context, kind domain.RegistryKind, name, tag string) (string, bool, error) {
	var version string
	err := c.db.QueryRowContext(ctx, `
		SELECT dt.version FROM dist_tags dt
		JOIN packages p ON p.id = dt.package_id
		WHERE p.registry_type = ? AND p.package_name = ? AND dt.tag_name = ?`,
		string(kind), name, tag).Scan(&version)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errs.Wrap(errs.CodeStorage, err, "reading dist tag %s for %s/%s", tag, kind, name)
	}
	return version, true, nil
}

// GetDistTags returns every dist-tag row for (kind, name).
func (c *Cache) GetDistTags(ctx context.Context, kind domain.RegistryKind, name string) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT dt.tag_name, dt.version FROM dist_tags dt
		JOIN packages p ON p.id = dt.package_id
		WHERE p.registry_type = ? AND p.package_name = ?`, string(kind), name)
	if err != nil {
		return nil, errs.Wrap(errs.CodeStorage, err, "reading dist tags for %s/%s", kind, name)
	}
	defer rows.Close()

	tags := map[string]string{}
	for rows.Next() {
		var tag, version string
		if err := rows.Scan(&tag, &version); err != nil {
			return nil, errs.Wrap(errs.CodeStorage, err, "scanning dist tag row for %s/%s", kind, name)
		}
		tags[tag] = version
	}
	return tags, rows.Err()
}

// VersionExists reports whether literal appears in the stored version
// list for (kind, name). Spec matching is the matcher's job; this is a
// literal string comparison only.
func (c *Cache) VersionExists(ctx context.Context, kind domain.RegistryKind, name, literal string) (bool, error) {
	var found int
	err := c.db.QueryRowContext(ctx, `
		SELECT 1 FROM versions v
		JOIN packages p ON p.id = v.package_id
		WHERE p.registry_type = ? AND p.package_name = ? AND v.version = ?
		LIMIT 1`, string(kind), name, literal).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errs.Wrap(errs.CodeStorage, err, "checking version %s for %s/%s", literal, kind, name)
	}
	return true, nil
}

// HasRow reports whether (kind, name) has ever been fetched, regardless
// of whether that fetch found any versions.
func (c *Cache) HasRow(ctx context.Context, kind domain.RegistryKind, name string) (bool, error) {
	var found int
	err := c.db.QueryRowContext(ctx, `
		SELECT 1 FROM packages WHERE registry_type = ? AND package_name = ? LIMIT 1`,
		string(kind), name).Scan(&found)
	if err == sql.ErrNoRows {
		observability.Cache().OnCacheMiss(ctx, string(kind))
		return false, nil
	}
	if err != nil {
		return false, errs.Wrap(errs.CodeStorage, err, "checking row for %s/%s", kind, name)
	}
	observability.Cache().OnCacheHit(ctx, string(kind))
	return true, nil
}

// FilterNotCached returns the subset of names with no packages row for
// (kind, name).
func (c *Cache) FilterNotCached(ctx context.Context, kind domain.RegistryKind, names []string) ([]string, error) {
	var missing []string
	for _, name := range names {
		ok, err := c.HasRow(ctx, kind, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// ReplaceVersions incrementally updates (kind, name): new versions are
// inserted (existing ones are never deleted, keeping history append-only
// since yanked filtering already happened upstream in the registry
// client), dist tags are replaced wholesale, updated_at advances to now,
// and any fetch lock is cleared.
func (c *Cache) ReplaceVersions(ctx context.Context, kind domain.RegistryKind, name string, versions []string, distTags map[string]string, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(errs.CodeStorage, err, "beginning transaction for %s/%s", kind, name)
	}
	defer tx.Rollback()

	pkgID, err := upsertPackage(ctx, tx, kind, name, now.Unix())
	if err != nil {
		return err
	}

	for _, v := range versions {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO versions(package_id, version) VALUES (?, ?)`, pkgID, v); err != nil {
			return errs.Wrap(errs.CodeStorage, err, "inserting version %s for %s/%s", v, kind, name)
		}
	}
	for tag, v := range distTags {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO dist_tags(package_id, tag_name, version) VALUES (?, ?, ?)`, pkgID, tag, v); err != nil {
			return errs.Wrap(errs.CodeStorage, err, "inserting dist tag %s for %s/%s", tag, kind, name)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE packages SET updated_at = ?, fetching_since = NULL WHERE id = ?`, now.Unix(), pkgID); err != nil {
		return errs.Wrap(errs.CodeStorage, err, "finalizing update for %s/%s", kind, name)
	}

	if err := tx.Commit(); err != nil {
		return errs.Wrap(errs.CodeStorage, err, "committing update for %s/%s", kind, name)
	}
	observability.Cache().OnCacheSet(ctx, string(kind), len(versions))
	return nil
}

// MarkNotFound records a successful-but-empty fetch (a registry 404) by
// touching updated_at without inserting any version row, so
// GetPackagesNeedingRefresh retries it on the normal schedule instead of
// treating the absence of rows as "never fetched, fetch immediately".
func (c *Cache) MarkNotFound(ctx context.Context, kind domain.RegistryKind, name string, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(errs.CodeStorage, err, "beginning transaction for %s/%s", kind, name)
	}
	defer tx.Rollback()

	pkgID, err := upsertPackage(ctx, tx, kind, name, now.Unix())
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE packages SET updated_at = ?, fetching_since = NULL WHERE id = ?`, now.Unix(), pkgID); err != nil {
		return errs.Wrap(errs.CodeStorage, err, "marking not-found for %s/%s", kind, name)
	}
	return wrapStorage(tx.Commit(), "committing not-found for %s/%s", kind, name)
}

// GetPackagesNeedingRefresh returns rows where updated_at +
// refreshInterval is in the past, grouped for the caller by nothing in
// particular — the refresh orchestrator groups by kind itself.
func (c *Cache) GetPackagesNeedingRefresh(ctx context.Context, refreshInterval time.Duration, now time.Time) ([]Package, error) {
	cutoff := now.Add(-refreshInterval).Unix()
	rows, err := c.db.QueryContext(ctx, `
		SELECT registry_type, package_name FROM packages WHERE updated_at < ?`, cutoff)
	if err != nil {
		return nil, errs.Wrap(errs.CodeStorage, err, "listing packages needing refresh")
	}
	defer rows.Close()

	var out []Package
	for rows.Next() {
		var p Package
		var kind string
		if err := rows.Scan(&kind, &p.Name); err != nil {
			return nil, errs.Wrap(errs.CodeStorage, err, "scanning refresh row")
		}
		p.Kind = domain.RegistryKind(kind)
		out = append(out, p)
	}
	return out, rows.Err()
}

// TryStartFetch atomically claims the fetch lock for (kind, name): if no
// fetch is recorded as in flight, or the recorded one is older than
// fetchLockTimeout (a crashed holder), it sets fetching_since = now and
// returns true.
func (c *Cache) TryStartFetch(ctx context.Context, kind domain.RegistryKind, name string, now time.Time) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, errs.Wrap(errs.CodeStorage, err, "beginning lock transaction for %s/%s", kind, name)
	}
	defer tx.Rollback()

	pkgID, err := upsertPackage(ctx, tx, kind, name, 0)
	if err != nil {
		return false, err
	}

	staleBefore := now.Add(-fetchLockTimeout).Unix()
	res, err := tx.ExecContext(ctx, `
		UPDATE packages SET fetching_since = ?
		WHERE id = ? AND (fetching_since IS NULL OR fetching_since < ?)`,
		now.Unix(), pkgID, staleBefore)
	if err != nil {
		return false, errs.Wrap(errs.CodeStorage, err, "claiming fetch lock for %s/%s", kind, name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errs.Wrap(errs.CodeStorage, err, "checking fetch lock result for %s/%s", kind, name)
	}
	if n == 0 {
		return false, nil
	}
	return true, wrapStorage(tx.Commit(), "committing fetch lock for %s/%s", kind, name)
}

// FinishFetch releases the fetch lock for (kind, name) without touching
// updated_at — callers that succeeded call ReplaceVersions or
// MarkNotFound instead, both of which already clear the lock; this is
// for callers that release it after a failed fetch or a failed write.
func (c *Cache) FinishFetch(ctx context.Context, kind domain.RegistryKind, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx, `
		UPDATE packages SET fetching_since = NULL
		WHERE registry_type = ? AND package_name = ?`, string(kind), name)
	return wrapStorage(err, "releasing fetch lock for %s/%s", kind, name)
}

// wrapStorage wraps err as a CodeStorage errs.Error, or returns nil if
// err is nil — unlike errs.Wrap, which always returns a non-nil *Error.
func wrapStorage(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errs.Wrap(errs.CodeStorage, err, format, args...)
}

// upsertPackage returns the id of the (kind, name) row, creating it with
// updated_at = createdAt if it doesn't exist yet. Must be called with a
// transaction already open and c.mu held.
func upsertPackage(ctx context.Context, tx *sql.Tx, kind domain.RegistryKind, name string, createdAt int64) (int64, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO packages(registry_type, package_name, updated_at) VALUES (?, ?, ?)`,
		string(kind), name, createdAt); err != nil {
		return 0, errs.Wrap(errs.CodeStorage, err, "upserting package row for %s/%s", kind, name)
	}

	var id int64
	if err := tx.QueryRowContext(ctx, `
		SELECT id FROM packages WHERE registry_type = ? AND package_name = ?`,
		string(kind), name).Scan(&id); err != nil {
		return 0, errs.Wrap(errs.CodeStorage, err, "fetching package row id for %s/%s", kind, name)
	}
	return id, nil
}
