package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"shelf-dcs/internal/catalog"
	"shelf-dcs/internal/shelf"
)

// ErrNoCatalog is returned when the database holds no store yet.
var ErrNoCatalog = errors.New("no catalog in database: run import first")

// SQLStore persists catalog snapshots and the shelf edit log in SQLite.
type SQLStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Open initializes the SQLite database at path. ":memory:" is accepted for tests.
func Open(path string) (*SQLStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: an in-memory database is per connection and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	s := &SQLStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) initialize() error {
	storesTable := `
	CREATE TABLE IF NOT EXISTS stores (
		store_code TEXT PRIMARY KEY,
		company TEXT,
		store_name TEXT,
		period_from TEXT,
		period_to TEXT,
		period_days INTEGER,
		departments TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	fixturesTable := `
	CREATE TABLE IF NOT EXISTS fixtures (
		fixture_id TEXT PRIMARY KEY,
		store_code TEXT NOT NULL,
		fixture_type TEXT DEFAULT 'gondola',
		department TEXT,
		category_label TEXT,
		categories TEXT,
		row_count INTEGER,
		shelf_width_mm INTEGER DEFAULT 900,
		row_heights TEXT,
		FOREIGN KEY (store_code) REFERENCES stores(store_code)
	);
	CREATE INDEX IF NOT EXISTS idx_fixtures_store ON fixtures(store_code);
	`

	productColumns := `
		fixture_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		row_num INTEGER,
		order_num REAL,
		jan TEXT NOT NULL,
		name TEXT,
		maker TEXT,
		price INTEGER,
		cost_rate REAL,
		rank TEXT,
		face INTEGER,
		width_mm INTEGER DEFAULT 90,
		height_mm INTEGER DEFAULT 200,
		depth INTEGER DEFAULT 3,
		cap INTEGER,
		sales_qty INTEGER DEFAULT 0,
		total_sales INTEGER DEFAULT 0,
		total_profit INTEGER DEFAULT 0,
		daily_avg_qty REAL DEFAULT 0,
		sales_week TEXT,
		category_name TEXT,
		base_stock INTEGER DEFAULT 0,
		current_stock INTEGER DEFAULT 0,
		order_point INTEGER DEFAULT 0,
		stock_correction INTEGER DEFAULT 0,
		tag TEXT`

	productsTable := `
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,` + productColumns + `,
		FOREIGN KEY (fixture_id) REFERENCES fixtures(fixture_id)
	);
	CREATE INDEX IF NOT EXISTS idx_products_fixture ON products(fixture_id, position);
	`

	removedTable := `
	CREATE TABLE IF NOT EXISTS removed_products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,` + productColumns + `,
		removed_at DATETIME NOT NULL,
		FOREIGN KEY (fixture_id) REFERENCES fixtures(fixture_id)
	);
	CREATE INDEX IF NOT EXISTS idx_removed_fixture ON removed_products(fixture_id, position);
	`

	editsTable := `
	CREATE TABLE IF NOT EXISTS shelf_edits (
		id TEXT PRIMARY KEY,
		fixture_id TEXT,
		user_name TEXT,
		action TEXT,
		details TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_edits_fixture ON shelf_edits(fixture_id, created_at);
	`

	for _, table := range []string{storesTable, fixturesTable, productsTable, removedTable, editsTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// SaveSnapshot replaces the store and all of its fixtures.
func (s *SQLStore) SaveSnapshot(ctx context.Context, snap *catalog.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	departments, err := json.Marshal(snap.Departments)
	if err != nil {
		return fmt.Errorf("failed to encode departments: %w", err)
	}

	if err := deleteStore(ctx, tx, snap.StoreCode); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO stores (store_code, company, store_name, period_from, period_to, period_days, departments, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.StoreCode, snap.Company, snap.StoreName, snap.PeriodFrom, snap.PeriodTo, snap.PeriodDays,
		string(departments), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert store: %w", err)
	}

	for _, id := range snap.FixtureIDs() {
		if err := writeFixture(ctx, tx, snap.StoreCode, snap.Fixtures[id]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	log.Info().
		Str("store", snap.StoreCode).
		Int("fixtures", len(snap.Fixtures)).
		Int("products", snap.ProductCount()).
		Msg("Catalog saved to database")
	return nil
}

// SaveFixture replaces one fixture's products and removed list.
func (s *SQLStore) SaveFixture(ctx context.Context, storeCode string, f *shelf.Fixture) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := writeFixture(ctx, tx, storeCode, f); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit fixture %s: %w", f.ID, err)
	}
	log.Debug().Str("fixture", f.ID).Int("products", len(f.Products)).Msg("Fixture saved")
	return nil
}

func deleteStore(ctx context.Context, tx *sql.Tx, storeCode string) error {
	stmts := []string{
		`DELETE FROM products WHERE fixture_id IN (SELECT fixture_id FROM fixtures WHERE store_code = ?)`,
		`DELETE FROM removed_products WHERE fixture_id IN (SELECT fixture_id FROM fixtures WHERE store_code = ?)`,
		`DELETE FROM fixtures WHERE store_code = ?`,
		`DELETE FROM stores WHERE store_code = ?`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt, storeCode); err != nil {
			return fmt.Errorf("failed to clear store %s: %w", storeCode, err)
		}
	}
	return nil
}

func writeFixture(ctx context.Context, tx *sql.Tx, storeCode string, f *shelf.Fixture) error {
	categories, err := json.Marshal(f.Categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}
	rowHeights, err := json.Marshal(f.RowHeights)
	if err != nil {
		return fmt.Errorf("failed to encode row heights: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO fixtures (fixture_id, store_code, fixture_type, department, category_label, categories, row_count, shelf_width_mm, row_heights)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fixture_id) DO UPDATE SET
			store_code = excluded.store_code,
			fixture_type = excluded.fixture_type,
			department = excluded.department,
			category_label = excluded.category_label,
			categories = excluded.categories,
			row_count = excluded.row_count,
			shelf_width_mm = excluded.shelf_width_mm,
			row_heights = excluded.row_heights`,
		f.ID, storeCode, f.FixtureType, f.Department, f.CategoryLabel, string(categories), f.Rows, f.ShelfWidthMm, string(rowHeights))
	if err != nil {
		return fmt.Errorf("failed to upsert fixture %s: %w", f.ID, err)
	}

	for _, table := range []string{"products", "removed_products"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE fixture_id = ?`, f.ID); err != nil {
			return fmt.Errorf("failed to clear %s of fixture %s: %w", table, f.ID, err)
		}
	}

	for i, p := range f.Products {
		if err := insertProduct(ctx, tx, "products", f.ID, i, p, nil); err != nil {
			return err
		}
	}
	for i, r := range f.Removed {
		at := r.RemovedAt.UTC()
		if err := insertProduct(ctx, tx, "removed_products", f.ID, i, r.Product, &at); err != nil {
			return err
		}
	}
	return nil
}

const productFields = `fixture_id, position, row_num, order_num, jan, name, maker, price, cost_rate, rank,
	face, width_mm, height_mm, depth, cap, sales_qty, total_sales, total_profit, daily_avg_qty,
	sales_week, category_name, base_stock, current_stock, order_point, stock_correction, tag`

func insertProduct(ctx context.Context, tx *sql.Tx, table, fixtureID string, pos int, p shelf.Product, removedAt *time.Time) error {
	week, err := json.Marshal(p.SalesWeek)
	if err != nil {
		return fmt.Errorf("failed to encode sales week: %w", err)
	}
	args := []any{
		fixtureID, pos, p.Row, p.Order, p.JAN, p.Name, p.Maker, p.Price, p.CostRate, p.Rank,
		p.Face, p.WidthMm, p.HeightMm, p.Depth, p.Cap, p.SalesQty, p.TotalSales, p.TotalProfit, p.DailyAvgQty,
		string(week), p.CategoryName, p.BaseStock, p.CurrentStock, p.OrderPoint, p.StockCorrection, p.Tag,
	}

	query := `INSERT INTO ` + table + ` (` + productFields
	placeholders := 26
	if removedAt != nil {
		query += `, removed_at`
		args = append(args, *removedAt)
		placeholders++
	}
	query += `) VALUES (?` + strings.Repeat(",?", placeholders-1) + `)`

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert product %s into %s: %w", p.JAN, table, err)
	}
	return nil
}

// LoadSnapshot reads a store's snapshot. An empty store code loads the most
// recently saved store.
func (s *SQLStore) LoadSnapshot(ctx context.Context, storeCode string) (*catalog.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT store_code, company, store_name, period_from, period_to, period_days, departments FROM stores WHERE store_code = ?`
	args := []any{storeCode}
	if storeCode == "" {
		query = `SELECT store_code, company, store_name, period_from, period_to, period_days, departments FROM stores ORDER BY created_at DESC LIMIT 1`
		args = nil
	}

	snap := &catalog.Snapshot{Fixtures: make(map[string]*shelf.Fixture)}
	var company, name, from, to, departments sql.NullString
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&snap.StoreCode, &company, &name, &from, &to, &snap.PeriodDays, &departments)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoCatalog
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query store: %w", err)
	}
	snap.Company, snap.StoreName, snap.PeriodFrom, snap.PeriodTo = company.String, name.String, from.String, to.String
	if departments.Valid && departments.String != "" && departments.String != "null" {
		if err := json.Unmarshal([]byte(departments.String), &snap.Departments); err != nil {
			return nil, fmt.Errorf("failed to decode departments: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT fixture_id, fixture_type, department, category_label, categories, row_count, shelf_width_mm, row_heights
		FROM fixtures WHERE store_code = ? ORDER BY fixture_id`, snap.StoreCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixtures: %w", err)
	}
	for rows.Next() {
		f := &shelf.Fixture{}
		var ftype, dept, label, cats, heights sql.NullString
		if err := rows.Scan(&f.ID, &ftype, &dept, &label, &cats, &f.Rows, &f.ShelfWidthMm, &heights); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan fixture: %w", err)
		}
		f.FixtureType, f.Department, f.CategoryLabel = ftype.String, dept.String, label.String
		if err := decodeJSON(cats, &f.Categories); err != nil {
			rows.Close()
			return nil, fmt.Errorf("fixture %s categories: %w", f.ID, err)
		}
		if err := decodeJSON(heights, &f.RowHeights); err != nil {
			rows.Close()
			return nil, fmt.Errorf("fixture %s row heights: %w", f.ID, err)
		}
		snap.Fixtures[f.ID] = f
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fixtures: %w", err)
	}

	for id, f := range snap.Fixtures {
		products, err := s.queryProducts(ctx, "products", id)
		if err != nil {
			return nil, err
		}
		f.Products = make([]shelf.Product, len(products))
		for i, r := range products {
			f.Products[i] = r.Product
		}

		removed, err := s.queryProducts(ctx, "removed_products", id)
		if err != nil {
			return nil, err
		}
		f.Removed = removed
	}

	log.Debug().Str("store", snap.StoreCode).Int("fixtures", len(snap.Fixtures)).Msg("Catalog loaded from database")
	return snap, nil
}

func decodeJSON(s sql.NullString, v any) error {
	if !s.Valid || s.String == "" || s.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(s.String), v)
}

func (s *SQLStore) queryProducts(ctx context.Context, table, fixtureID string) ([]shelf.RemovedProduct, error) {
	cols := `row_num, order_num, jan, name, maker, price, cost_rate, rank, face, width_mm, height_mm, depth, cap,
		sales_qty, total_sales, total_profit, daily_avg_qty, sales_week, category_name,
		base_stock, current_stock, order_point, stock_correction, tag`
	removed := table == "removed_products"
	if removed {
		cols += `, removed_at`
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+cols+` FROM `+table+` WHERE fixture_id = ? ORDER BY position`, fixtureID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var out []shelf.RemovedProduct
	for rows.Next() {
		var r shelf.RemovedProduct
		p := &r.Product
		var name, maker, rank, week, category, tag sql.NullString
		dest := []any{
			&p.Row, &p.Order, &p.JAN, &name, &maker, &p.Price, &p.CostRate, &rank, &p.Face, &p.WidthMm, &p.HeightMm, &p.Depth, &p.Cap,
			&p.SalesQty, &p.TotalSales, &p.TotalProfit, &p.DailyAvgQty, &week, &category,
			&p.BaseStock, &p.CurrentStock, &p.OrderPoint, &p.StockCorrection, &tag,
		}
		if removed {
			dest = append(dest, &r.RemovedAt)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		p.Name, p.Maker, p.Rank, p.CategoryName, p.Tag = name.String, maker.String, rank.String, category.String, tag.String
		if err := decodeJSON(week, &p.SalesWeek); err != nil {
			return nil, fmt.Errorf("product %s sales week: %w", p.JAN, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Edit is one entry of the shelf edit log.
type Edit struct {
	ID        string          `json:"id"`
	FixtureID string          `json:"fixtureId"`
	Actor     string          `json:"actor"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// LogEdit appends an edit. Details are stored as JSON.
func (s *SQLStore) LogEdit(ctx context.Context, fixtureID, actor, action string, details any) (Edit, error) {
	raw, err := json.Marshal(details)
	if err != nil {
		return Edit{}, fmt.Errorf("failed to encode edit details: %w", err)
	}
	e := Edit{
		ID:        uuid.NewString(),
		FixtureID: fixtureID,
		Actor:     actor,
		Action:    action,
		Details:   raw,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO shelf_edits (id, fixture_id, user_name, action, details, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.FixtureID, e.Actor, e.Action, string(raw), e.CreatedAt)
	if err != nil {
		return Edit{}, fmt.Errorf("failed to log edit: %w", err)
	}
	return e, nil
}

// Edits returns the most recent edits of a fixture, newest first. An empty
// fixture id returns edits of every fixture.
func (s *SQLStore) Edits(ctx context.Context, fixtureID string, limit int) ([]Edit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, fixture_id, user_name, action, details, created_at FROM shelf_edits`
	var args []any
	if fixtureID != "" {
		query += ` WHERE fixture_id = ?`
		args = append(args, fixtureID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ` + strconv.Itoa(limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edits: %w", err)
	}
	defer rows.Close()

	var out []Edit
	for rows.Next() {
		var e Edit
		var details string
		if err := rows.Scan(&e.ID, &e.FixtureID, &e.Actor, &e.Action, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan edit: %w", err)
		}
		e.Details = json.RawMessage(details)
		out = append(out, e)
	}
	return out, rows.Err()
}
