package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/tranvu/inventory-ledger/internal/core/domain"
	"github.com/tranvu/inventory-ledger/internal/port"
)

const mysqlErrDuplicateEntry = 1062

var schema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id          BIGINT AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		price       DECIMAL(12,2) NOT NULL,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		id         BIGINT AUTO_INCREMENT PRIMARY KEY,
		item_id    BIGINT NOT NULL,
		quantity   INT NOT NULL,
		type       CHAR(1) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_inventory_item (item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id         BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_no   VARCHAR(32) NOT NULL,
		item_id    BIGINT NOT NULL,
		quantity   INT NOT NULL,
		price      DECIMAL(12,2) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_orders_order_no (order_no)
	)`,
	`CREATE TABLE IF NOT EXISTS order_seq (
		id    TINYINT PRIMARY KEY,
		value BIGINT NOT NULL
	)`,
	`INSERT IGNORE INTO order_seq (id, value) VALUES (1, 0)`,
}

// MySQLStore implements port.UnitOfWork on top of MySQL. Each Execute call is
// one sql.Tx; GetItemForUpdate takes a row lock on the item so mutations on
// the same item serialize while unrelated items proceed in parallel. The
// unique key on order_no turns concurrent duplicate numbering into
// domain.ErrConflict for the engine to retry.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// Migrate creates the schema if it does not exist.
func (m *MySQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (m *MySQLStore) Execute(ctx context.Context, fn func(port.Store) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&mysqlSession{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// mysqlSession is a Store bound to one transaction.
type mysqlSession struct {
	q querier
}

var _ port.Store = (*mysqlSession)(nil)

func (s *mysqlSession) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	return s.scanItem(s.q.QueryRowContext(ctx, `
		SELECT id, name, price, COALESCE(description, '')
		FROM items WHERE id = ?`, id), id)
}

func (s *mysqlSession) GetItemForUpdate(ctx context.Context, id int64) (*domain.Item, error) {
	return s.scanItem(s.q.QueryRowContext(ctx, `
		SELECT id, name, price, COALESCE(description, '')
		FROM items WHERE id = ? FOR UPDATE`, id), id)
}

func (s *mysqlSession) scanItem(row *sql.Row, id int64) (*domain.Item, error) {
	var item domain.Item
	err := row.Scan(&item.ID, &item.Name, &item.Price, &item.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return &item, nil
}

func (s *mysqlSession) ListItems(ctx context.Context, page port.Page) ([]domain.Item, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, price, COALESCE(description, '')
		FROM items ORDER BY id LIMIT ? OFFSET ?`, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Description); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *mysqlSession) CreateItem(ctx context.Context, item *domain.Item) error {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO items (name, price, description) VALUES (?, ?, ?)`,
		item.Name, item.Price, item.Description)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	item.ID, err = res.LastInsertId()
	return err
}

func (s *mysqlSession) UpdateItem(ctx context.Context, item *domain.Item) error {
	// Existence is checked by the caller inside the same unit of work; a
	// no-change update legitimately reports zero affected rows.
	_, err := s.q.ExecContext(ctx, `
		UPDATE items SET name = ?, price = ?, description = ? WHERE id = ?`,
		item.Name, item.Price, item.Description, item.ID)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func (s *mysqlSession) DeleteItem(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *mysqlSession) AppendEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	entry.CreatedAt = time.Now().UTC()
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO inventory (item_id, quantity, type, created_at)
		VALUES (?, ?, ?, ?)`,
		entry.ItemID, entry.Quantity, string(entry.Kind), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	entry.ID, err = res.LastInsertId()
	return err
}

func (s *mysqlSession) GetEntry(ctx context.Context, id int64) (*domain.LedgerEntry, error) {
	var (
		entry domain.LedgerEntry
		kind  string
	)
	err := s.q.QueryRowContext(ctx, `
		SELECT id, item_id, quantity, type, created_at
		FROM inventory WHERE id = ?`, id).
		Scan(&entry.ID, &entry.ItemID, &entry.Quantity, &kind, &entry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ledger entry %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query ledger entry: %w", err)
	}
	entry.Kind = domain.EntryKind(kind)
	return &entry, nil
}

func (s *mysqlSession) ListEntries(ctx context.Context, page port.Page) ([]domain.LedgerEntry, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, item_id, quantity, type, created_at
		FROM inventory ORDER BY id LIMIT ? OFFSET ?`, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var (
			entry domain.LedgerEntry
			kind  string
		)
		if err := rows.Scan(&entry.ID, &entry.ItemID, &entry.Quantity, &kind, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entry.Kind = domain.EntryKind(kind)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *mysqlSession) AvailableStock(ctx context.Context, itemID int64) (int, error) {
	var available int
	err := s.q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN type = 'T' THEN quantity ELSE -quantity END), 0)
		FROM inventory WHERE item_id = ?`, itemID).Scan(&available)
	if err != nil {
		return 0, fmt.Errorf("sum ledger: %w", err)
	}
	return available, nil
}

func (s *mysqlSession) InsertOrder(ctx context.Context, order *domain.Order) error {
	order.CreatedAt = time.Now().UTC()
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO orders (order_no, item_id, quantity, price, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		order.OrderNo, order.ItemID, order.Quantity, order.Price, order.CreatedAt)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlErrDuplicateEntry {
			return fmt.Errorf("order number %s taken: %w", order.OrderNo, domain.ErrConflict)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	order.ID, err = res.LastInsertId()
	return err
}

func (s *mysqlSession) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order
	err := s.q.QueryRowContext(ctx, `
		SELECT id, order_no, item_id, quantity, price, created_at
		FROM orders WHERE id = ?`, id).
		Scan(&order.ID, &order.OrderNo, &order.ItemID, &order.Quantity, &order.Price, &order.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return &order, nil
}

func (s *mysqlSession) ListOrders(ctx context.Context, page port.Page) ([]domain.Order, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, order_no, item_id, quantity, price, created_at
		FROM orders ORDER BY id LIMIT ? OFFSET ?`, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.OrderNo, &order.ItemID, &order.Quantity, &order.Price, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (s *mysqlSession) UpdateOrder(ctx context.Context, order *domain.Order) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE orders SET item_id = ?, quantity = ?, price = ? WHERE id = ?`,
		order.ItemID, order.Quantity, order.Price, order.ID)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

func (s *mysqlSession) DeleteOrder(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// NextOrderNumber advances the single-row sequence. The UPDATE takes a row
// lock on the sequence, so concurrent placements serialize here and each
// transaction reads the value it just wrote; a rollback releases the lock and
// the increment with it.
func (s *mysqlSession) NextOrderNumber(ctx context.Context) (int64, error) {
	if _, err := s.q.ExecContext(ctx, `UPDATE order_seq SET value = value + 1 WHERE id = 1`); err != nil {
		return 0, fmt.Errorf("advance order sequence: %w", err)
	}
	var next int64
	if err := s.q.QueryRowContext(ctx, `SELECT value FROM order_seq WHERE id = 1`).Scan(&next); err != nil {
		return 0, fmt.Errorf("read order sequence: %w", err)
	}
	return next, nil
}
