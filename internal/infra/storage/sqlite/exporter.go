// Package sqlite writes completed scan runs to per-run SQLite databases.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gabapcia/walletscan/internal/scanproc"
	"github.com/gabapcia/walletscan/internal/txenrich"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	chain            TEXT NOT NULL,
	hash             TEXT NOT NULL,
	from_address     TEXT NOT NULL,
	to_address       TEXT,
	value            TEXT NOT NULL,
	gas_price        TEXT NOT NULL,
	gas_used         INTEGER NOT NULL,
	block_number     INTEGER NOT NULL,
	nonce            INTEGER NOT NULL,
	timestamp        TEXT NOT NULL,
	is_outgoing      INTEGER NOT NULL,
	status           INTEGER NOT NULL,
	transaction_type TEXT NOT NULL,
	cex_interaction  INTEGER NOT NULL,
	cex_name         TEXT,
	contract_name    TEXT,
	contract_type    TEXT,
	token_transfers  TEXT NOT NULL,
	PRIMARY KEY (chain, hash)
);
CREATE INDEX IF NOT EXISTS idx_transactions_block ON transactions (chain, block_number);
`

const insertStmt = `
INSERT OR REPLACE INTO transactions (
	chain, hash, from_address, to_address, value, gas_price, gas_used,
	block_number, nonce, timestamp, is_outgoing, status, transaction_type,
	cex_interaction, cex_name, contract_name, contract_type, token_transfers
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Exporter writes records into a per-run SQLite database file.
type Exporter struct {
	dir string
}

var _ scanproc.Exporter = (*Exporter)(nil)

// New creates a SQLite exporter writing into dir.
func New(dir string) *Exporter {
	return &Exporter{
		dir: dir,
	}
}

// Export writes all records into a new transactions_YYYYMMDD_HHMMSS.db file
// in one transaction and returns its path.
func (e *Exporter) Export(ctx context.Context, records []txenrich.TransactionRecord) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(e.dir, fmt.Sprintf("transactions_%s.db", time.Now().Format("20060102_150405")))

	db, err := open(path)
	if err != nil {
		return "", err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return "", err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertStmt)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, record := range records {
		transfers, err := json.Marshal(record.TokenTransfers)
		if err != nil {
			return "", err
		}
		if record.TokenTransfers == nil {
			transfers = []byte("[]")
		}

		_, err = stmt.ExecContext(ctx,
			record.Chain,
			record.Hash,
			record.From,
			record.To,
			record.Value,
			record.GasPrice,
			record.GasUsed,
			record.BlockNumber,
			record.Nonce,
			record.Timestamp.UTC().Format(time.RFC3339),
			record.IsOutgoing,
			record.Status,
			record.Category,
			record.CexInteraction,
			record.CexName,
			record.ContractName,
			record.ContractType,
			string(transfers),
		)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	return path, nil
}

// open configures the database for single-writer batch inserts: WAL mode,
// relaxed fsync, and a busy timeout for the occasional concurrent reader.
func open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
