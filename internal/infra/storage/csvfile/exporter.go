// Package csvfile writes completed scan runs to timestamped CSV files.
package csvfile

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gabapcia/walletscan/internal/scanproc"
	"github.com/gabapcia/walletscan/internal/txenrich"
)

// header is the column layout of exported files, mirroring the record's JSON
// field names. Token transfers are serialized as a JSON array in their column
// so nested amounts survive the round trip untouched.
var header = []string{
	"chain",
	"hash",
	"from",
	"to",
	"value",
	"gas_price",
	"gas_used",
	"block_number",
	"nonce",
	"timestamp",
	"is_outgoing",
	"status",
	"transaction_type",
	"cex_interaction",
	"cex_name",
	"contract_name",
	"contract_type",
	"token_transfers",
}

// Exporter writes records as CSV into a target directory.
type Exporter struct {
	dir string
}

var _ scanproc.Exporter = (*Exporter)(nil)

// New creates a CSV exporter writing into dir. The directory is created on
// demand.
func New(dir string) *Exporter {
	return &Exporter{
		dir: dir,
	}
}

// Export writes all records into a new transactions_YYYYMMDD_HHMMSS.csv file
// and returns its path.
func (e *Exporter) Export(ctx context.Context, records []txenrich.TransactionRecord) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(e.dir, fmt.Sprintf("transactions_%s.csv", time.Now().Format("20060102_150405")))

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		row, err := recordToRow(record)
		if err != nil {
			return "", err
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return path, f.Close()
}

func recordToRow(record txenrich.TransactionRecord) ([]string, error) {
	transfers := "[]"
	if len(record.TokenTransfers) > 0 {
		encoded, err := json.Marshal(record.TokenTransfers)
		if err != nil {
			return nil, err
		}
		transfers = string(encoded)
	}

	return []string{
		record.Chain,
		record.Hash,
		record.From,
		record.To,
		record.Value,
		record.GasPrice,
		strconv.FormatUint(record.GasUsed, 10),
		strconv.FormatUint(record.BlockNumber, 10),
		strconv.FormatUint(record.Nonce, 10),
		record.Timestamp.UTC().Format(time.RFC3339),
		strconv.FormatBool(record.IsOutgoing),
		strconv.FormatUint(record.Status, 10),
		record.Category,
		strconv.FormatBool(record.CexInteraction),
		record.CexName,
		record.ContractName,
		record.ContractType,
		transfers,
	}, nil
}
