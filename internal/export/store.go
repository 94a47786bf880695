package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cleared-dev/tidymoney/internal/model"
)

// Batch is the normalized output for one account label.
type Batch struct {
	Label        string
	Transactions []model.Transaction
}

// Dir returns <storage>/new/<date>.
func Dir(storage, date string) string {
	return filepath.Join(storage, "new", date)
}

// Path returns the output file for a label.
func Path(storage, date, label string) string {
	return filepath.Join(Dir(storage, date), label+".csv")
}

// Write stores each batch as <storage>/new/<date>/<label>.csv and returns
// the paths written. A file left by an earlier run on the same date is
// appended to. Empty batches still produce a file with a header.
func Write(storage, date string, batches []Batch) ([]string, error) {
	dir := Dir(storage, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	var written []string
	for _, b := range batches {
		path := Path(storage, date, b.Label)
		if err := writeBatch(path, b.Transactions); err != nil {
			return written, fmt.Errorf("writing %s: %w", b.Label, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func writeBatch(path string, txns []model.Transaction) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		if err := AppendTransactions(f, txns); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case errors.Is(err, fs.ErrNotExist):
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := WriteTransactions(f, txns); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	default:
		return err
	}
}
