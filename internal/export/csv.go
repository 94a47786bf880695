package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tidymoney/internal/model"
)

const (
	numFields   = 6
	colPayee    = 0
	colCategory = 1
	colMemo     = 2
	colAmount   = 3
	colDate     = 4
	colCheck    = 5
)

// Header returns the normalized CSV header row.
func Header() []string {
	return slices.Clone(model.CanonicalColumns)
}

// ReadTransactions reads a normalized CSV, header included.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}
	if !slices.Equal(records[0], model.CanonicalColumns) {
		return nil, fmt.Errorf("unexpected header %q", records[0])
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// WriteTransactions writes txns with a header row.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing transaction %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendTransactions writes txns without a header.
func AppendTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing transaction %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a transaction to a CSV row. Amounts are
// written with two decimal places; finer amounts are rejected on input.
func MarshalTransaction(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colPayee] = txn.Payee
	row[colCategory] = txn.Category
	row[colMemo] = txn.Memo
	row[colAmount] = txn.Amount.StringFixed(2)
	row[colDate] = txn.Date.Format(model.DateFormat)
	row[colCheck] = txn.CheckNumber
	return row
}

// UnmarshalTransaction converts a CSV row to a transaction. Payee and
// Category double as the original values.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	date, err := time.Parse(model.DateFormat, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	txn := model.Transaction{
		Payee:       record[colPayee],
		Category:    record[colCategory],
		Memo:        record[colMemo],
		Amount:      amount,
		Date:        date,
		CheckNumber: record[colCheck],
	}
	txn.Snapshot()
	return txn, nil
}
