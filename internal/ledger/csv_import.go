package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/AlexyDarius/finarius/internal/errors"
	"github.com/AlexyDarius/finarius/internal/models"
)

/*
CSV layout (header row required, column order free, names case-insensitive)

date,type,symbol,qty,price,fee,notes

- date = "2006-01-02"
- qty/price may be empty; DEPOSIT and WITHDRAW carry the amount in either
- fee defaults to 0
*/

var requiredColumns = []string{"date", "type"}

// RowError reports a CSV line that could not be recorded.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// ImportResult summarizes an ImportCSV run.
type ImportResult struct {
	Recorded int
	Failed   []RowError
}

// ImportCSV records every row of r into accountID. Invalid rows are reported
// in the result and skipped; a malformed file or missing column fails the
// whole import before anything is written.
func (r *Recorder) ImportCSV(accountID uint, in io.Reader) (*ImportResult, error) {
	if _, err := r.reader.GetAccount(accountID); err != nil {
		return nil, err
	}

	cr := csv.NewReader(in)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("malformed csv: %v", err))
	}
	if len(rows) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "csv is empty")
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("missing column %q", name))
		}
	}

	result := &ImportResult{}
	for i, row := range rows[1:] {
		line := i + 2
		tx, err := parseRow(columns, row)
		if err == nil {
			tx.AccountID = accountID
			_, err = r.Record(tx)
		}
		if err != nil {
			result.Failed = append(result.Failed, RowError{Line: line, Err: err})
			continue
		}
		result.Recorded++
	}
	return result, nil
}

func parseRow(columns map[string]int, row []string) (Transaction, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := time.Parse(time.DateOnly, field("date"))
	if err != nil {
		return Transaction{}, invalid("invalid date %q", field("date"))
	}

	tx := Transaction{
		Date:   date,
		Type:   models.TransactionType(field("type")),
		Symbol: field("symbol"),
		Notes:  field("notes"),
	}
	if tx.Qty, err = optionalFloat("qty", field("qty")); err != nil {
		return Transaction{}, err
	}
	if tx.Price, err = optionalFloat("price", field("price")); err != nil {
		return Transaction{}, err
	}
	fee, err := optionalFloat("fee", field("fee"))
	if err != nil {
		return Transaction{}, err
	}
	if fee != nil {
		tx.Fee = *fee
	}
	return tx, nil
}

func optionalFloat(name, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return nil, invalid("invalid %s %q: %v", name, raw, err)
	}
	return &v, nil
}
