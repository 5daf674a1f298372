package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/voidshard/tallyman/pkg/adapter"
	"github.com/voidshard/tallyman/pkg/detect"
	"github.com/voidshard/tallyman/pkg/domain"
	"github.com/voidshard/tallyman/pkg/logger"
	"github.com/voidshard/tallyman/pkg/reader"
)

const sbiCSV = "Txn Date,Description,Debit,Credit,Balance\n" +
	"01-Jan-2024,Payment to Vendor,500.00,,1000.00\n" +
	"02-Jan-2024,Salary,,2000.00,3000.00"

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestKnownDialectEndToEnd(t *testing.T) {
	src, err := reader.Read("statement.csv", []byte(sbiCSV))
	require.NoError(t, err)

	a := adapter.For(detect.Detect("Welcome to SBI Banking"), src.Table, adapter.Options{})
	assert.Equal(t, "SBI", a.Name())

	txns := a.Process()
	require.Len(t, txns, 2)
	assert.Equal(t, []float64{500, 0}, []float64{txns[0].Debit, txns[1].Debit})
	assert.Equal(t, []float64{0, 2000}, []float64{txns[0].Credit, txns[1].Credit})
}

func TestGenericEndToEnd(t *testing.T) {
	src, err := reader.Read("unknown.csv", []byte("Date,Description,Amount\n2024-01-01,Test,-100\n2024-01-02,Test2,200"))
	require.NoError(t, err)

	a := adapter.For(detect.Detect("Generic statement"), src.Table, adapter.Options{})
	assert.Equal(t, "STANDARD", a.Name())

	txns := a.Process()
	require.Len(t, txns, 2)
	assert.Equal(t, 100.0, txns[0].Debit)
	assert.Equal(t, 200.0, txns[1].Credit)
}

func TestProcessBytesDetectsFromPreamble(t *testing.T) {
	p := New(nil, adapter.Options{})

	r := p.ProcessBytes(context.Background(), "sbi.csv", []byte("State Bank of India,,,,\n"+sbiCSV))
	require.True(t, r.OK(), r.Message)

	assert.Equal(t, "SBI", r.Bank)
	assert.Equal(t, "SBI", r.Adapter)
	assert.Len(t, r.Transactions, 2)
	assert.NotEmpty(t, r.RunID)
}

func TestProcessBytesUnknownBank(t *testing.T) {
	p := New(nil, adapter.Options{})

	r := p.ProcessBytes(context.Background(), "x.csv", []byte(sbiCSV))
	require.True(t, r.OK(), r.Message)
	assert.Equal(t, detect.Unknown, r.Bank)
	assert.Equal(t, "STANDARD", r.Adapter)
	assert.Len(t, r.Transactions, 2)
}

func TestStructuralErrors(t *testing.T) {
	p := New(nil, adapter.Options{})

	cases := map[string]struct {
		Body string
		Err  error
	}{
		"two columns": {"Date,Amount\n2024-01-01,5", domain.ErrTooFewColumns},
		"header only": {"Date,Description,Amount\n", domain.ErrNoRows},
		"empty":       {"", domain.ErrNoRows},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			r := p.ProcessBytes(context.Background(), "bad.csv", []byte(c.Body))
			assert.False(t, r.OK())
			assert.Equal(t, StatusError, r.Status)
			assert.True(t, errors.Is(r.Err, c.Err), r.Err)

			var serr *domain.StructuralError
			assert.True(t, errors.As(r.Err, &serr))
			assert.NotEmpty(t, r.Message)
			assert.Nil(t, r.Statement())
		})
	}
}

func TestExcelDateCells(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Date", "Description", "Amount", "Balance"}))
	style, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)

	for i, d := range []int{15, 2} {
		row := i + 2
		require.NoError(t, f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", row), &[]interface{}{
			time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC), "card", -10, 90,
		}))
		require.NoError(t, f.SetCellStyle("Sheet1", fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), style))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	r := New(nil, adapter.Options{}).ProcessBytes(context.Background(), "card.xlsx", buf.Bytes())
	require.True(t, r.OK(), r.Message)
	require.Len(t, r.Transactions, 2)

	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), r.Transactions[0].Date)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), r.Transactions[1].Date)
	assert.Equal(t, 10.0, r.Transactions[0].Debit)
}

func TestFailureIsLogged(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(buf))

	r := New(nil, adapter.Options{}).ProcessFile(ctx, filepath.Join(t.TempDir(), "gone.csv"))
	assert.Equal(t, "File not found", r.Message)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "failed to process statement", line["message"])
	assert.Equal(t, r.RunID, line["run"])
}

func TestUnsupportedAndPDF(t *testing.T) {
	p := New(nil, adapter.Options{})

	r := p.ProcessBytes(context.Background(), "scan.jpg", []byte{0xFF, 0xD8})
	assert.ErrorIs(t, r.Err, reader.ErrUnsupported)

	r = p.ProcessSource(context.Background(), "run", &reader.Source{Name: "s.pdf", Kind: reader.PDF, Text: "SBI"})
	assert.ErrorIs(t, r.Err, reader.ErrNoTable)
}

func TestProcessAll(t *testing.T) {
	dir := t.TempDir()

	paths := []string{
		write(t, dir, "a.csv", sbiCSV),
		filepath.Join(dir, "missing.csv"),
		write(t, dir, "b.csv", "Date,Description,Amount\n2024-01-01,Test,-100\n"),
		write(t, dir, "c.csv", "A,B\n1,2\n"),
	}
	for i := 0; i < 8; i++ {
		paths = append(paths, write(t, dir, fmt.Sprintf("more%d.csv", i), sbiCSV))
	}

	results := New(nil, adapter.Options{}).ProcessAll(context.Background(), paths, 3)
	require.Len(t, results, len(paths))

	for i, r := range results {
		assert.Equal(t, paths[i], r.File)
		assert.Equal(t, results[0].RunID, r.RunID)
	}

	assert.True(t, results[0].OK())
	assert.Equal(t, "File not found", results[1].Message)
	assert.True(t, results[2].OK())
	assert.False(t, results[3].OK())

	stmts := Statements(results)
	assert.Len(t, stmts, len(paths)-2)
	assert.Equal(t, paths[0], stmts[0].File)
}

func TestProcessAllCancelled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := New(nil, adapter.Options{}).ProcessAll(ctx, []string{write(t, dir, "a.csv", sbiCSV)}, 0)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestResultJSON(t *testing.T) {
	p := New(nil, adapter.Options{})

	ok := p.ProcessBytes(context.Background(), "a.csv", []byte(sbiCSV))
	data, err := json.Marshal(ok)
	require.NoError(t, err)

	var success map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &success))
	assert.Equal(t, "a.csv", success["file"])
	assert.Equal(t, "success", success["status"])
	assert.Equal(t, "", success["bank"])
	assert.Equal(t, 2.0, success["transaction_count"])
	assert.Len(t, success["transactions"], 2)
	assert.NotContains(t, success, "message")

	bad := p.ProcessBytes(context.Background(), "b.csv", []byte("A,B\n1,2"))
	data, err = json.Marshal(bad)
	require.NoError(t, err)

	var failure map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &failure))
	assert.Equal(t, "error", failure["status"])
	assert.NotEmpty(t, failure["message"])
	assert.NotContains(t, failure, "transactions")
}

func TestCustomDetector(t *testing.T) {
	reg, err := detect.NewRegistry(detect.Signature{Bank: "SBI", Keywords: []string{"Acme"}})
	require.NoError(t, err)

	r := New(detect.New(reg), adapter.Options{}).ProcessBytes(context.Background(), "a.csv", []byte("Acme,,,,\n"+sbiCSV))
	require.True(t, r.OK())
	assert.Equal(t, "SBI", r.Bank)
}
