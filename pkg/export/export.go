package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/voidshard/tallyman/pkg/domain"
)

const FormatTallyXML = "tally-xml"

var ErrUnknownFormat = errors.New("unknown export format")

// Exporter renders transactions into a ledger import document.
type Exporter interface {
	Name() string
	ContentType() string
	Extension() string
	Encode(w io.Writer, txns []domain.Transaction) error
	Generate(txns []domain.Transaction) ([]byte, error)
}

var formats = map[string]func() Exporter{
	FormatTallyXML: func() Exporter { return &TallyXML{} },
}

// For returns the exporter registered under format (case-insensitive).
func For(format string) (Exporter, error) {
	f, ok := formats[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("%w %q, expected one of %v", ErrUnknownFormat, format, Formats())
	}
	return f(), nil
}

// Formats lists the supported export formats.
func Formats() []string {
	out := make([]string, 0, len(formats))
	for k := range formats {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var ErrNoInput = errors.New("no input data")

// ReadTransactions decodes a JSON array of transaction records, as printed by
// the process command.
func ReadTransactions(data []byte) ([]domain.Transaction, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoInput
	}
	txns := []domain.Transaction{}
	if err := json.Unmarshal(data, &txns); err != nil {
		return nil, fmt.Errorf("invalid transactions: %w", err)
	}
	return txns, nil
}
