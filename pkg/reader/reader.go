// Package reader turns statement files into a grid plus a detection text.
package reader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/voidshard/tallyman/pkg/columns"
	"github.com/voidshard/tallyman/pkg/domain"
)

var (
	ErrUnsupported = errors.New("unsupported file type")
	ErrNoTable     = errors.New("no table found")
)

type Kind string

const (
	CSV     Kind = "csv"
	XLSX    Kind = "xlsx"
	XLS     Kind = "xls"
	PDF     Kind = "pdf"
	Unknown Kind = ""
)

var (
	magicZip = []byte("PK\x03\x04")
	magicOLE = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	magicPDF = []byte("%PDF")
)

// Source is what a reader hands over: the grid (nil for text only formats)
// and the text used for bank detection.
type Source struct {
	Name  string
	Kind  Kind
	Table *domain.Table
	Text  string
}

// KindOf picks a format from the file extension, falling back to magic bytes.
func KindOf(name string, data []byte) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", ".tsv":
		return CSV
	case ".xlsx", ".xlsm":
		return XLSX
	case ".xls":
		return XLS
	case ".pdf":
		return PDF
	}

	switch {
	case bytes.HasPrefix(data, magicZip):
		return XLSX
	case bytes.HasPrefix(data, magicOLE):
		return XLS
	case bytes.HasPrefix(data, magicPDF):
		return PDF
	}
	return Unknown
}

// ReadFile reads and decodes the statement at path.
func ReadFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Read(path, data)
}

// Read decodes data, using name to pick the format.
func Read(name string, data []byte) (*Source, error) {
	var (
		rows [][]string
		err  error
	)

	kind := KindOf(name, data)
	switch kind {
	case CSV:
		rows, err = readCSV(data)
	case XLSX:
		rows, err = readXLSX(data)
	case XLS:
		rows, err = readXLS(data)
	case PDF:
		text, err := readPDF(data)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return &Source{Name: name, Kind: kind, Text: text}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(name))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	src := fromRows(rows)
	src.Name = name
	src.Kind = kind
	return src, nil
}

// Info summarises the grid of a source.
type Info struct {
	Columns int               `json:"columns"`
	Rows    int               `json:"rows"`
	Headers []string          `json:"headers"`
	Mapping map[string]string `json:"mapping"`
}

// Describe reports the shape of src and how its headers map generically.
func Describe(src *Source) (*Info, error) {
	if src == nil || src.Table == nil {
		return nil, ErrNoTable
	}
	return &Info{
		Columns: len(src.Table.Header),
		Rows:    src.Table.Len(),
		Headers: src.Table.Header,
		Mapping: columns.Map(src.Table.Header).Names(src.Table.Header),
	}, nil
}
