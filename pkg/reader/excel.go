package reader

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// readXLSX returns the first sheet of a workbook.
func readXLSX(data []byte) ([][]string, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer xl.Close()

	sheet := xl.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrNoTable)
	}
	rows, err := xl.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	return rows, isoDates(xl, sheet, rows)
}

// isoDates replaces the display text of date formatted cells with an ISO
// date. Display text follows the cell's number format (eg. "01-15-24"),
// which reads differently depending on the locale.
func isoDates(xl *excelize.File, sheet string, rows [][]string) error {
	date1904 := false
	if props, err := xl.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	dated := map[int]bool{}
	for r, row := range rows {
		for c, value := range row {
			if strings.TrimSpace(value) == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			id, err := xl.GetCellStyle(sheet, cell)
			if err != nil || id == 0 {
				continue
			}
			isDate, ok := dated[id]
			if !ok {
				style, err := xl.GetStyle(id)
				isDate = err == nil && dateStyle(style)
				dated[id] = isDate
			}
			if !isDate {
				continue
			}

			raw, err := xl.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
			if err != nil {
				continue
			}
			serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				continue
			}
			if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
				row[c] = t.Format("2006-01-02")
			} else {
				row[c] = t.Format("2006-01-02 15:04:05")
			}
		}
	}
	return nil
}

// dateStyle reports whether a cell style renders its number as a date.
func dateStyle(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	switch id := style.NumFmt; {
	case id >= 14 && id <= 17, id == 22, id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	}
	if style.CustomNumFmt == nil {
		return false
	}
	return dateFormatCode(*style.CustomNumFmt)
}

// dateFormatCode reports whether a custom number format shows a day or a
// year. Quoted literals and bracketed sections (colours, locales) are ignored.
func dateFormatCode(code string) bool {
	quoted, bracket := false, false
	for _, ch := range strings.ToLower(code) {
		switch {
		case ch == '"':
			quoted = !quoted
		case quoted:
		case ch == '[':
			bracket = true
		case ch == ']':
			bracket = false
		case bracket:
		case ch == 'd' || ch == 'y':
			return true
		}
	}
	return false
}

// readXLS returns the first sheet of a legacy (BIFF) workbook.
func readXLS(data []byte) ([][]string, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if book.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrNoTable)
	}

	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("%w: could not get first sheet", ErrNoTable)
	}

	rows := [][]string{}
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
