package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/voidshard/tallyman/pkg/domain"
)

const (
	tallyRequest = "Import Data"
	tallyUDF     = "TallyUDF"
	tallyAction  = "Create"
	tallyView    = "Accounting Voucher View"
	tallyDate    = "20060102"

	// VOUCHERNUMBER when the transaction carries no reference.
	defaultVoucherNumber = "1"
)

type tallyEnvelope struct {
	XMLName xml.Name    `xml:"ENVELOPE"`
	Header  tallyHeader `xml:"HEADER"`
	Body    tallyBody   `xml:"BODY"`
}

type tallyHeader struct {
	Request string `xml:"TALLYREQUEST"`
}

type tallyBody struct {
	Import struct {
		Request struct {
			Messages []tallyMessage `xml:"TALLYMESSAGE"`
		} `xml:"REQUESTDATA"`
	} `xml:"IMPORTDATA"`
}

type tallyMessage struct {
	UDF     string       `xml:"xmlns:UDF,attr"`
	Voucher tallyVoucher `xml:"VOUCHER"`
}

type tallyVoucher struct {
	Type     string             `xml:"VCHTYPE,attr"`
	Action   string             `xml:"ACTION,attr"`
	View     string             `xml:"OBJVIEW,attr"`
	Date     string             `xml:"DATE"`
	Narr     string             `xml:"NARRATION"`
	TypeName string             `xml:"VOUCHERTYPENAME"`
	Number   string             `xml:"VOUCHERNUMBER"`
	Entries  []tallyLedgerEntry `xml:"ALLLEDGERENTRIES.LIST"`
}

type tallyLedgerEntry struct {
	Ledger         string `xml:"LEDGERNAME"`
	DeemedPositive string `xml:"ISDEEMEDPOSITIVE"`
	Amount         string `xml:"AMOUNT"`
}

// TallyXML writes the Tally "Import Data" envelope, one TALLYMESSAGE per
// transaction. The zero value writes compact XML without a declaration.
type TallyXML struct {
	// Indent, when set, pretty prints the envelope.
	Indent string
}

func (t *TallyXML) Name() string {
	return FormatTallyXML
}

func (t *TallyXML) ContentType() string {
	return "application/xml"
}

func (t *TallyXML) Extension() string {
	return "xml"
}

// Encode writes the envelope for txns to w.
func (t *TallyXML) Encode(w io.Writer, txns []domain.Transaction) error {
	env := tallyEnvelope{Header: tallyHeader{Request: tallyRequest}}
	msgs := make([]tallyMessage, 0, len(txns))
	for _, v := range Vouchers(txns) {
		msgs = append(msgs, tallyMessage{UDF: tallyUDF, Voucher: toTally(v)})
	}
	env.Body.Import.Request.Messages = msgs

	enc := xml.NewEncoder(w)
	if t.Indent != "" {
		enc.Indent("", t.Indent)
	}
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("failed to encode tally envelope: %w", err)
	}
	return enc.Flush()
}

// Generate returns the envelope for txns as bytes.
func (t *TallyXML) Generate(txns []domain.Transaction) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := t.Encode(buf, txns)
	return buf.Bytes(), err
}

func toTally(v domain.Voucher) tallyVoucher {
	num := v.Reference
	if num == "" {
		num = defaultVoucherNumber
	}

	out := tallyVoucher{
		Type:     string(v.Type),
		Action:   tallyAction,
		View:     tallyView,
		Date:     v.Date.Format(tallyDate),
		Narr:     v.Narration,
		TypeName: string(v.Type),
		Number:   num,
		Entries:  make([]tallyLedgerEntry, 0, len(v.Entries)),
	}
	for _, e := range v.Entries {
		out.Entries = append(out.Entries, tallyLedgerEntry{
			Ledger:         e.Ledger,
			DeemedPositive: yesNo(e.DeemedPositive),
			Amount:         Amount(e.Amount),
		})
	}
	return out
}

// Amount renders a ledger amount with exactly two decimals, rounding the
// binary value (2.675 is stored just below and renders "2.67"). Zero is always
// "0.00", never "-0.00".
func Amount(f float64) string {
	s := strconv.FormatFloat(f, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
