package domain

// Statement is the processed form of one input file.
type Statement struct {
	File         string        `json:"file"`
	Bank         string        `json:"bank"`
	Transactions []Transaction `json:"transactions"`
}
