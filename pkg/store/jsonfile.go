package store

import (
	"context"
	"encoding/json"
	"os"

	"github.com/voidshard/tallyman/pkg/domain"
)

type JSONFile struct {
	filename string
}

func NewJSONFile(filename string) Store {
	return &JSONFile{filename: filename}
}

func (f *JSONFile) Write(ctx context.Context, stmts []*domain.Statement) error {
	if stmts == nil {
		stmts = []*domain.Statement{}
	}
	data, err := json.MarshalIndent(stmts, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.filename, data, 0644)
}
