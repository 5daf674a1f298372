package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/voidshard/tallyman/pkg/crypto"
	"github.com/voidshard/tallyman/pkg/domain"
)

// Store is a sink for processed statements.
type Store interface {
	Write(ctx context.Context, stmts []*domain.Statement) error
}

// Record is one transaction as a sink sees it.
type Record struct {
	ID          string             `json:"id"`
	File        string             `json:"file"`
	Bank        string             `json:"bank"`
	Row         int                `json:"row"`
	Transaction domain.Transaction `json:"transaction"`
}

// Records flattens statements into records. IDs depend only on the file,
// the position and the transaction itself, so reprocessing a file yields
// the same IDs.
func Records(stmts []*domain.Statement) ([]*Record, error) {
	out := []*Record{}
	for _, s := range stmts {
		if s == nil {
			continue
		}
		for i := range s.Transactions {
			data, err := s.Transactions[i].JSON()
			if err != nil {
				return nil, err
			}
			out = append(out, &Record{
				ID:          crypto.Fingerprint(crypto.TagTransaction, []byte(s.File), []byte(strconv.Itoa(i)), data),
				File:        s.File,
				Bank:        s.Bank,
				Row:         i,
				Transaction: s.Transactions[i],
			})
		}
	}
	return out, nil
}

// Options carry sink settings that do not fit in a spec string.
type Options struct {
	// Addresses are used when an es8 spec names no hosts.
	Addresses []string

	Index    string
	Username string
	Password string
}

// Open builds a store from a spec of the form kind:target, eg.
//
//	jsonfile:/var/lib/tallyman/out.json
//	es8:http://es1:9200,http://es2:9200
//	es8:
func Open(spec string, opts Options) (Store, error) {
	kind, target, ok := strings.Cut(spec, ":")
	if !ok {
		return nil, fmt.Errorf("store spec %q should look like kind:target", spec)
	}

	switch strings.ToLower(kind) {
	case "jsonfile", "json":
		if target == "" {
			return nil, fmt.Errorf("jsonfile store needs a filename")
		}
		return NewJSONFile(target), nil
	case "es8", "elasticsearch":
		urls := []string{}
		for _, u := range strings.Split(target, ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		if len(urls) == 0 {
			urls = opts.Addresses
		}
		return NewElasticsearchV8(opts, urls...), nil
	}
	return nil, fmt.Errorf("unknown store kind %q", kind)
}
