/*Basic command structure*/
package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/voidshard/tallyman/pkg/adapter"
	"github.com/voidshard/tallyman/pkg/config"
	"github.com/voidshard/tallyman/pkg/detect"
	"github.com/voidshard/tallyman/pkg/logger"
	"github.com/voidshard/tallyman/pkg/pipeline"
	"github.com/voidshard/tallyman/pkg/store"
)

// globals holds global options
type globals struct {
	Config   string `help:"YAML config file (optional)." default:"tallyman.yaml"`
	LogLevel string `name:"log-level" help:"Log level [debug info warn error], overrides config."`
}

// cli commands / args available
var cli struct {
	Globals globals `embed`

	Process processCmd `cmd help:"Convert statement files into transactions (JSON on stdout)."`
	Export  exportCmd  `cmd help:"Convert a JSON array of transactions into a ledger import document."`
	Detect  detectCmd  `cmd help:"Show which bank a statement looks like, and why."`
	Info    infoCmd    `cmd help:"Show the table shape and column mapping of a statement."`
	Banks   banksCmd   `cmd help:"List supported banks, dialect adapters and export formats."`
	Keygen  keygenCmd  `cmd help:"Print a random signing key."`
	Verify  verifyCmd  `cmd help:"Check the signature of an exported document."`
	Watch   watchCmd   `cmd help:"Periodically process new statements dropped into an inbox."`
	Serve   serveCmd   `cmd help:"Serve the process and export operations over HTTP."`
}

// setup loads config and returns a context carrying the configured logger.
func (g *globals) setup() (context.Context, *config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	return logger.WithContext(context.Background(), logger.New(cfg.LogLevel)), cfg, nil
}

// processor builds a pipeline from config; a non-empty dateFormat wins over
// the configured one.
func processor(cfg *config.Config, dateFormat string) (*pipeline.Processor, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	if dateFormat == "" {
		dateFormat = cfg.DateFormat
	}
	return pipeline.New(detect.New(reg), adapter.Options{DateFormat: dateFormat, DayFirst: cfg.DayFirst}), nil
}

// sink opens the store named by out (falling back to config), or nil.
func sink(cfg *config.Config, out string) (store.Store, error) {
	if out == "" {
		out = cfg.Out
	}
	if out == "" {
		return nil, nil
	}
	return store.Open(out, store.Options{
		Addresses: cfg.Elasticsearch.Addresses,
		Index:     cfg.Elasticsearch.Index,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

var stdout io.Writer = os.Stdout

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("tallyman"),
		kong.Description("Bank statements in, ledger vouchers out."),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
