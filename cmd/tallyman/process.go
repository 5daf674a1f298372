package main

import (
	"github.com/voidshard/tallyman/pkg/adapter"
	"github.com/voidshard/tallyman/pkg/detect"
	"github.com/voidshard/tallyman/pkg/export"
	"github.com/voidshard/tallyman/pkg/logger"
	"github.com/voidshard/tallyman/pkg/pipeline"
	"github.com/voidshard/tallyman/pkg/reader"
)

type processCmd struct {
	Files      []string `arg help:"Statement files (.csv .xlsx .xls)."`
	Workers    int      `help:"Files processed in parallel (default from config)."`
	DateFormat string   `name:"date-format" help:"Strict date format for every row, eg. %d/%m/%Y."`
	DayFirst   bool     `name:"day-first" help:"Read ambiguous dates like 03/04/2024 as dd/mm."`
	Out        string   `help:"Also write successful statements to [jsonfile:/path/file.json es8:http://myelasticsearch:9200]"`
}

func (p *processCmd) Run(g *globals) error {
	ctx, cfg, err := g.setup()
	if err != nil {
		return err
	}

	if p.DayFirst {
		cfg.DayFirst = true
	}

	proc, err := processor(cfg, p.DateFormat)
	if err != nil {
		return err
	}

	storage, err := sink(cfg, p.Out)
	if err != nil {
		return err
	}

	workers := p.Workers
	if workers < 1 {
		workers = cfg.Workers
	}

	results := proc.ProcessAll(ctx, p.Files, workers)

	if storage != nil {
		stmts := pipeline.Statements(results)
		log := logger.FromContext(ctx)
		log.Info().Int("statements", len(stmts)).Msg("writing statements")
		if err := storage.Write(ctx, stmts); err != nil {
			return err
		}
	}

	return writeJSON(stdout, results)
}

type detectCmd struct {
	File string `arg help:"Statement file (.csv .xlsx .xls .pdf)."`
}

type detection struct {
	File   string         `json:"file"`
	Bank   string         `json:"bank"`
	Scores []detect.Score `json:"scores"`
}

func (d *detectCmd) Run(g *globals) error {
	_, cfg, err := g.setup()
	if err != nil {
		return err
	}

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	src, err := reader.ReadFile(d.File)
	if err != nil {
		return err
	}

	det := detect.New(reg)
	return writeJSON(stdout, &detection{
		File:   d.File,
		Bank:   det.Detect(src.Text),
		Scores: det.Scores(src.Text),
	})
}

type infoCmd struct {
	File string `arg help:"Statement file (.csv .xlsx .xls)."`
}

func (i *infoCmd) Run(g *globals) error {
	src, err := reader.ReadFile(i.File)
	if err != nil {
		return err
	}
	info, err := reader.Describe(src)
	if err != nil {
		return err
	}
	return writeJSON(stdout, info)
}

type banksCmd struct{}

type capabilities struct {
	Banks    []string `json:"banks"`
	Dialects []string `json:"dialects"`
	Formats  []string `json:"formats"`
}

func supported(reg *detect.Registry) *capabilities {
	return &capabilities{
		Banks:    reg.Banks(),
		Dialects: adapter.Dialects(),
		Formats:  export.Formats(),
	}
}

func (b *banksCmd) Run(g *globals) error {
	_, cfg, err := g.setup()
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	return writeJSON(stdout, supported(reg))
}
