package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/voidshard/tallyman/pkg/crypto"
	"github.com/voidshard/tallyman/pkg/export"
	"github.com/voidshard/tallyman/pkg/logger"
	"github.com/voidshard/tallyman/pkg/pipeline"
	"github.com/voidshard/tallyman/pkg/store"
)

type watchCmd struct {
	Inbox    string `help:"Directory to pick statements up from (default from config)."`
	Outbox   string `help:"Directory to write results to (default from config)."`
	Schedule string `help:"Cron schedule, eg. '*/5 * * * *' or '@every 1m' (default from config)."`
	Once     bool   `help:"Scan once and exit."`
}

// watcher processes every new file in inbox, writing <name>.json with the
// result and, for successes, the export document next to it in outbox.
// Files are remembered by content once they reach the outbox and the sink,
// so a rescan does nothing; anything not fully delivered is retried.
type watcher struct {
	proc     *pipeline.Processor
	exporter export.Exporter
	sink     store.Store
	signKey  string
	inbox    string
	outbox   string

	mu   sync.Mutex
	seen map[string]bool
}

func (w *watcher) scan(ctx context.Context) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	log := logger.FromContext(ctx)

	entries, err := os.ReadDir(w.inbox)
	if err != nil {
		return 0, err
	}

	results := []*pipeline.Result{}
	fingerprints := []string{}
	var failed error
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(w.inbox, e.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("failed to read inbox file")
			continue
		}

		fp := crypto.Fingerprint(crypto.TagFile, []byte(e.Name()), data)
		if w.seen[fp] {
			continue
		}

		r := w.proc.ProcessBytes(ctx, e.Name(), data)
		if err := w.deliver(r); err != nil {
			failed = fmt.Errorf("failed to deliver %s: %w", e.Name(), err)
			break
		}
		results = append(results, r)
		fingerprints = append(fingerprints, fp)
	}

	if stmts := pipeline.Statements(results); w.sink != nil && len(stmts) > 0 {
		if err := w.sink.Write(ctx, stmts); err != nil {
			return 0, errors.Join(failed, fmt.Errorf("failed to write statements: %w", err))
		}
	}

	for _, fp := range fingerprints {
		w.seen[fp] = true
	}
	return len(results), failed
}

func (w *watcher) deliver(r *pipeline.Result) error {
	base := filepath.Join(w.outbox, strings.TrimSuffix(r.File, filepath.Ext(r.File)))

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(base+".json", data, 0644); err != nil {
		return err
	}
	if !r.OK() {
		return nil
	}

	doc, err := w.exporter.Generate(r.Transactions)
	if err != nil {
		return err
	}
	docPath := base + "." + w.exporter.Extension()
	if err := os.WriteFile(docPath, doc, 0644); err != nil {
		return err
	}

	if w.signKey == "" {
		return nil
	}
	sig, err := crypto.Sign(doc, w.signKey)
	if err != nil {
		return err
	}
	return os.WriteFile(docPath+".sig", []byte(sig+"\n"), 0644)
}

func (c *watchCmd) Run(g *globals) error {
	ctx, cfg, err := g.setup()
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)

	if c.Inbox != "" {
		cfg.Watch.Inbox = c.Inbox
	}
	if c.Outbox != "" {
		cfg.Watch.Outbox = c.Outbox
	}
	if c.Schedule != "" {
		cfg.Watch.Schedule = c.Schedule
	}

	proc, err := processor(cfg, "")
	if err != nil {
		return err
	}
	exp, err := export.For(cfg.Export.Format)
	if err != nil {
		return err
	}
	storage, err := sink(cfg, "")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Watch.Outbox, 0755); err != nil {
		return err
	}

	w := &watcher{
		proc:     proc,
		exporter: exp,
		sink:     storage,
		signKey:  cfg.Export.SignKey,
		inbox:    cfg.Watch.Inbox,
		outbox:   cfg.Watch.Outbox,
		seen:     map[string]bool{},
	}

	if c.Once {
		n, err := w.scan(ctx)
		log.Info().Int("files", n).Msg("scan complete")
		return err
	}

	loc, err := time.LoadLocation(cfg.Watch.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", cfg.Watch.Timezone).Msg("invalid timezone, falling back to UTC")
		loc = time.UTC
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := cron.New(cron.WithLocation(loc))
	_, err = sched.AddFunc(cfg.Watch.Schedule, func() {
		n, err := w.scan(ctx)
		if err != nil {
			log.Error().Err(err).Msg("scan failed")
			return
		}
		if n > 0 {
			log.Info().Int("files", n).Msg("scan complete")
		}
	})
	if err != nil {
		return fmt.Errorf("unable to schedule inbox scan: %w", err)
	}

	sched.Start()
	log.Info().
		Str("inbox", cfg.Watch.Inbox).
		Str("outbox", cfg.Watch.Outbox).
		Str("schedule", cfg.Watch.Schedule).
		Msg("watching")

	<-ctx.Done()
	<-sched.Stop().Done()
	return nil
}
