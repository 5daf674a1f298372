package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/voidshard/tallyman/pkg/domain"
	"github.com/voidshard/tallyman/pkg/logger"
)

const (
	esIndex = "tallyman"
	esFlush = 2048

	envEsAddr = "ELASTICSEARCH_SERVICE_HOST"
	envEsPort = "ELASTICSEARCH_SERVICE_PORT"
)

// ElasticsearchV8 bulk indexes one document per transaction, keyed by the
// record ID.
type ElasticsearchV8 struct {
	addresses []string
	opts      Options
}

func NewElasticsearchV8(opts Options, urls ...string) Store {
	if len(urls) == 0 {
		address := os.Getenv(envEsAddr)
		port := os.Getenv(envEsPort)
		if port == "" {
			port = "9200" // default port
		}
		if address == "" {
			address = "localhost" // default address
		}
		urls = []string{fmt.Sprintf("http://%s:%s", address, port)}
	}
	if opts.Index == "" {
		opts.Index = esIndex
	}

	return &ElasticsearchV8{addresses: urls, opts: opts}
}

func (e *ElasticsearchV8) Write(ctx context.Context, stmts []*domain.Statement) error {
	log := logger.FromContext(ctx).With().Str("index", e.opts.Index).Logger()

	records, err := Records(stmts)
	if err != nil {
		return err
	}

	retryBackoff := backoff.NewExponentialBackOff()

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: e.addresses,
		Username:  e.opts.Username,
		Password:  e.opts.Password,

		// Retry on 429 TooManyRequests statuses
		RetryOnStatus: []int{502, 503, 504, 429},

		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},

		MaxRetries: 5,
	})
	if err != nil {
		return err
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         e.opts.Index,
		FlushBytes:    esFlush,
		Client:        es,
		NumWorkers:    4,
		FlushInterval: 10 * time.Second,
	})
	if err != nil {
		return err
	}

	res, err := es.Indices.Create(e.opts.Index)
	if err != nil {
		log.Warn().Err(err).Msg("attempted to make index")
	} else {
		res.Body.Close()
	}

	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}

		err = bi.Add(
			ctx,
			esutil.BulkIndexerItem{
				Action:     "index",
				DocumentID: r.ID,
				Body:       bytes.NewReader(data),
				OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
					if err != nil {
						log.Error().Err(err).Str("id", item.DocumentID).Msg("failed to index transaction")
					} else {
						log.Error().Str("id", item.DocumentID).Str("type", res.Error.Type).Msg(res.Error.Reason)
					}
				},
			},
		)
		if err != nil {
			return err
		}
	}

	err = bi.Close(ctx)
	if err != nil {
		return err
	}

	biStats := bi.Stats()
	if biStats.NumFailed > 0 {
		return fmt.Errorf("failed indexing %d of %d docs", biStats.NumFailed, len(records))
	}
	log.Info().Uint64("documents", biStats.NumFlushed).Msg("indexed transactions")

	return nil
}
