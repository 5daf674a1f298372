package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/voidshard/tallyman/pkg/crypto"
	"github.com/voidshard/tallyman/pkg/detect"
	"github.com/voidshard/tallyman/pkg/export"
	"github.com/voidshard/tallyman/pkg/logger"
	"github.com/voidshard/tallyman/pkg/pipeline"
	"github.com/voidshard/tallyman/pkg/store"
)

const (
	maxUpload = 32 << 20

	headerRequestID = "X-Request-Id"
	headerSignature = "X-Tallyman-Signature"
)

type serveCmd struct {
	Addr string `help:"Listen address (default from config)."`
}

type server struct {
	proc    *pipeline.Processor
	reg     *detect.Registry
	sink    store.Store
	signKey string
	format  string
	log     zerolog.Logger
}

func (s *server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.withLogger)

	r.HandleFunc("/healthz", s.health).Methods("GET")
	r.HandleFunc("/v1/banks", s.banks).Methods("GET")
	r.HandleFunc("/v1/process", s.process).Methods("POST")
	r.HandleFunc("/v1/export", s.export).Methods("POST")

	return r
}

// withLogger tags every request with an ID and puts a logger carrying it in
// the request context.
func (s *server) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)

		log := s.log.With().Str("request", id).Str("path", r.URL.Path).Logger()
		log.Debug().Str("method", r.Method).Msg("request")

		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), log)))
	})
}

func (s *server) reply(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := writeJSON(w, v); err != nil {
		s.log.Warn().Err(err).Msg("failed to write reply")
	}
}

func (s *server) fail(w http.ResponseWriter, status int, err error) {
	s.reply(w, status, map[string]interface{}{"success": false, "message": err.Error()})
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	s.reply(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) banks(w http.ResponseWriter, r *http.Request) {
	s.reply(w, http.StatusOK, supported(s.reg))
}

// process takes a multipart form with one or more "file" parts and replies
// with one result per file, in upload order.
func (s *server) process(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		s.fail(w, http.StatusBadRequest, errors.New("no file parts in request"))
		return
	}

	results := make([]*pipeline.Result, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			s.fail(w, http.StatusBadRequest, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			s.fail(w, http.StatusBadRequest, err)
			return
		}
		results = append(results, s.proc.ProcessBytes(r.Context(), fh.Filename, data))
	}

	if s.sink != nil {
		if err := s.sink.Write(r.Context(), pipeline.Statements(results)); err != nil {
			s.fail(w, http.StatusBadGateway, err)
			return
		}
	}

	s.reply(w, http.StatusOK, results)
}

// export takes a JSON array of transactions and replies with the document.
// ?format= picks the exporter.
func (s *server) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = s.format
	}
	exp, err := export.For(format)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUpload))
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	txns, err := export.ReadTransactions(data)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	doc, err := exp.Generate(txns)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}

	if s.signKey != "" {
		sig, err := crypto.Sign(doc, s.signKey)
		if err != nil {
			s.fail(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set(headerSignature, sig)
	}

	w.Header().Set("Content-Type", exp.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (c *serveCmd) Run(g *globals) error {
	ctx, cfg, err := g.setup()
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)

	if c.Addr != "" {
		cfg.Serve.Addr = c.Addr
	}

	proc, err := processor(cfg, "")
	if err != nil {
		return err
	}
	storage, err := sink(cfg, "")
	if err != nil {
		return err
	}

	s := &server{
		proc:    proc,
		reg:     proc.Detector().Registry(),
		sink:    storage,
		signKey: cfg.Export.SignKey,
		format:  cfg.Export.Format,
		log:     log,
	}

	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	log.Info().Str("addr", cfg.Serve.Addr).Msg("serving")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
