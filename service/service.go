// Package service implements the BQL compile service.
package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bullet-db/bql/compiler"
	"github.com/bullet-db/bql/config"
	"github.com/gorilla/mux"
	arc "github.com/hashicorp/golang-lru/arc/v2"
	"github.com/paulbellamy/ratecounter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=mock/compiler.go -package=mock github.com/bullet-db/bql/service Compiler

// Compiler is the part of *compiler.Compiler the service uses.
type Compiler interface {
	Compile(query string) (*compiler.Result, error)
}

type Service struct {
	conf     config.Service
	compiler Compiler
	logger   *zap.Logger
	gatherer prometheus.Gatherer
	version  string

	// cache is nil when caching is disabled.
	cache    *arc.ARCCache[string, *compiler.Result]
	rate     *ratecounter.RateCounter
	compiles atomic.Int64
	handler  http.Handler
}

// New returns a Service compiling with c.  The /metrics endpoint serves
// gatherer, or the default registry when gatherer is nil.
func New(conf config.Service, c Compiler, logger *zap.Logger, gatherer prometheus.Gatherer, version string) (*Service, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Service{
		conf:     conf,
		compiler: c,
		logger:   logger,
		gatherer: gatherer,
		version:  version,
		rate:     ratecounter.NewRateCounter(time.Minute),
	}
	if conf.CacheSize > 0 {
		cache, err := arc.NewARC[string, *compiler.Result](conf.CacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}
	s.handler = s.routes()
	return s, nil
}

func (s *Service) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware(s.logger))
	r.Handle("/compile", handler(s, handleCompile)).Methods("POST")
	r.Handle("/status", handler(s, handleStatus)).Methods("GET")
	r.Handle("/version", handler(s, handleVersion)).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods("GET")
	r.NotFoundHandler = handler(s, handleNotFound)
	return cors.New(cors.Options{
		AllowedOrigins: s.conf.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler(r)
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on the configured address until ctx is done.
func (s *Service) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.conf.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("listening", zap.Stringer("addr", ln.Addr()))
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if serr := <-errc; !errors.Is(serr, http.ErrServerClosed) {
			return serr
		}
		return err
	}
}

// compile consults the cache before compiling query.
func (s *Service) compile(query string) (*compiler.Result, bool, error) {
	if s.cache != nil {
		if res, ok := s.cache.Get(query); ok {
			return res, true, nil
		}
	}
	s.rate.Incr(1)
	s.compiles.Add(1)
	res, err := s.compiler.Compile(query)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		s.cache.Add(query, res)
	}
	return res, false, nil
}
