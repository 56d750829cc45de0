package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/askthat/cache"
	"github.com/meghashyamc/askthat/config"
	"github.com/meghashyamc/askthat/db/docstore"
	"github.com/meghashyamc/askthat/llm"
	"github.com/meghashyamc/askthat/logger"
	"github.com/meghashyamc/askthat/ratelimit"
	"github.com/meghashyamc/askthat/services/answer"
	"github.com/meghashyamc/askthat/services/index"
	"github.com/meghashyamc/askthat/validation"
)

type server struct {
	router     *gin.Engine
	httpServer *http.Server
	cfg        *config.Config
	docStore   docstore.Store
	answers    *answer.Service
	limiter    *ratelimit.Limiter
	validator  *validation.Validator
	logger     logger.Logger
}

func Run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)

	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger.New(),
	}
	if err := s.setupDependencies(); err != nil {
		return err
	}
	s.setupRouter()
	s.setupHTTPServer()
	s.setupGracefulShutdown(ctx)

	return nil
}

func (s *server) setupDependencies() error {
	var err error
	s.docStore, err = docstore.New(s.logger, s.cfg.GetDocStorePath())
	if err != nil {
		s.logger.Error("error creating document store", "err", err.Error())
		return err
	}

	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		return err
	}

	responseCache, err := cache.New(s.logger, s.cfg.GetCacheCapacity())
	if err != nil {
		s.logger.Error("error creating response cache", "err", err.Error())
		return err
	}

	indexService := index.New(s.logger, s.cfg.GetDocsPath(), s.docStore)
	llmClient := llm.NewClient(s.logger, s.cfg)

	s.answers = answer.New(s.logger, s.cfg, indexService, llmClient, responseCache)
	s.limiter = ratelimit.New(s.logger, s.cfg.GetRateWindow(), s.cfg.GetRateMax())

	return nil
}

func (s *server) setupRouter() {
	router := newRouter()

	router.Use(loggingMiddleware(s.logger))

	setupRoutes(router, s.logger, s.answers, s.limiter, s.validator)

	s.router = router
}

func (s *server) setupHTTPServer() {

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler: s.router.Handler(),
	}
	s.httpServer = httpServer
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()
}

func (s *server) setupGracefulShutdown(ctx context.Context) {

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		s.logger.Info("starting to shut down http server")
		shutdownCtx := context.Background()
		shutdownCtx, cancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		defer cancel()
		s.docStore.Close()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error shutting down http server", "err", err)
			return
		}
		s.logger.Info("shut down http server successfully")
	}()

	wg.Wait()
}
