package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/resultsportal/internal/bootstrap"
	"github.com/yigit/resultsportal/internal/config"
	"github.com/yigit/resultsportal/internal/db"
	"github.com/yigit/resultsportal/internal/pkg/helpers"
)

// Server holds the state for the HTTP server.
type Server struct {
	config  *config.Config
	router  *gin.Engine
	pg      *db.PostgresDB
	mongoDB *db.MongoDB
	logger  zerolog.Logger
	http    *http.Server
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer(ctx context.Context) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	pg, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	mongoDB, err := bootstrap.SetupMongo(ctx, cfg, lgr)
	if err != nil {
		pg.Close()
		return nil, fmt.Errorf("failed to setup mongodb: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(ctx, cfg, pg, mongoDB, lgr)
	if err != nil {
		pg.Close()
		_ = mongoDB.Close(ctx)
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	return &Server{
		config:  cfg,
		router:  bootstrap.SetupRouter(cfg, deps, lgr),
		pg:      pg,
		mongoDB: mongoDB,
		logger:  lgr,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  helpers.ParseDuration(s.config.Server.ReadTimeout, 30*time.Second),
		WriteTimeout: helpers.ParseDuration(s.config.Server.WriteTimeout, 2*time.Minute),
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			s.closeStores(context.Background())
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var shutdownErr error
	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownErr = errors.Join(shutdownErr, err)
		}
	}

	shutdownErr = errors.Join(shutdownErr, s.closeStores(ctx))

	s.logger.Info().Msg("Server shutdown process complete.")
	return shutdownErr
}

func (s *Server) closeStores(ctx context.Context) error {
	var err error
	if s.mongoDB != nil {
		if cerr := s.mongoDB.Close(ctx); cerr != nil {
			s.logger.Error().Err(cerr).Msg("MongoDB disconnect error")
			err = cerr
		}
		s.mongoDB = nil
	}
	if s.pg != nil {
		s.pg.Close()
		s.pg = nil
		s.logger.Info().Msg("Database connection pool closed.")
	}
	return err
}
