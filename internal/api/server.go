package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/framelift/extraction-service/internal/domain/extraction"
	"github.com/framelift/extraction-service/internal/usecase"
)

// ExtractionService is what the routes need from the extraction side.
type ExtractionService interface {
	ValidateRequest(r extraction.FrameExtractionRequest) extraction.ValidationResult
	PlanExtraction(ctx context.Context, r extraction.FrameExtractionRequest) (*extraction.Plan, error)
	ExtractFrames(ctx context.Context, r extraction.FrameExtractionRequest) (*extraction.ExtractionResult, error)
	CancelExtraction()
	Status() usecase.ExtractorStatus
}

// ImportService is what the routes need from the import side.
type ImportService interface {
	ImportVideo(ctx context.Context, source usecase.ImportSource) (*usecase.ImportedVideo, error)
}

type ServerConfig struct {
	Port        int
	Extractions ExtractionService
	Imports     ImportService
	Logger      *zap.Logger
	StartTime   time.Time
}

type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer builds the HTTP front. WriteTimeout stays unset: a synchronous
// extraction can legitimately hold the response open for minutes.
func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           router,
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
