package config

import (
	detectionHandler "CabbageAI/internal/api/detection/handler"
	detectionService "CabbageAI/internal/api/detection/service"
	"CabbageAI/internal/middleware"
	"CabbageAI/pkg/utils"
	"CabbageAI/pkg/yolo"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine     *fiber.App
	log        *logrus.Logger
	middleware middleware.Middleware
	utils      utils.IUtils
	detector   yolo.IDetector
	cors       CORSConfig
	address    string
	handlers   []handler
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{
		address: fmt.Sprintf("%s:%s", defaultHost, defaultPort),
	}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.detector == nil {
		return nil, fmt.Errorf("detector is required")
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log)
	}
	if server.utils == nil {
		server.utils = utils.New()
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithDetector(detector yolo.IDetector) ServerOption {
	return func(s *Server) error {
		if detector == nil {
			return fmt.Errorf("detector must not be nil")
		}
		s.detector = detector
		return nil
	}
}

func WithCORS(cfg CORSConfig) ServerOption {
	return func(s *Server) error {
		s.cors = cfg
		return nil
	}
}

func WithAddress(address string) ServerOption {
	return func(s *Server) error {
		if address == "" {
			return fmt.Errorf("address must not be empty")
		}
		s.address = address
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	s.engine.Use(recover.New())
	s.engine.Use(NewCORS(s.cors))
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware)

	// Detection
	detectionServices := detectionService.NewDetectionService(s.detector, s.utils)
	detectionHandlers := detectionHandler.New(s.log, s.middleware, detectionServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, detectionHandlers)

	for _, h := range s.handlers {
		h.Start(s.engine)
	}
}

func (s *Server) Run() error {
	s.log.WithFields(logrus.Fields{
		"address": s.address,
		"classes": s.detector.Names(),
		"cors":    s.cors.AllowedOrigins,
	}).Info("Server starting")

	return s.engine.Listen(s.address)
}

func (s *Server) Shutdown() error {
	return s.engine.Shutdown()
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Hello World",
		})
	})
}
