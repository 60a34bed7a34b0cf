// Package server hosts the HTTP surface of the catalog search service.
package server

import (
	"context"
	"time"

	"catalog-search/rest"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server wraps the echo instance with lifecycle control.
type Server struct {
	echo *echo.Echo
	addr string
}

type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
}

func New(handler *rest.Handler, cfg Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	if cfg.ReadHeaderTimeout > 0 {
		e.Server.ReadHeaderTimeout = cfg.ReadHeaderTimeout
	}

	rest.RegisterRoutes(e, handler)

	return &Server{echo: e, addr: cfg.Addr}
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
