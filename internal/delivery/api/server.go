package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"devconnect/config"
	"devconnect/internal/delivery"
	apimiddleware "devconnect/internal/delivery/api/middleware"
	"devconnect/internal/delivery/api/router"
	"devconnect/internal/delivery/api/validator"
	deliverycontext "devconnect/internal/delivery/context"
	"devconnect/internal/delivery/middleware"
	"devconnect/internal/domain/lifecycle"
	"devconnect/internal/errors"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"golang.org/x/net/http2"
)

// apiServer serves the HTTP API over h2c.
type apiServer struct {
	cfg    *config.Config
	logger *slog.Logger
	server *echo.Echo
}

// ServerParams holds dependencies for HTTP server, injected by Fx.
type ServerParams struct {
	fx.In

	Lc           fx.Lifecycle
	Cfg          *config.Config
	Logger       *slog.Logger
	RouterParams router.RouterParams
}

// NewServer builds the echo instance with its middleware chain and routes.
func NewServer(params ServerParams) (delivery.Delivery, error) {
	srv, err := newAPIServer(params)
	if err != nil {
		return nil, err
	}

	params.Lc.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

func newAPIServer(params ServerParams) (*apiServer, error) {
	cfg := params.Cfg

	extractIP, err := clientIPExtractor(cfg.HTTP.TrustedProxies)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.IPExtractor = extractIP
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.HTTP.Timeouts.ReadTimeout
	e.Server.ReadHeaderTimeout = cfg.HTTP.Timeouts.ReadHeaderTimeout
	e.Server.WriteTimeout = cfg.HTTP.Timeouts.WriteTimeout
	e.Server.IdleTimeout = cfg.HTTP.Timeouts.IdleTimeout

	// Order matters: the request ID must exist before the access log line,
	// and the gate runs last so rejected requests are still logged.
	e.Use(
		echomiddleware.Recover(),
		middleware.NewRequestIDMiddleware(params.Logger).Process,
		middleware.NewLoggerMiddleware(params.Logger, cfg).Handle,
		echomiddleware.Secure(),
		corsMiddleware(cfg.HTTP.AllowOrigins),
		echomiddleware.BodyLimit(cfg.HTTP.MaxRequestBodySize),
		params.RouterParams.Gate.Protect,
	)

	e.HTTPErrorHandler = apimiddleware.NewErrorMiddleware(params.Logger).HandleHTTPError
	e.Validator = validator.New()

	router.NewRouter(params.RouterParams).RegisterRoutes(e)

	return &apiServer{
		cfg:    cfg,
		logger: params.Logger,
		server: e,
	}, nil
}

// clientIPExtractor decides what c.RealIP() returns, which is what the
// credential limiter keys on. Forwarding headers are honoured only when the
// socket peer is a configured proxy; otherwise a client could pick its own key.
func clientIPExtractor(trustedProxies []string) (echo.IPExtractor, error) {
	networks, err := config.ParseTrustedProxies(trustedProxies)
	if err != nil {
		return nil, err
	}
	if len(networks) == 0 {
		return echo.ExtractIPDirect(), nil
	}

	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, network := range networks {
		opts = append(opts, echo.TrustIPRange(network))
	}

	return echo.ExtractIPFromXFFHeader(opts...), nil
}

// corsMiddleware allows credentialed requests from the configured origins so the
// auth cookie travels with them. Without origins only simple CORS is enabled.
func corsMiddleware(origins []string) echo.MiddlewareFunc {
	if len(origins) == 0 {
		return echomiddleware.CORS()
	}

	return echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     origins,
		AllowCredentials: true,
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			deliverycontext.HeaderXRequestID,
		},
		ExposeHeaders: []string{deliverycontext.HeaderXRequestID},
	})
}

func (s *apiServer) Serve(ctx context.Context) error {
	hostPort := net.JoinHostPort("0.0.0.0", strconv.Itoa(s.cfg.HTTP.Port))
	s.logger.Info("API server listening", slog.String("addr", hostPort))
	h2Server := &http2.Server{
		IdleTimeout: s.cfg.HTTP.Timeouts.IdleTimeout,
	}
	if err := s.server.StartH2CServer(hostPort, h2Server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}

	return nil
}

func (s *apiServer) stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")

	return errors.WithStack(s.server.Shutdown(shutdownCtx))
}
