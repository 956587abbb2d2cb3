package api

import (
	"context"
	"errors"
	"strings"

	"DefiPrime/internal/domain/models"
	"DefiPrime/internal/usecase"
	xhttp "DefiPrime/pkg/http"
	xlogger "DefiPrime/pkg/logger"

	"github.com/labstack/echo/v4"
)

// CompositeEchoHandler serves the composite series and the protocol TVL
// report over HTTP. Every request triggers a fresh run.
type CompositeEchoHandler struct {
	logger    *xlogger.Logger
	pipeline  *usecase.CompositePipeline
	tvl       *usecase.TVLReport
	entities  []string
	protocols []string
	source    string
}

func NewCompositeEchoHandler(
	logger *xlogger.Logger,
	pipeline *usecase.CompositePipeline,
	tvl *usecase.TVLReport,
	entities, protocols []string,
	source string,
) *CompositeEchoHandler {
	return &CompositeEchoHandler{
		logger:    logger,
		pipeline:  pipeline,
		tvl:       tvl,
		entities:  entities,
		protocols: protocols,
		source:    source,
	}
}

func (h *CompositeEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/composite", h.Composite)
	g.GET("/tvl", h.TVL)
	g.GET("/health", h.Health)
}

func (h *CompositeEchoHandler) Composite(c echo.Context) error {
	req := &models.CompositeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.pipeline.RunWith(c.Request().Context(), h.entities, usecase.RunOptions{
		TrendWindow: req.Window,
		DisplayDays: req.Days,
	})
	if err != nil {
		return xhttp.AppErrorResponse(c, h.appError(err, res))
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, &models.CompositeResponse{
		Entities:    res.Entities,
		Rows:        res.Rows,
		Diagnostics: res.Diagnostics,
	})
}

func (h *CompositeEchoHandler) TVL(c echo.Context) error {
	req := &models.TVLRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	protocols := h.protocols
	if req.Protocols != "" {
		protocols = nil
		for _, p := range strings.Split(req.Protocols, ",") {
			if p = strings.TrimSpace(p); p != "" {
				protocols = append(protocols, p)
			}
		}
	}
	if len(protocols) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("no protocols requested"))
	}

	res, err := h.tvl.Run(c.Request().Context(), protocols)
	if err != nil {
		var diags []models.Diagnostic
		if res != nil {
			diags = res.Diagnostics
		}
		return xhttp.AppErrorResponse(c, h.errorOf(err, diags))
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, &models.TVLResponse{
		Entities:    res.Entities,
		Rows:        res.Table.Rows,
		Diagnostics: res.Diagnostics,
	})
}

func (h *CompositeEchoHandler) appError(err error, res *usecase.Result) *xhttp.AppError {
	var diags []models.Diagnostic
	if res != nil {
		diags = res.Diagnostics
	}
	return h.errorOf(err, diags)
}

func (h *CompositeEchoHandler) errorOf(err error, diags []models.Diagnostic) *xhttp.AppError {
	switch {
	case errors.Is(err, models.ErrNoDataAvailable):
		ae := xhttp.NotFoundError("no data available for any entity").WithError(err)
		if len(diags) > 0 {
			ae.WithParam("diagnostics", diags)
		}
		return ae
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return xhttp.UnavailableError("composite run interrupted").WithError(err)
	default:
		h.logger.Error("composite usecase error", xlogger.Error(err))
		return xhttp.InternalError("composite run failed").WithError(err)
	}
}

func (h *CompositeEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":    "ok",
		"source":    h.source,
		"entities":  len(h.entities),
		"protocols": len(h.protocols),
	})
}
