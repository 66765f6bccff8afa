package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/api/metrics"
	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

type AccountHandler struct {
	accountService ports.AccountService
	metrics        *metrics.Metrics
	log            zerolog.Logger
}

// NewAccountHandler wires the handler. m may be nil.
func NewAccountHandler(accountService ports.AccountService, m *metrics.Metrics, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{accountService: accountService, metrics: m, log: log}
}

// Register creates a new account. Anonymous callers are allowed.
//
// @Summary      Register an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  OutcomeResponse
// @Failure      400   {object}  OutcomeResponse
// @Failure      409   {object}  OutcomeResponse
// @Failure      500   {object}  OutcomeResponse
// @Router       /v1/api/users/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		ve := domain.NewValidationError()
		ve.Add("body", "malformed JSON payload")
		h.observe(domain.OpRegister, nil, ve)
		return ve
	}
	if err := c.Validate(&req); err != nil {
		h.observe(domain.OpRegister, nil, err)
		return err
	}

	res, err := h.accountService.Register(c.Request().Context(), ctxCaller(c), req.toInput())
	h.observe(domain.OpRegister, res, err)
	if err != nil {
		return err
	}
	return h.render(c, res)
}

// Fetch returns one account. Callers may read their own record; admins may
// read any.
//
// @Summary      Get an account
// @Tags         users
// @Produce      json
// @Security     BasicAuth
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  OutcomeResponse
// @Failure      401       {object}  OutcomeResponse
// @Failure      403       {object}  OutcomeResponse
// @Failure      404       {object}  OutcomeResponse
// @Failure      500       {object}  OutcomeResponse
// @Router       /v1/api/users/{username} [get]
func (h *AccountHandler) Fetch(c echo.Context) error {
	res, err := h.accountService.Fetch(c.Request().Context(), ctxCaller(c), c.Param("username"))
	h.observe(domain.OpFetchOne, res, err)
	if err != nil {
		return err
	}
	return h.render(c, res)
}

// List returns every account. Admin only.
//
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     BasicAuth
// @Security     BearerAuth
// @Success      200  {object}  ListResponse
// @Failure      401  {object}  OutcomeResponse
// @Failure      403  {object}  OutcomeResponse
// @Failure      500  {object}  OutcomeResponse
// @Router       /v1/api/users [get]
func (h *AccountHandler) List(c echo.Context) error {
	res, err := h.accountService.List(c.Request().Context(), ctxCaller(c))
	h.observe(domain.OpListAll, res, err)
	if err != nil {
		return err
	}
	return h.render(c, res)
}

// Remove deletes an account. Admin only.
//
// @Summary      Remove an account
// @Tags         users
// @Produce      json
// @Security     BasicAuth
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  OutcomeResponse
// @Failure      401       {object}  OutcomeResponse
// @Failure      403       {object}  OutcomeResponse
// @Failure      404       {object}  OutcomeResponse
// @Failure      500       {object}  OutcomeResponse
// @Router       /v1/api/users/{username} [delete]
func (h *AccountHandler) Remove(c echo.Context) error {
	res, err := h.accountService.Remove(c.Request().Context(), ctxCaller(c), c.Param("username"))
	h.observe(domain.OpRemove, res, err)
	if err != nil {
		return err
	}
	return h.render(c, res)
}

func (h *AccountHandler) render(c echo.Context, res *ports.Result) error {
	body := NewOutcomeResponse(res.Outcome, res.Message)
	if res.Outcome == domain.OutcomeAccessDenied {
		l := ctxLogger(c, h.log)
		l.Info().
			Str("caller", ctxCaller(c).Username).
			Str("path", c.Path()).
			Msg("request refused")
	}
	if res.Accounts != nil {
		return c.JSON(res.Outcome.HTTPStatus(), ListResponse{OutcomeResponse: body, Users: res.Accounts})
	}
	body.User = res.Account
	return c.JSON(res.Outcome.HTTPStatus(), body)
}

// observe records the operation outcome metrics.
func (h *AccountHandler) observe(op domain.Operation, res *ports.Result, err error) {
	outcome := domain.OutcomeProcessingFailure
	var ve *domain.ValidationError
	switch {
	case err == nil && res != nil:
		outcome = res.Outcome
	case errors.As(err, &ve):
		outcome = domain.OutcomeValidationFailure
	}

	h.metrics.Operation(op.String(), outcome.Name())
}

// Version reports the API version.
//
// @Summary      API version
// @Tags         meta
// @Produce      json
// @Success      200  {object}  versionResponse
// @Router       /version [get]
func Version(c echo.Context) error {
	return c.JSON(http.StatusOK, versionResponse{Version: "v1"})
}
