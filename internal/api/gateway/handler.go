// Package gateway exposes the loopback HTTP surface the browser
// extension talks to. Every operation carries the gateway token in its
// payload rather than an Authorization header, so tokens are validated
// inside the handlers instead of a bearer middleware.
package gateway

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"credvault/internal/domain/credential"
	"credvault/internal/domain/session"
)

type Handler struct {
	sessions    session.Servicer
	credentials credential.Servicer
	log         *slog.Logger
	middleware  huma.Middlewares
}

func NewHandler(sessions session.Servicer, credentials credential.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		sessions:    sessions,
		credentials: credentials,
		log:         log.With("component", "gateway"),
		middleware:  mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.authOp(), h.auth)
	huma.Register(api, h.credentialsOp(), h.list)
	huma.Register(api, h.updateUsageOp(), h.updateUsage)
	huma.Register(api, h.autoFillOp(), h.setAutoFill)
	huma.Register(api, h.patternOp(), h.setPattern)
}

func (h *Handler) auth(_ context.Context, input *authInput) (*statusOutput, error) {
	if _, err := h.sessions.Validate(input.Body.Token); err != nil {
		return nil, huma.Error401Unauthorized("invalid token")
	}

	return &statusOutput{
		Body: statusResponse{Status: "Ok"},
	}, nil
}

func (h *Handler) list(ctx context.Context, input *credentialsInput) (*credentialsOutput, error) {
	accountID, err := h.sessions.Validate(input.Token)
	if err != nil {
		return nil, huma.Error401Unauthorized("invalid token")
	}
	if input.URL == "" {
		return nil, huma.Error400BadRequest("url is required")
	}

	matches, err := h.credentials.FindForOrigin(ctx, accountID, input.URL)
	if err != nil {
		h.log.Error("find credentials", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}

	// No match is a valid outcome: the extension gets an empty list,
	// not an error.
	if matches == nil {
		matches = []credential.PlainCredential{}
	}

	return &credentialsOutput{
		Body: credentialsResponse{
			Status:      "Ok",
			Credentials: matches,
		},
	}, nil
}

func (h *Handler) updateUsage(ctx context.Context, input *updateUsageInput) (*statusOutput, error) {
	accountID, err := h.sessions.Validate(input.Body.Token)
	if err != nil {
		return nil, huma.Error401Unauthorized("invalid token")
	}

	if err := h.credentials.UpdateUsage(ctx, accountID, input.Body.ID); err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return nil, huma.Error404NotFound("credential not found")
		}
		h.log.Error("update usage", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}

	return &statusOutput{
		Body: statusResponse{Status: "Ok"},
	}, nil
}

func (h *Handler) setAutoFill(ctx context.Context, input *autoFillInput) (*statusOutput, error) {
	accountID, err := h.sessions.Validate(input.Body.Token)
	if err != nil {
		return nil, huma.Error401Unauthorized("invalid token")
	}

	if err := h.credentials.SetAutoFill(ctx, accountID, input.ID, input.Body.Enabled); err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return nil, huma.Error404NotFound("credential not found")
		}
		h.log.Error("set autofill", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}

	return &statusOutput{
		Body: statusResponse{Status: "Ok"},
	}, nil
}

func (h *Handler) setPattern(ctx context.Context, input *patternInput) (*statusOutput, error) {
	accountID, err := h.sessions.Validate(input.Body.Token)
	if err != nil {
		return nil, huma.Error401Unauthorized("invalid token")
	}

	if err := h.credentials.SetURLPattern(ctx, accountID, input.ID, input.Body.Pattern); err != nil {
		switch {
		case errors.Is(err, credential.ErrNotFound):
			return nil, huma.Error404NotFound("credential not found")
		case errors.Is(err, credential.ErrInvalidInput):
			return nil, huma.Error400BadRequest("invalid pattern")
		}
		h.log.Error("set pattern", "error", err)
		return nil, huma.Error500InternalServerError("internal error")
	}

	return &statusOutput{
		Body: statusResponse{Status: "Ok"},
	}, nil
}
