package gateway

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) authOp() huma.Operation {
	return huma.Operation{
		OperationID: "gateway-auth",
		Method:      http.MethodPost,
		Path:        "/api/auth",
		Summary:     "Validate an extension token",
		Tags:        []string{"gateway"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) credentialsOp() huma.Operation {
	return huma.Operation{
		OperationID: "gateway-credentials",
		Method:      http.MethodGet,
		Path:        "/api/credentials",
		Summary:     "Credentials matching a requested origin",
		Description: "Returns the decrypted auto-fill candidates for the requested origin, exact matches first.",
		Tags:        []string{"gateway"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateUsageOp() huma.Operation {
	return huma.Operation{
		OperationID: "gateway-update-usage",
		Method:      http.MethodPost,
		Path:        "/api/update-usage",
		Summary:     "Mark a credential as just used",
		Tags:        []string{"gateway"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) autoFillOp() huma.Operation {
	return huma.Operation{
		OperationID: "gateway-set-autofill",
		Method:      http.MethodPost,
		Path:        "/api/credentials/{id}/autofill",
		Summary:     "Toggle auto-fill for a credential",
		Tags:        []string{"gateway"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) patternOp() huma.Operation {
	return huma.Operation{
		OperationID: "gateway-set-pattern",
		Method:      http.MethodPost,
		Path:        "/api/credentials/{id}/pattern",
		Summary:     "Update the URL wildcard pattern for a credential",
		Tags:        []string{"gateway"},
		Middlewares: h.middleware,
	}
}
