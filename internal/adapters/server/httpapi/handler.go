// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/evanschultz/dockyard/internal/adapters/server/common"
	"github.com/evanschultz/dockyard/internal/app"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// ActorHeader names the request header carrying the caller name for save attribution.
const ActorHeader = "X-Dockyard-Actor"

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	layouts common.LayoutService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over the layout service.
func NewHandler(layouts common.LayoutService) *Handler {
	return &Handler{layouts: layouts}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.layouts == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "layout service is not configured",
		})
		return
	}
	ctx := app.WithActor(r.Context(), app.Actor{
		Name:    strings.TrimSpace(r.Header.Get(ActorHeader)),
		Surface: app.SurfaceHTTP,
	})
	r = r.WithContext(ctx)

	switch normalizePath(r.URL.Path) {
	case "layout":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleDescribe(w, r)
	case "slots":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		slots, err := h.layouts.ListSlots(r.Context())
		if err != nil {
			writeErrorFrom(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
	case "columns":
		switch r.Method {
		case http.MethodPost:
			h.writeResult(w, http.StatusCreated)(h.layouts.AddColumn(r.Context()))
		case http.MethodDelete:
			h.handleRemoveColumn(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodPost, http.MethodDelete)
		}
	case "moves":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		var req common.MovePanelRequest
		if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
			writeErrorFrom(w, err)
			return
		}
		h.writeResult(w, http.StatusOK)(h.layouts.MovePanel(r.Context(), req))
	case "reset":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.writeResult(w, http.StatusOK)(h.layouts.ResetLayout(r.Context()))
	case "save":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.writeResult(w, http.StatusOK)(h.layouts.SaveLayout(r.Context()))
	case "load":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.writeResult(w, http.StatusOK)(h.layouts.LoadLayout(r.Context()))
	default:
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	}
}

// handleDescribe serves GET `/layout`.
func (h *Handler) handleDescribe(w http.ResponseWriter, r *http.Request) {
	markdown, _ := strconv.ParseBool(r.URL.Query().Get("markdown"))
	view, err := h.layouts.DescribeLayout(r.Context(), common.DescribeLayoutRequest{Markdown: markdown})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleRemoveColumn serves DELETE `/columns`, optionally with `?index=N`.
func (h *Handler) handleRemoveColumn(w http.ResponseWriter, r *http.Request) {
	var req common.RemoveColumnRequest
	if raw := strings.TrimSpace(r.URL.Query().Get("index")); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, APIError{
				Code:    "invalid_request",
				Message: fmt.Sprintf("index must be an integer: %q", raw),
			})
			return
		}
		req.Index = &idx
	}
	h.writeResult(w, http.StatusOK)(h.layouts.RemoveColumn(r.Context(), req))
}

// writeResult returns a sink for one (result, error) pair.
func (h *Handler) writeResult(w http.ResponseWriter, okStatus int) func(common.OperationResult, error) {
	return func(res common.OperationResult, err error) {
		if err != nil {
			writeErrorFrom(w, err)
			return
		}
		writeJSON(w, okStatus, res)
	}
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	if err == nil {
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
		return
	}
	if errors.Is(err, common.ErrInvalidRequest) {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
		return
	}
	code := app.ErrorCode(err)
	apiErr := APIError{Code: code, Message: err.Error()}
	var opErr *common.OperationError
	if errors.As(err, &opErr) {
		apiErr.Message = opErr.Status.Message
	}
	switch code {
	case "max_columns_reached":
		apiErr.Hint = "Remove a column before adding another."
		writeJSONError(w, http.StatusConflict, apiErr)
	case "min_columns_reached":
		apiErr.Hint = "The last column cannot be removed."
		writeJSONError(w, http.StatusConflict, apiErr)
	case "duplicate_panel":
		writeJSONError(w, http.StatusConflict, apiErr)
	case "invalid_target", "invalid_argument":
		writeJSONError(w, http.StatusBadRequest, apiErr)
	case "unknown_panel", "not_found":
		writeJSONError(w, http.StatusNotFound, apiErr)
	case "corrupt_layout":
		writeJSONError(w, http.StatusUnprocessableEntity, apiErr)
	case "closed":
		writeJSONError(w, http.StatusServiceUnavailable, apiErr)
	default:
		apiErr.Code = "internal_error"
		writeJSONError(w, http.StatusInternalServerError, apiErr)
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
