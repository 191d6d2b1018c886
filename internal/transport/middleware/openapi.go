package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/meeting-manager/internal"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// RequestValidator checks requests against the OpenAPI document before they
// reach a handler. Requests for paths the document does not describe pass
// through untouched.
type RequestValidator struct {
	router routers.Router
	logger *slog.Logger
}

func NewRequestValidator(ctx context.Context, spec []byte, logger *slog.Logger) (*RequestValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &RequestValidator{router: router, logger: logger}, nil
}

func (v *RequestValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := v.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				// multipart uploads are checked by the handler
				ExcludeRequestBody: !isJSON(r.Header.Get("Content-Type")),
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			v.logger.Debug("request rejected by openapi validation", "path", r.URL.Path, "error", err)
			writeAppError(w, requestValidationError(err))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requestValidationError(err error) *internal.AppError {
	var fields internal.ValidationErrors

	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		field, message := "", reqErr.Reason
		if reqErr.Parameter != nil {
			field = reqErr.Parameter.Name
		}

		var schemaErr *openapi3.SchemaError
		if errors.As(reqErr.Err, &schemaErr) {
			if ptr := schemaErr.JSONPointer(); len(ptr) > 0 && field == "" {
				field = strings.Join(ptr, ".")
			}
			message = schemaErr.Reason
		}
		if message == "" {
			message = reqErr.Error()
		}
		fields.Add(field, message, internal.ErrCodeValidationFailed)
		return fields.Err()
	}

	fields.Add("", err.Error(), internal.ErrCodeValidationFailed)
	return fields.Err()
}

func writeAppError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
