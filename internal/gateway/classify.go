package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/sutinse/ai-analysis-api/internal/errors"
)

// classify maps a client error onto the gateway failure taxonomy and reports
// whether another attempt may succeed.
func classify(op string, err error) (*apperrors.AppError, bool) {
	if appErr, ok := apperrors.As(err); ok {
		return appErr, false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(op, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(op, reqErr.HTTPStatusCode, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(op+" timed out", err), true
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.NewTimeoutError(op+" was cancelled", err), false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.NewTimeoutError(op+" timed out", err), true
	}
	var opErr *net.OpError
	var urlErr *url.Error
	if errors.As(err, &opErr) || errors.As(err, &urlErr) {
		return apperrors.NewConnectionError(op+" could not reach the model endpoint", err), true
	}

	return apperrors.NewUpstreamError(op+" failed", err), false
}

func statusError(op string, status int, err error) (*apperrors.AppError, bool) {
	switch {
	case status == http.StatusTooManyRequests:
		return apperrors.NewUpstreamError(op+" was rate limited", err), true
	case status >= 500:
		return apperrors.NewUpstreamError(fmt.Sprintf("%s failed with status %d", op, status), err), true
	case status == http.StatusBadRequest, status == http.StatusRequestEntityTooLarge, status == http.StatusUnprocessableEntity:
		return apperrors.NewInvalidInputError(fmt.Sprintf("%s rejected the input (status %d)", op, status), err), false
	case status == http.StatusRequestTimeout:
		return apperrors.NewTimeoutError(op+" timed out upstream", err), true
	default:
		return apperrors.NewUpstreamError(fmt.Sprintf("%s failed with status %d", op, status), err), false
	}
}
