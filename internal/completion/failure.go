package completion

import (
	"context"
	"errors"
	"net"
	"strings"
)

// FailureClass buckets an error for logging and metrics.
type FailureClass string

const (
	FailureTimeout     FailureClass = "timeout"
	FailureRateLimit   FailureClass = "rate_limit"
	FailureServer      FailureClass = "server"
	FailureClient      FailureClass = "client"
	FailureCanceled    FailureClass = "canceled"
	FailureEmpty       FailureClass = "empty"
	FailureUnsupported FailureClass = "unsupported"
)

func Classify(err error) FailureClass {
	switch {
	case errors.Is(err, ErrEmptyReply):
		return FailureEmpty
	case errors.Is(err, ErrUnsupportedReply):
		return FailureUnsupported
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return FailureTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"):
		return FailureRateLimit
	case strings.Contains(msg, "status code: 5") || strings.Contains(msg, "status=5") || strings.Contains(msg, "server error"):
		return FailureServer
	case strings.Contains(msg, "status code: 4") || strings.Contains(msg, "status=4"):
		return FailureClient
	default:
		return FailureServer
	}
}
