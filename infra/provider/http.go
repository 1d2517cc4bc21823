package provider

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/amirasaad/bank/pkg/domain"
	"github.com/amirasaad/bank/pkg/provider"
)

// NewHTTPClient builds a client bounded by connect and read (response header) timeouts.
func NewHTTPClient(connectTimeout, readTimeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: connectTimeout}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   connectTimeout,
			ResponseHeaderTimeout: readTimeout,
			MaxIdleConnsPerHost:   8,
		},
		Timeout: connectTimeout + readTimeout,
	}
}

// transportError maps a failed round trip onto the gateway errors.
func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.Error{
			Kind:    provider.ErrTimeout.Kind,
			Code:    provider.ErrTimeout.Code,
			Message: provider.ErrTimeout.Message,
			Err:     err,
		}
	}
	return &domain.Error{
		Kind:    provider.ErrExternalService.Kind,
		Code:    provider.ErrExternalService.Code,
		Message: "External service unavailable",
		Err:     err,
	}
}

// statusError maps an unexpected upstream status to ExternalServiceError.
func statusError(code int) error {
	return domain.Wrapf(provider.ErrExternalService, "Status code: %d [%s]", code, http.StatusText(code))
}
