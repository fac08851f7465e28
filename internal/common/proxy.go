package common

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	OK                     int = 200
	BAD_REQUEST            int = 400
	UNAUTHORIZED           int = 401
	FORBIDDEN              int = 403
	DATA_NOT_FOUND         int = 404
	METHOD_NOT_ALLOWED     int = 405
	UNSUPPORTED_MEDIA_TYPE int = 415
	RATE_LIMIT_EXCEEDED    int = 429
	INTERNAL_SERVER_ERROR  int = 500
	BAD_GATEWAY            int = 502
	SERVICE_UNAVAILABLE    int = 503
	GATEWAY_TIMEOUT        int = 504
)

var messages = map[int]string{
	OK:                     "OK",
	BAD_REQUEST:            "Bad request",
	UNAUTHORIZED:           "Unauthorized",
	FORBIDDEN:              "Forbidden",
	DATA_NOT_FOUND:         "Data not found",
	METHOD_NOT_ALLOWED:     "Method not allowed",
	UNSUPPORTED_MEDIA_TYPE: "Unsupported media type",
	RATE_LIMIT_EXCEEDED:    "Rate limit exceeded",
	INTERNAL_SERVER_ERROR:  "Internal server error",
	BAD_GATEWAY:            "Bad gateway",
	SERVICE_UNAVAILABLE:    "Service unavailable",
	GATEWAY_TIMEOUT:        "Gateway timeout",
}

// StatusError is returned when the provider answers with a status
// the proxy does not resolve by itself (not 200, 404 or 429)
type StatusError struct {
	Api  string
	Code int
}

func (e *StatusError) Error() string {
	message, ok := messages[e.Code]
	if !ok {
		message = "Unknown status"
	}
	return fmt.Sprintf("%s answered %d (%s)", e.Api, e.Code, message)
}

// The proxy performs a single GET request against the provider on behalf
// of the caller, going through the shared rate limiter first.
// A nil body together with a nil error means the provider affirmatively
// answered that the entity does not exist (404), which callers must
// treat as a valid negative result, never as a failure.
// Rate limit answers (429) are resolved internally: the server-provided
// delay is imposed on the shared limiter and the request is re-issued,
// without consuming the transport retry budget. A provider that keeps
// answering 429 is given up on after maxRateLimitRetries.
// Transport failures are retried with exponential backoff up to the
// configured number of attempts
type Proxy struct {
	header      map[string]string
	client      http.Client
	rateLimiter *RateLimiter
	maxAttempts int
	retryAfter  time.Duration // Fallback delay when a 429 carries no Retry-After header
	sleep       func(time.Duration)
}

func CreateProxy(header map[string]string, restrictions []Restriction, timeout time.Duration, maxAttempts int, retryAfter time.Duration) Proxy {
	return Proxy{
		header:      header,
		client:      http.Client{Timeout: timeout},
		rateLimiter: CreateRateLimiter(restrictions),
		maxAttempts: maxAttempts,
		retryAfter:  retryAfter,
		sleep:       time.Sleep,
	}
}

// A request answered 429 this many times is hopeless,
// whatever the cooldowns the server asked for
const maxRateLimitRetries = 10

// Make a GET request to the provided url.
// The api name is only used to label errors and log lines
func (proxy *Proxy) Get(ctx context.Context, api string, url string) ([]byte, error) {

	attempt := 0
	rateLimited := 0
	for {
		// Ask the shared rate limiter for permission.
		// This is where server-imposed cooldowns are honoured
		if err := proxy.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: could not create request for url %s: %w", api, url, err)
		}
		for key, value := range proxy.header {
			request.Header.Set(key, value)
		}

		log.Debug().Msg(fmt.Sprintf("Requesting to url %s", url))
		response, err := proxy.client.Do(request)
		if err != nil {
			attempt++
			if attempt >= proxy.maxAttempts {
				return nil, fmt.Errorf("%s: giving up after %d attempts: %w", api, attempt, err)
			}
			delay := backoffDelay(attempt)
			log.Warn().Msg(fmt.Sprintf("%s: attempt %d failed (%s), retrying in %.0f seconds", api, attempt, err, delay.Seconds()))
			proxy.sleep(delay)
			continue
		}

		if message, ok := messages[response.StatusCode]; ok {
			log.Debug().Msg(fmt.Sprintf("%d %s", response.StatusCode, message))
		}

		switch response.StatusCode {
		case OK:
			data, err := io.ReadAll(response.Body)
			response.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("%s: could not read the response for url %s: %w", api, url, err)
			}
			return data, nil
		case DATA_NOT_FOUND:
			response.Body.Close()
			return nil, nil
		case RATE_LIMIT_EXCEEDED:
			// The server tells us when to come back, so this does not
			// count against the transport retry budget, but it is not
			// allowed to delay us forever either
			response.Body.Close()
			rateLimited++
			if rateLimited > maxRateLimitRetries {
				return nil, &StatusError{Api: api, Code: RATE_LIMIT_EXCEEDED}
			}
			delay := retryAfterDelay(response.Header, proxy.retryAfter)
			log.Warn().Msg(fmt.Sprintf("%s: rate limited, cooling down %.0f seconds", api, delay.Seconds()))
			proxy.rateLimiter.Cooldown(delay)
			continue
		default:
			response.Body.Close()
			return nil, &StatusError{Api: api, Code: response.StatusCode}
		}
	}
}

// Exponential backoff after the given number of failed attempts
func backoffDelay(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1))*time.Second + time.Second
}

// Read the delay the server asks for on a 429.
// Fall back to the configured default if the header is missing or broken
func retryAfterDelay(header http.Header, fallback time.Duration) time.Duration {
	seconds, err := strconv.Atoi(header.Get("Retry-After"))
	if err != nil || seconds < 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
