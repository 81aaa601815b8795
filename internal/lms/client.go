// Package lms is the single chokepoint between the gateway and the remote
// Moodle web-service API. Every domain proxy routes through Client.Call.
package lms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/campuskit/moodle-gateway/internal/observability"
)

const restEndpoint = "/webservice/rest/server.php"

// RemoteError is raised when the remote responds with an exception or
// errorcode marker, regardless of transport-level status.
type RemoteError struct {
	Function  string
	ErrorCode string
	Message   string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Moodle API error"
}

// TransportError covers unreachable-remote and malformed-response failures.
type TransportError struct {
	Function string
	Message  string
}

func (e *TransportError) Error() string {
	return e.Message
}

// Config holds the static remote connection settings.
type Config struct {
	BaseURL    string
	Token      string
	RestFormat string
	Timeout    time.Duration
}

// Client translates local calls into Moodle web-service requests. It holds
// only immutable configuration and is safe for concurrent reuse.
type Client struct {
	endpoint   string
	token      string
	restFormat string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient constructs the RPC gateway client.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("moodle base url must not be empty")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("moodle ws token must not be empty")
	}

	restFormat := cfg.RestFormat
	if restFormat == "" {
		restFormat = "json"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + restEndpoint,
		token:      cfg.Token,
		restFormat: restFormat,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "lms_client").Logger(),
	}, nil
}

// Params is the flat key/value bag passed to a remote function. Nested
// slices and maps are flattened into Moodle's bracketed form notation
// (courseids[0]=12, options[ids][0]=3).
type Params map[string]interface{}

// Call invokes one remote web-service function. The shared token, the
// function name and the response format selector are always injected.
func (c *Client) Call(ctx context.Context, wsfunction string, params Params) (gjson.Result, error) {
	tracer := otel.Tracer("lms")
	ctx, span := tracer.Start(ctx, "lms.call")
	span.SetAttributes(attribute.String("moodle.wsfunction", wsfunction))
	defer span.End()

	form := url.Values{}
	form.Set("wstoken", c.token)
	form.Set("wsfunction", wsfunction)
	form.Set("moodlewsrestformat", c.restFormat)
	if err := encodeParams(form, "", params); err != nil {
		span.SetStatus(codes.Error, err.Error())
		observability.RemoteCalls().WithLabelValues(wsfunction, "encode_error").Inc()
		return gjson.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		observability.RemoteCalls().WithLabelValues(wsfunction, "request_error").Inc()
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("wsfunction", wsfunction).Msg("no response from Moodle server")
		span.SetStatus(codes.Error, "no response")
		observability.RemoteCalls().WithLabelValues(wsfunction, "no_response").Inc()
		return gjson.Result{}, &TransportError{Function: wsfunction, Message: "No response from Moodle server"}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		observability.RemoteCalls().WithLabelValues(wsfunction, "no_response").Inc()
		return gjson.Result{}, &TransportError{Function: wsfunction, Message: "No response from Moodle server"}
	}

	if !gjson.ValidBytes(body) {
		span.SetStatus(codes.Error, "invalid response body")
		observability.RemoteCalls().WithLabelValues(wsfunction, "bad_payload").Inc()
		return gjson.Result{}, &TransportError{Function: wsfunction, Message: "Moodle API request failed"}
	}

	result := gjson.ParseBytes(body)

	// Moodle reports failures inside the payload; transport status is not
	// authoritative.
	if result.Get("exception").Exists() || result.Get("errorcode").Exists() {
		remoteErr := &RemoteError{
			Function:  wsfunction,
			ErrorCode: result.Get("errorcode").String(),
			Message:   result.Get("message").String(),
		}
		c.logger.Error().
			Str("wsfunction", wsfunction).
			Str("errorcode", remoteErr.ErrorCode).
			Str("message", remoteErr.Message).
			Msg("Moodle API error response")
		span.SetStatus(codes.Error, remoteErr.Error())
		observability.RemoteCalls().WithLabelValues(wsfunction, "remote_error").Inc()
		return gjson.Result{}, remoteErr
	}

	for _, warning := range result.Get("warnings").Array() {
		c.logger.Warn().
			Str("wsfunction", wsfunction).
			Str("warningcode", warning.Get("warningcode").String()).
			Str("message", warning.Get("message").String()).
			Msg("Moodle warning")
	}

	c.logger.Debug().
		Str("wsfunction", wsfunction).
		Dur("duration", time.Since(start)).
		Msg("Moodle API call completed")
	observability.RemoteCalls().WithLabelValues(wsfunction, "ok").Inc()

	return result, nil
}

// encodeParams flattens the parameter bag into bracketed form fields.
func encodeParams(form url.Values, prefix string, value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case Params:
		return encodeMap(form, prefix, map[string]interface{}(v))
	case map[string]interface{}:
		return encodeMap(form, prefix, v)
	case []interface{}:
		for i, item := range v {
			if err := encodeParams(form, fmt.Sprintf("%s[%d]", prefix, i), item); err != nil {
				return err
			}
		}
		return nil
	case []uint:
		for i, item := range v {
			form.Set(fmt.Sprintf("%s[%d]", prefix, i), strconv.FormatUint(uint64(item), 10))
		}
		return nil
	case []int:
		for i, item := range v {
			form.Set(fmt.Sprintf("%s[%d]", prefix, i), strconv.Itoa(item))
		}
		return nil
	case []string:
		for i, item := range v {
			form.Set(fmt.Sprintf("%s[%d]", prefix, i), item)
		}
		return nil
	case string:
		form.Set(prefix, v)
		return nil
	case bool:
		if v {
			form.Set(prefix, "1")
		} else {
			form.Set(prefix, "0")
		}
		return nil
	case int:
		form.Set(prefix, strconv.Itoa(v))
		return nil
	case int64:
		form.Set(prefix, strconv.FormatInt(v, 10))
		return nil
	case uint:
		form.Set(prefix, strconv.FormatUint(uint64(v), 10))
		return nil
	case float64:
		form.Set(prefix, strconv.FormatFloat(v, 'f', -1, 64))
		return nil
	default:
		return fmt.Errorf("unsupported parameter type %T for %q", value, prefix)
	}
}

func encodeMap(form url.Values, prefix string, value map[string]interface{}) error {
	keys := make([]string, 0, len(value))
	for key := range value {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		field := key
		if prefix != "" {
			field = fmt.Sprintf("%s[%s]", prefix, key)
		}
		if err := encodeParams(form, field, value[key]); err != nil {
			return err
		}
	}
	return nil
}

// decodeAt unmarshals the value found at path into out. An empty path
// decodes the whole payload; a missing path leaves out untouched so callers
// fall back to empty collections.
func decodeAt(result gjson.Result, path string, out interface{}) error {
	target := result
	if path != "" {
		target = result.Get(path)
		if !target.Exists() {
			return nil
		}
	}

	return json.Unmarshal([]byte(target.Raw), out)
}

// rawOrEmptyArray returns the raw JSON found at path, defaulting to an
// empty array when the remote envelope omits it.
func rawOrEmptyArray(result gjson.Result, path string) json.RawMessage {
	target := result
	if path != "" {
		target = result.Get(path)
	}
	if !target.Exists() {
		return json.RawMessage("[]")
	}

	return json.RawMessage(target.Raw)
}

// rawOrNull returns the raw JSON found at path, defaulting to JSON null
// when the remote envelope omits it.
func rawOrNull(result gjson.Result, path string) json.RawMessage {
	target := result
	if path != "" {
		target = result.Get(path)
	}
	if !target.Exists() {
		return json.RawMessage("null")
	}

	return json.RawMessage(target.Raw)
}
