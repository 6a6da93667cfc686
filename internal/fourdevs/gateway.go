// Package fourdevs talks to the 4Devs online generator and resolves free-text
// city names to the provider's city codes.
package fourdevs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/olgasafonova/fourdevs-mcp-server/internal/base"
	apierrors "github.com/olgasafonova/fourdevs-mcp-server/internal/errors"
	"github.com/olgasafonova/fourdevs-mcp-server/metrics"
	"github.com/olgasafonova/fourdevs-mcp-server/tracing"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultEndpoint is the single provider endpoint
	DefaultEndpoint = "https://www.4devs.com.br/ferramentas_online.php"

	// ActionField carries the action discriminator in every request
	ActionField = "acao"

	bodyExcerptLen = 200
)

// Provider actions
const (
	ActionPerson      = "gerar_pessoa"
	ActionLoadCities  = "carregar_cidades"
	ActionCertificate = "gerador_certidao"
	ActionCNH         = "gerar_cnh"
	ActionPIS         = "gerar_pis"
	ActionVoterID     = "gerar_titulo_eleitor"
)

// Params are the action-specific form fields. Nil values are omitted.
type Params map[string]any

// ResponseKind tags which variant of Response is populated.
type ResponseKind int

const (
	KindRawText ResponseKind = iota
	KindStructured
)

func (k ResponseKind) String() string {
	if k == KindStructured {
		return "structured"
	}
	return "raw_text"
}

// Response is the provider reply. Exactly one of Data (KindStructured) or
// Text (KindRawText) is meaningful.
type Response struct {
	Kind       ResponseKind
	Data       json.RawMessage
	Text       string
	StatusCode int
}

// IsStructured reports whether the provider declared a JSON reply.
func (r *Response) IsStructured() bool { return r.Kind == KindStructured }

// IsRawText reports whether the reply is opaque text or HTML.
func (r *Response) IsRawText() bool { return r.Kind == KindRawText }

// IsClientError reports a 4xx status. Such replies are returned as data.
func (r *Response) IsClientError() bool { return r.StatusCode >= 400 && r.StatusCode < 500 }

// Excerpt returns a short, single-line preview of the reply body.
func (r *Response) Excerpt() string {
	body := r.Text
	if r.IsStructured() {
		body = string(r.Data)
	}
	return base.Truncate(strings.Join(strings.Fields(body), " "), bodyExcerptLen)
}

// Sender is the single-call abstraction the resolver and adapters depend on.
type Sender interface {
	Send(ctx context.Context, action string, params Params) (*Response, error)
}

// GatewayConfig holds the fixed base configuration of a Gateway.
type GatewayConfig struct {
	Endpoint  string
	Timeout   time.Duration
	UserAgent string
}

// Gateway is the stateless provider client. Build one at startup and pass it
// to whatever needs it.
type Gateway struct {
	client *base.Client
	cfg    GatewayConfig
	logger *slog.Logger
}

// NewGateway creates a Gateway. Zero config fields fall back to defaults.
func NewGateway(client *base.Client, cfg GatewayConfig, logger *slog.Logger) *Gateway {
	if client == nil {
		client = base.NewClient(base.WithLogger(logger))
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = base.DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{client: client, cfg: cfg, logger: logger}
}

// Endpoint returns the configured provider URL.
func (g *Gateway) Endpoint() string { return g.cfg.Endpoint }

// Send submits action and params as one multipart form and interprets the
// reply by its declared content type.
func (g *Gateway) Send(ctx context.Context, action string, params Params) (*Response, error) {
	if action == "" {
		return nil, apierrors.NewValidationError(ActionField, "", "action is required")
	}

	fields, err := encodeParams(action, params)
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "fourdevs."+action)
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	start := time.Now()
	reply, err := g.client.PostMultipart(callCtx, base.RequestConfig{
		URL:       g.cfg.Endpoint,
		UserAgent: g.cfg.UserAgent,
		Fields:    fields,
	})
	duration := time.Since(start)

	if err != nil {
		terr := &apierrors.TransportError{
			Action:  action,
			Timeout: errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded),
			Err:     err,
		}
		g.fail(span, action, duration, 0, terr)
		return nil, terr
	}

	tracing.AddProviderAttributes(span, action, reply.StatusCode)
	g.logger.Debug("Provider call completed",
		"action", action,
		"status", reply.StatusCode,
		"content_type", reply.ContentType,
		"bytes", len(reply.Body),
		"duration_ms", duration.Milliseconds())

	if reply.StatusCode >= 500 {
		perr := &apierrors.ProviderError{
			Action:     action,
			StatusCode: reply.StatusCode,
			Body:       base.Truncate(strings.TrimSpace(string(reply.Body)), bodyExcerptLen),
		}
		g.fail(span, action, duration, reply.StatusCode, perr)
		return nil, perr
	}

	resp := &Response{StatusCode: reply.StatusCode}
	switch {
	case isJSONContentType(reply.ContentType) && json.Valid(reply.Body):
		resp.Kind = KindStructured
		resp.Data = json.RawMessage(reply.Body)
	case isJSONContentType(reply.ContentType) && !resp.IsClientError():
		cerr := apierrors.NewContractError(action, "declared JSON content but body is not valid JSON")
		g.fail(span, action, duration, reply.StatusCode, cerr)
		return nil, cerr
	default:
		// 4xx bodies stay readable even when mislabelled as JSON
		resp.Kind = KindRawText
		resp.Text = string(reply.Body)
	}

	metrics.RecordAPICall(action, duration.Seconds(), reply.StatusCode, "")
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

func (g *Gateway) fail(span trace.Span, action string, duration time.Duration, status int, err error) {
	kind := apierrors.Kind(err)
	metrics.RecordAPICall(action, duration.Seconds(), status, kind)
	tracing.RecordError(span, err)
	g.logger.Warn("Provider call failed", "action", action, "kind", kind, "error", err)
}

func isJSONContentType(ct string) bool {
	return strings.Contains(strings.ToLower(ct), "application/json")
}

// encodeParams flattens params into form fields, dropping nil values.
func encodeParams(action string, params Params) (map[string]string, error) {
	fields := make(map[string]string, len(params)+1)
	for k, v := range params {
		if k == ActionField {
			continue
		}
		s, ok, err := formatScalar(v)
		if err != nil {
			return nil, apierrors.NewValidationError(k, "", err.Error())
		}
		if ok {
			fields[k] = s
		}
	}
	fields[ActionField] = action
	return fields, nil
}

func formatScalar(v any) (string, bool, error) {
	switch x := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return x, true, nil
	case *string:
		if x == nil {
			return "", false, nil
		}
		return *x, true, nil
	case int:
		return strconv.Itoa(x), true, nil
	case *int:
		if x == nil {
			return "", false, nil
		}
		return strconv.Itoa(*x), true, nil
	case int64:
		return strconv.FormatInt(x, 10), true, nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true, nil
	case bool:
		return strconv.FormatBool(x), true, nil
	case fmt.Stringer:
		return x.String(), true, nil
	}
	return "", false, fmt.Errorf("unsupported parameter type %T", v)
}
