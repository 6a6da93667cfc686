package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apierrors "github.com/olgasafonova/fourdevs-mcp-server/internal/errors"
	"github.com/olgasafonova/fourdevs-mcp-server/internal/generators"
	"github.com/olgasafonova/fourdevs-mcp-server/metrics"
	"github.com/olgasafonova/fourdevs-mcp-server/tracing"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	service *generators.Service
	logger  *slog.Logger
	now     func() time.Time
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(service *generators.Service, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		service: service,
		logger:  logger,
		now:     time.Now,
	}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	for _, spec := range AllTools {
		h.registerByName(server, spec)
	}
	h.logger.Info("Registered all tools", "count", len(AllTools))
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) {
	tool := h.buildTool(spec)

	switch spec.Method {
	case "GeneratePerson":
		register(h, server, tool, spec, h.service.GeneratePerson)
	case "LoadCities":
		register(h, server, tool, spec, h.service.LoadCities)
	case "GenerateCertificate":
		register(h, server, tool, spec, h.service.GenerateCertificate)
	case "GenerateCNH":
		register(h, server, tool, spec, h.service.GenerateCNH)
	case "GeneratePIS":
		register(h, server, tool, spec, h.service.GeneratePIS)
	case "GenerateVoterID":
		register(h, server, tool, spec, h.service.GenerateVoterID)
	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
	}
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the service method with panic recovery, metrics, tracing and
// logging, and renders both outcomes as tool results: failures become an
// error envelope with isError set, never a protocol error.
func register[Args any, Result generators.Summarizer](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (res *mcp.CallToolResult, out any, err error) {
		callID := uuid.NewString()
		defer h.recoverPanic(spec, callID, &res, &out)

		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		tracing.AddToolAttributes(span, spec.Name, spec.Category)
		span.SetAttributes(
			attribute.String("mcp.tool.call_id", callID),
			attribute.Bool("mcp.tool.readonly", spec.ReadOnly),
		)

		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		result, err := method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if err != nil {
			tracing.RecordError(span, err)
			metrics.RecordRequest(spec.Name, duration, false)
			return h.failure(spec, callID, args, err), nil, nil
		}

		text, err := generators.FormatSuccess(result.Summary(), result)
		if err != nil {
			tracing.RecordError(span, err)
			metrics.RecordRequest(spec.Name, duration, false)
			return h.failure(spec, callID, args, fmt.Errorf("encode %s result: %w", spec.Name, err)), nil, nil
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, callID, args, result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, result, nil
	})
}

// failure logs err and renders its error envelope.
func (h *HandlerRegistry) failure(spec ToolSpec, callID string, args any, err error) *mcp.CallToolResult {
	kind := apierrors.Kind(err)
	metrics.RecordToolError(spec.Name, kind)

	attrs := append([]any{"tool", spec.Name, "call_id", callID, "kind", kind, "error", err}, argAttrs(args)...)
	if kind == "internal_error" {
		h.logger.Error("Tool failed", attrs...)
	} else {
		h.logger.Warn("Tool failed", attrs...)
	}
	return h.errorResult(spec, err)
}

func (h *HandlerRegistry) errorResult(spec ToolSpec, err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: generators.FormatError(err, spec.ErrorContext, h.now())}},
	}
}

// recoverPanic recovers from panics in tool handlers and replaces the
// result with an internal error envelope.
func (h *HandlerRegistry) recoverPanic(spec ToolSpec, callID string, res **mcp.CallToolResult, out *any) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(spec.Name).Inc()
		metrics.RecordToolError(spec.Name, "internal_error")
		h.logger.Error("Panic recovered",
			"tool", spec.Name,
			"call_id", callID,
			"panic", rec,
			"stack", string(debug.Stack()))
		*res = h.errorResult(spec, fmt.Errorf("internal error in %s: %v", spec.Name, rec))
		*out = nil
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, callID string, args, result any) {
	attrs := append([]any{"tool", spec.Name, "call_id", callID}, argAttrs(args)...)

	switch r := result.(type) {
	case generators.PersonResult:
		attrs = append(attrs, "count", r.Count)
		if r.City != nil {
			attrs = append(attrs, "city_id", r.City.CityID, "city_name", r.City.CityName, "exact_match", r.City.ExactMatch)
		}
	case generators.LoadCitiesResult:
		attrs = append(attrs, "total_cities", r.TotalCities)
	case generators.CertificateResult:
		attrs = append(attrs, "certificate_type", r.CertificateType)
	case generators.VoterIDResult:
		attrs = append(attrs, "state", r.State)
	}

	h.logger.Info("Tool executed", attrs...)
}

// argAttrs extracts loggable fields from tool arguments.
func argAttrs(args any) []any {
	var attrs []any
	switch a := args.(type) {
	case generators.PersonArgs:
		attrs = append(attrs, "sexo", a.Sexo, "cep_estado", a.CepEstado)
		if a.TxtQtde != nil {
			attrs = append(attrs, "txt_qtde", *a.TxtQtde)
		}
		if a.CepCidade != nil {
			attrs = append(attrs, "cep_cidade", *a.CepCidade)
		}
		if a.CidadeNome != "" {
			attrs = append(attrs, "cidade_nome", a.CidadeNome)
		}
	case generators.LoadCitiesArgs:
		attrs = append(attrs, "cep_estado", a.CepEstado)
	case generators.CertificateArgs:
		attrs = append(attrs, "tipo_certidao", a.TipoCertidao, "pontuacao", a.Pontuacao)
	case generators.PISArgs:
		attrs = append(attrs, "pontuacao", a.Pontuacao)
	case generators.VoterIDArgs:
		attrs = append(attrs, "estado", a.Estado)
	case generators.CNHArgs:
		// No args to log
	}
	return attrs
}
