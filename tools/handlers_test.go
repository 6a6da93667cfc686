package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/olgasafonova/fourdevs-mcp-server/internal/fourdevs"
	"github.com/olgasafonova/fourdevs-mcp-server/internal/generators"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// stubSender answers every action with the same reply.
type stubSender struct {
	resp  *fourdevs.Response
	calls atomic.Int32
	panic bool
}

func (s *stubSender) Send(_ context.Context, _ string, _ fourdevs.Params) (*fourdevs.Response, error) {
	s.calls.Add(1)
	if s.panic {
		panic("provider exploded")
	}
	return s.resp, nil
}

func newTestRegistry(sender fourdevs.Sender) *HandlerRegistry {
	logger := quietLogger()
	return NewHandlerRegistry(generators.NewService(sender, logger), logger)
}

// connect registers every tool on a fresh server and returns a client
// session talking to it over in-memory transports.
func connect(t *testing.T, sender fourdevs.Sender) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "test-server", Version: "test"}, nil)
	newTestRegistry(sender).RegisterAll(server)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func TestNewHandlerRegistry(t *testing.T) {
	logger := quietLogger()
	service := generators.NewService(&stubSender{}, logger)

	registry := NewHandlerRegistry(service, logger)

	if registry == nil {
		t.Fatal("Expected non-nil registry")
	}
	if registry.service != service {
		t.Error("Registry should hold the service reference")
	}
	if registry.logger != logger {
		t.Error("Registry should hold the logger reference")
	}
}

func TestBuildTool(t *testing.T) {
	registry := newTestRegistry(&stubSender{})

	tests := []struct {
		name      string
		spec      ToolSpec
		wantRO    bool
		wantIdem  bool
		wantDestr bool
		wantOpen  bool
	}{
		{
			name: "read-only idempotent tool",
			spec: ToolSpec{
				Name:        "carregar_cidades",
				Title:       "List Cities",
				Description: "List cities",
				Method:      "LoadCities",
				ReadOnly:    true,
				Idempotent:  true,
			},
			wantRO:   true,
			wantIdem: true,
		},
		{
			name: "open world tool",
			spec: ToolSpec{
				Name:        "gerar_cnh",
				Title:       "Generate CNH",
				Description: "Generate a CNH number",
				Method:      "GenerateCNH",
				OpenWorld:   true,
			},
			wantOpen: true,
		},
		{
			name: "destructive tool",
			spec: ToolSpec{
				Name:        "drop",
				Description: "drop",
				Destructive: true,
			},
			wantDestr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := registry.buildTool(tt.spec)

			if tool.Name != tt.spec.Name {
				t.Errorf("Name = %q, want %q", tool.Name, tt.spec.Name)
			}
			if tool.Description != tt.spec.Description {
				t.Errorf("Description = %q, want %q", tool.Description, tt.spec.Description)
			}
			if tool.Annotations == nil {
				t.Fatal("Expected annotations")
			}
			if tool.Annotations.ReadOnlyHint != tt.wantRO {
				t.Errorf("ReadOnlyHint = %v, want %v", tool.Annotations.ReadOnlyHint, tt.wantRO)
			}
			if tool.Annotations.IdempotentHint != tt.wantIdem {
				t.Errorf("IdempotentHint = %v, want %v", tool.Annotations.IdempotentHint, tt.wantIdem)
			}
			if tt.wantDestr != (tool.Annotations.DestructiveHint != nil && *tool.Annotations.DestructiveHint) {
				t.Errorf("DestructiveHint mismatch, want %v", tt.wantDestr)
			}
			if tt.wantOpen != (tool.Annotations.OpenWorldHint != nil && *tool.Annotations.OpenWorldHint) {
				t.Errorf("OpenWorldHint mismatch, want %v", tt.wantOpen)
			}
		})
	}
}

func TestRecoverPanic(t *testing.T) {
	registry := newTestRegistry(&stubSender{})
	spec, _ := FindTool("gerar_cnh")

	var res *mcp.CallToolResult
	var out any = "partial"
	func() {
		defer registry.recoverPanic(spec, "call-1", &res, &out)
		panic("test panic")
	}()

	if res == nil || !res.IsError {
		t.Fatalf("expected error result, got %+v", res)
	}
	if out != nil {
		t.Errorf("expected nil output after panic, got %v", out)
	}
	if !strings.Contains(resultText(t, res), `"cnh-generator"`) {
		t.Errorf("envelope should carry the tool context: %s", resultText(t, res))
	}
}

func TestAllToolsComplete(t *testing.T) {
	if len(AllTools) != 6 {
		t.Fatalf("expected 6 tools, got %d", len(AllTools))
	}

	seen := map[string]bool{}
	for i, spec := range AllTools {
		if spec.Name == "" {
			t.Errorf("Tool %d has empty Name", i)
		}
		if seen[spec.Name] {
			t.Errorf("Tool %s is declared twice", spec.Name)
		}
		seen[spec.Name] = true
		if spec.Method == "" {
			t.Errorf("Tool %s has empty Method", spec.Name)
		}
		if spec.ErrorContext == "" {
			t.Errorf("Tool %s has empty ErrorContext", spec.Name)
		}
		if !strings.Contains(spec.Description, "USE WHEN:") || !strings.Contains(spec.Description, "RETURNS:") {
			t.Errorf("Tool %s description misses USE WHEN/RETURNS sections", spec.Name)
		}
		if !spec.OpenWorld {
			t.Errorf("Tool %s calls the provider and should be open world", spec.Name)
		}
	}
}

func TestToolsByCategory(t *testing.T) {
	for category, want := range map[string]int{"person": 1, "location": 1, "document": 4, "unknown": 0} {
		got := ToolsByCategory(category)
		if len(got) != want {
			t.Errorf("ToolsByCategory(%q) returned %d tools, want %d", category, len(got), want)
		}
		for _, spec := range got {
			if spec.Category != category {
				t.Errorf("Tool %s has category %s, expected %s", spec.Name, spec.Category, category)
			}
		}
	}
}

func TestListTools(t *testing.T) {
	session := connect(t, &stubSender{})

	res, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(res.Tools) != len(AllTools) {
		t.Fatalf("listed %d tools, want %d", len(res.Tools), len(AllTools))
	}
	for _, tool := range res.Tools {
		if _, ok := FindTool(tool.Name); !ok {
			t.Errorf("unexpected tool %q", tool.Name)
		}
		if tool.InputSchema == nil {
			t.Errorf("tool %q has no input schema", tool.Name)
		}
	}
}

func TestCallTool_Success(t *testing.T) {
	sender := &stubSender{resp: &fourdevs.Response{Kind: fourdevs.KindRawText, Text: "12345678901\n", StatusCode: 200}}
	session := connect(t, sender)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "gerar_pis",
		Arguments: map[string]any{"pontuacao": "N"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}

	message, body, ok := strings.Cut(resultText(t, res), "\n\n")
	if !ok {
		t.Fatal("expected message and JSON body separated by a blank line")
	}
	if message != "Successfully generated Brazilian PIS (social security) number" {
		t.Errorf("message = %q", message)
	}

	var result generators.PISResult
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if result.PISNumber != "12345678901" {
		t.Errorf("PISNumber = %q", result.PISNumber)
	}
	if res.StructuredContent == nil {
		t.Error("expected structured content")
	}
}

func TestCallTool_ValidationEnvelope(t *testing.T) {
	sender := &stubSender{}
	session := connect(t, sender)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "gerar_pessoa",
		Arguments: map[string]any{
			"cep_estado":  "SC",
			"cep_cidade":  8452,
			"cidade_nome": "Florianópolis",
		},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected an error result")
	}
	if sender.calls.Load() != 0 {
		t.Errorf("provider called %d times, want 0", sender.calls.Load())
	}

	var env generators.ErrorEnvelope
	if err := json.Unmarshal([]byte(resultText(t, res)), &env); err != nil {
		t.Fatalf("envelope is not JSON: %v", err)
	}
	if !env.Error || env.Kind != "invalid_input" || env.Context != "person-generator" {
		t.Errorf("unexpected envelope: %+v", env)
	}
	if env.Timestamp == "" {
		t.Error("envelope should carry a timestamp")
	}
}

func TestCallTool_PanicBecomesEnvelope(t *testing.T) {
	session := connect(t, &stubSender{panic: true})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "gerar_cnh",
		Arguments: map[string]any{},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected an error result")
	}

	var env generators.ErrorEnvelope
	if err := json.Unmarshal([]byte(resultText(t, res)), &env); err != nil {
		t.Fatalf("envelope is not JSON: %v", err)
	}
	if env.Kind != "internal_error" || env.Context != "cnh-generator" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestArgAttrs(t *testing.T) {
	qty := 3
	attrs := argAttrs(generators.PersonArgs{CepEstado: "SC", TxtQtde: &qty, CidadeNome: "Blumenau"})

	joined := map[string]any{}
	for i := 0; i+1 < len(attrs); i += 2 {
		joined[attrs[i].(string)] = attrs[i+1]
	}
	if joined["cep_estado"] != "SC" || joined["txt_qtde"] != 3 || joined["cidade_nome"] != "Blumenau" {
		t.Errorf("unexpected attrs: %v", joined)
	}
	if len(argAttrs(generators.CNHArgs{})) != 0 {
		t.Error("CNH args have nothing to log")
	}
}
