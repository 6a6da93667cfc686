package generators

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/olgasafonova/fourdevs-mcp-server/internal/fourdevs"
)

// scriptedSender answers each action from a table and records every call.
type scriptedSender struct {
	mu      sync.Mutex
	calls   []sentCall
	replies map[string]*fourdevs.Response
	err     error
}

type sentCall struct {
	Action string
	Params fourdevs.Params
}

func newScriptedSender() *scriptedSender {
	return &scriptedSender{replies: map[string]*fourdevs.Response{}}
}

func (s *scriptedSender) on(action string, resp *fourdevs.Response) *scriptedSender {
	s.replies[action] = resp
	return s
}

func (s *scriptedSender) Send(_ context.Context, action string, params fourdevs.Params) (*fourdevs.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sentCall{Action: action, Params: params})
	if s.err != nil {
		return nil, s.err
	}
	if resp, ok := s.replies[action]; ok {
		return resp, nil
	}
	return &fourdevs.Response{Kind: fourdevs.KindRawText, StatusCode: 200}, nil
}

func (s *scriptedSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *scriptedSender) call(i int) sentCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[i]
}

func text(body string) *fourdevs.Response {
	return &fourdevs.Response{Kind: fourdevs.KindRawText, Text: body, StatusCode: 200}
}

func structured(body string) *fourdevs.Response {
	return &fourdevs.Response{Kind: fourdevs.KindStructured, Data: json.RawMessage(body), StatusCode: 200}
}

const scCities = `<option value="">Selecione</option>` +
	`<option value="8452">Florianópolis</option>` +
	`<option value="8453">Joinville</option>` +
	`<option value="8454">Blumenau</option>` +
	`<option value="8455">São José</option>` +
	`<option value="8456">São José do Cedro</option>`

const onePerson = `[{"nome":"Ana Souza","idade":34,"cpf":"123.456.789-09","cep":"88010000","numero":1234,"cidade":"Florianópolis","estado":"SC","peso":62,"altura":"1,65"}]`

func intPtr(n int) *int { return &n }
