package fourdevs

import (
	"context"
	"sync"
)

// fakeSender records calls and replays a canned response.
type fakeSender struct {
	mu    sync.Mutex
	calls []fakeCall
	resp  *Response
	err   error
}

type fakeCall struct {
	Action string
	Params Params
}

func (f *fakeSender) Send(_ context.Context, action string, params Params) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{Action: action, Params: params})
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func htmlCatalog(entries ...CityEntry) *Response {
	markup := `<option value="">Selecione</option>`
	for _, e := range entries {
		markup += `<option value="` + e.Code + `">` + e.Name + `</option>`
	}
	return &Response{Kind: KindRawText, Text: markup, StatusCode: 200}
}
