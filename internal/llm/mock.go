package llm

import "context"

// MockClient permite tests sin llamar a la API real.
type MockClient struct {
	Response string
	Err      error
}

func (m *MockClient) Reply(ctx context.Context, message string) (string, error) {
	return m.Response, m.Err
}
