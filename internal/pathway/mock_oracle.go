package pathway

import (
	"context"
)

// MockOracle is a canned-response oracle for tests.
type MockOracle struct {
	Response string
	Err      error
	Prompts  []string
}

func (m *MockOracle) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
