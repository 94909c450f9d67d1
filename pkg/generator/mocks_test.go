package generator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"google.golang.org/genai"
)

// --- Mocks ---

// mockAIClient は ContentGenerator のテスト用モックです。
// 呼び出しは並行に届くため、応答は到着順にキューから取り出します。
type mockAIClient struct {
	calls atomic.Int32

	mu        sync.Mutex
	responses []mockResult
	requests  []mockRequest

	generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type mockResult struct {
	resp *genai.GenerateContentResponse
	err  error
}

type mockRequest struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (m *mockAIClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.calls.Add(1)

	m.mu.Lock()
	m.requests = append(m.requests, mockRequest{model: model, contents: contents, config: config})
	var next *mockResult
	if len(m.responses) > 0 {
		next = &m.responses[0]
		m.responses = m.responses[1:]
	}
	m.mu.Unlock()

	if m.generateFunc != nil {
		return m.generateFunc(ctx, model, contents, config)
	}
	if next == nil {
		return nil, errors.New("unexpected call")
	}
	return next.resp, next.err
}

func (m *mockAIClient) factory() ClientFactory {
	return func(ctx context.Context, apiKey string) (ContentGenerator, error) {
		return m, nil
	}
}

func imageResponse(mimeType string, payloads ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(payloads)+1)
	parts = append(parts, &genai.Part{Text: "here is your image"})
	for _, p := range payloads {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: []byte(p)}})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: genai.RoleModel, Parts: parts},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func textOnlyResponse() *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "I cannot do that"}}},
		}},
	}
}
