package genai

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// mockCompletionService records the params it receives and returns a canned
// completion or error.
type mockCompletionService struct {
	params openai.ChatCompletionNewParams
	resp   *openai.ChatCompletion
	err    error
}

func (m *mockCompletionService) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.params = params
	return m.resp, m.err
}

func completionWith(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestGenerateWithMessages_Success(t *testing.T) {
	mock := &mockCompletionService{resp: completionWith("hello there")}
	client := &Client{chat: mock, model: DefaultModel}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("be brief"),
		openai.UserMessage("hi"),
	}
	got, err := client.GenerateWithMessages(context.Background(), messages)
	if err != nil {
		t.Fatalf("GenerateWithMessages failed: %v", err)
	}
	if got != "hello there" {
		t.Errorf("expected completion text, got %q", got)
	}
	if mock.params.Model != DefaultModel {
		t.Errorf("expected model %s, got %s", DefaultModel, mock.params.Model)
	}
	if len(mock.params.Messages) != 2 {
		t.Errorf("expected 2 messages forwarded, got %d", len(mock.params.Messages))
	}
}

func TestGenerateWithMessages_APIError(t *testing.T) {
	wantErr := errors.New("rate limited")
	client := &Client{chat: &mockCompletionService{err: wantErr}, model: DefaultModel}

	_, err := client.GenerateWithMessages(context.Background(), nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("expected API error passed through, got %v", err)
	}
}

func TestGenerateWithMessages_NoChoices(t *testing.T) {
	client := &Client{chat: &mockCompletionService{resp: &openai.ChatCompletion{}}, model: DefaultModel}

	_, err := client.GenerateWithMessages(context.Background(), nil)
	if !errors.Is(err, ErrNoChoicesReturned) {
		t.Errorf("expected ErrNoChoicesReturned, got %v", err)
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Error("expected error when no API key is configured")
	}
}

func TestNewClient_ModelSelection(t *testing.T) {
	client, err := NewClient(WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.model != DefaultModel {
		t.Errorf("expected default model %s, got %s", DefaultModel, client.model)
	}

	client, err = NewClient(WithAPIKey("test-key"), WithModel("gpt-4o"))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.model != openai.ChatModel("gpt-4o") {
		t.Errorf("expected configured model, got %s", client.model)
	}
}
