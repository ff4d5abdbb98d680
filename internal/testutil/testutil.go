// Package testutil provides common test utilities and helpers for growth coach tests.
package testutil

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"
)

// MockAssistantClient implements genai.ClientInterface for tests. It records
// the message lists it receives and returns canned replies or an error.
type MockAssistantClient struct {
	Reply    string
	Err      error
	Requests [][]openai.ChatCompletionMessageParamUnion
}

// GenerateWithMessages implements genai.ClientInterface.
func (m *MockAssistantClient) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	m.Requests = append(m.Requests, messages)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t *testing.T, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

// AssertJSONResponse decodes a JSON response body and validates the status field.
func AssertJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus string) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	if status, _ := response["status"].(string); status != expectedStatus {
		t.Errorf("expected response status %q, got %q", expectedStatus, response["status"])
	}
	return response
}
