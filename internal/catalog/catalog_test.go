package catalog

import "testing"

func TestLookup(t *testing.T) {
	tool, ok := Lookup("content_writer")
	if !ok {
		t.Fatal("expected content_writer in the catalog")
	}
	if tool.Foundation || !tool.Execution {
		t.Errorf("content_writer should be an execution tool, got %+v", tool)
	}

	if _, ok := Lookup("no_such_tool"); ok {
		t.Error("unknown id must not resolve")
	}
	if _, ok := Lookup(""); ok {
		t.Error("empty id must not resolve")
	}
}

func TestIsFoundation(t *testing.T) {
	for _, id := range []string{"website_audit", "visibility_audit", "brand_kit"} {
		if !IsFoundation(id) {
			t.Errorf("%s should be a foundation tool", id)
		}
	}
	if IsFoundation("review_responder") {
		t.Error("review_responder is an execution tool")
	}
	if IsFoundation("unknown") {
		t.Error("unknown ids are not foundation tools")
	}
}

func TestExecutionTools_OrderAndIsolation(t *testing.T) {
	first := ExecutionTools()
	want := []string{"content_writer", "social_posts", "ad_designer", "review_responder", "email_campaigns"}
	if len(first) != len(want) {
		t.Fatalf("expected %d execution tools, got %d", len(want), len(first))
	}
	for i, tool := range first {
		if tool.ID != want[i] {
			t.Errorf("execution tool %d: want %s, got %s", i, want[i], tool.ID)
		}
		if tool.Foundation {
			t.Errorf("%s must not be a foundation tool", tool.ID)
		}
	}

	// Callers may reorder their slice without affecting the catalog.
	first[0], first[1] = first[1], first[0]
	second := ExecutionTools()
	if second[0].ID != want[0] {
		t.Error("ExecutionTools must return an independent slice")
	}
}

func TestAll_ContainsEveryTool(t *testing.T) {
	all := All()
	if len(all) != 8 {
		t.Errorf("expected 8 catalog tools, got %d", len(all))
	}
	for _, tool := range all {
		if tool.Foundation == tool.Execution {
			t.Errorf("%s must be exactly one of foundation or execution", tool.ID)
		}
	}
}
