package tool

import (
	"encoding/json"
	"testing"
)

type sampleArgs struct {
	Grievance string `json:"grievance" jsonschema:"description=What went wrong"`
	SessionID string `json:"session_id,omitempty"`
}

func TestArgumentsFromSchema(t *testing.T) {
	args := ArgumentsFromSchema(&sampleArgs{})
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	if args[0].Name != "grievance" || !args[0].Required || args[0].Description != "What went wrong" {
		t.Errorf("unexpected first arg %+v", args[0])
	}
	if args[1].Name != "session_id" || args[1].Required {
		t.Errorf("omitempty field should be optional: %+v", args[1])
	}
}

func TestSchemaJSON(t *testing.T) {
	raw, err := SchemaJSON(&SearchArgs{})
	if err != nil {
		t.Fatalf("SchemaJSON: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc["type"] != "object" {
		t.Errorf("type = %v", doc["type"])
	}
	if _, ok := doc["$schema"]; ok {
		t.Error("$schema should be omitted")
	}
	if _, ok := doc["$ref"]; ok {
		t.Error("schema should be inlined")
	}
}
