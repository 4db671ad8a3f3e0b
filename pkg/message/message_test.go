package message

import (
	"testing"
)

func TestChannel_Copy(t *testing.T) {
	original := Channel{
		Topic:           "pose",
		Schema:          &Schema{Name: "Pose", Encoding: EncodingJSONSchema, Data: []byte(`{}`)},
		MessageEncoding: EncodingJSON,
		Metadata:        map[string]string{"frame": "map"},
	}

	copied := original.Copy()

	if copied.Topic != original.Topic {
		t.Errorf("Expected topic %s, got %s", original.Topic, copied.Topic)
	}
	if copied.Schema == original.Schema {
		t.Error("Copy should not share the schema pointer")
	}

	// Mutating the copy must not reach the original
	copied.Schema.Data[0] = 'X'
	copied.Metadata["frame"] = "odom"

	if string(original.Schema.Data) != "{}" {
		t.Errorf("Original schema data should be unchanged, got %s", original.Schema.Data)
	}
	if original.Metadata["frame"] != "map" {
		t.Errorf("Original metadata should be unchanged, got %s", original.Metadata["frame"])
	}
}

func TestChannel_CopySchemaless(t *testing.T) {
	copied := Channel{Topic: "raw", MessageEncoding: "cdr"}.Copy()

	if copied.Schema != nil {
		t.Error("Expected schemaless copy")
	}
	if copied.Metadata == nil {
		t.Error("Expected metadata to be initialized")
	}
}

func TestCopyMetadata_Empty(t *testing.T) {
	if got := copyMetadata(nil); got != nil {
		t.Errorf("Expected nil for nil metadata, got %v", got)
	}
	if got := copyMetadata(map[string]string{}); got != nil {
		t.Errorf("Expected nil for empty metadata, got %v", got)
	}
}
