package header

import (
	"testing"
	"time"
)

func TestInit(t *testing.T) {
	var h Header
	h.Init(KindSampleSet, "bondctl.nvidia.com/v1alpha1", "v1.0.0")

	if h.Kind != KindSampleSet {
		t.Errorf("expected kind %s, got %s", KindSampleSet, h.Kind)
	}
	if h.APIVersion != "bondctl.nvidia.com/v1alpha1" {
		t.Errorf("unexpected apiVersion: %s", h.APIVersion)
	}
	if h.Metadata["version"] != "v1.0.0" {
		t.Errorf("expected version metadata, got %q", h.Metadata["version"])
	}
	if _, err := time.Parse(time.RFC3339, h.Metadata["timestamp"]); err != nil {
		t.Errorf("timestamp not RFC3339: %v", err)
	}
}

func TestInitWithoutVersion(t *testing.T) {
	var h Header
	h.Init(KindSampleSet, "bondctl.nvidia.com/v1alpha1", "")

	if _, ok := h.Metadata["version"]; ok {
		t.Error("expected no version metadata for empty version")
	}
}

func TestKindIsValid(t *testing.T) {
	if !KindSampleSet.IsValid() {
		t.Error("SampleSet should be valid")
	}
	if Kind("Bogus").IsValid() {
		t.Error("unknown kind should be invalid")
	}
}

func TestAccessors(t *testing.T) {
	var h Header
	if h.GetMetadata() == nil {
		t.Error("GetMetadata should never return nil")
	}

	h.Init(KindSampleSet, "bondctl.nvidia.com/v1alpha1", "")
	if h.GetKind() != KindSampleSet {
		t.Errorf("unexpected kind: %s", h.GetKind())
	}
	if h.GetMetadata()["timestamp"] == "" {
		t.Error("expected timestamp in metadata")
	}
}

func TestSetMetadata(t *testing.T) {
	var h Header
	h.SetMetadata("source-node", "n1")
	if h.Metadata["source-node"] != "n1" {
		t.Errorf("expected source-node n1, got %q", h.Metadata["source-node"])
	}
}
