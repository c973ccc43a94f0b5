package sample

import (
	"testing"

	"github.com/NVIDIA/bondctl/pkg/header"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     Raw
		want    Sample
		wantOK  bool
	}{
		{
			name:   "valid tuple",
			raw:    Raw{Node: "n1", Bond: "bond0", Interface: "eth0", Metric: "rx_cache_reuse", Value: "42"},
			want:   Sample{Node: "n1", Bond: "bond0", Interface: "eth0", Metric: "rx_cache_reuse", Value: 42},
			wantOK: true,
		},
		{
			name:   "whitespace trimmed",
			raw:    Raw{Node: " n1 ", Bond: "bond0", Interface: "eth0", Metric: "rx_cache_busy", Value: " 7 "},
			want:   Sample{Node: "n1", Bond: "bond0", Interface: "eth0", Metric: "rx_cache_busy", Value: 7},
			wantOK: true,
		},
		{
			name:   "missing node dropped",
			raw:    Raw{Bond: "bond0", Interface: "eth0", Metric: "rx_cache_reuse", Value: "1"},
			wantOK: false,
		},
		{
			name:   "missing bond dropped",
			raw:    Raw{Node: "n1", Interface: "eth0", Metric: "rx_cache_reuse", Value: "1"},
			wantOK: false,
		},
		{
			name:   "missing interface dropped",
			raw:    Raw{Node: "n1", Bond: "bond0", Metric: "rx_cache_reuse", Value: "1"},
			wantOK: false,
		},
		{
			name:   "missing metric dropped",
			raw:    Raw{Node: "n1", Bond: "bond0", Interface: "eth0", Value: "1"},
			wantOK: false,
		},
		{
			name:   "blank-only field dropped",
			raw:    Raw{Node: "n1", Bond: "   ", Interface: "eth0", Metric: "rx_cache_reuse", Value: "1"},
			wantOK: false,
		},
		{
			name:   "unparsable value coerced to zero",
			raw:    Raw{Node: "n1", Bond: "bond0", Interface: "eth0", Metric: "rx_cache_full", Value: "n/a"},
			want:   Sample{Node: "n1", Bond: "bond0", Interface: "eth0", Metric: "rx_cache_full", Value: 0},
			wantOK: true,
		},
		{
			name:   "negative value coerced to zero",
			raw:    Raw{Node: "n1", Bond: "bond0", Interface: "eth0", Metric: "rx_cache_full", Value: "-3"},
			want:   Sample{Node: "n1", Bond: "bond0", Interface: "eth0", Metric: "rx_cache_full", Value: 0},
			wantOK: true,
		},
		{
			name:   "empty value coerced to zero",
			raw:    Raw{Node: "n1", Bond: "bond0", Interface: "eth0", Metric: "rx_cache_full", Value: ""},
			want:   Sample{Node: "n1", Bond: "bond0", Interface: "eth0", Metric: "rx_cache_full", Value: 0},
			wantOK: true,
		},
		{
			name:   "float value coerced to zero",
			raw:    Raw{Node: "n1", Bond: "bond0", Interface: "eth0", Metric: "rx_cache_reuse", Value: "1.5"},
			want:   Sample{Node: "n1", Bond: "bond0", Interface: "eth0", Metric: "rx_cache_reuse", Value: 0},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("Parse() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseBatch(t *testing.T) {
	raws := []Raw{
		{Node: "n1", Bond: "bond0", Interface: "eth0", Metric: "rx_cache_reuse", Value: "1"},
		{Node: "", Bond: "bond0", Interface: "eth0", Metric: "rx_cache_reuse", Value: "1"},
		{Node: "n1", Bond: "bond0", Interface: "eth1", Metric: "rx_cache_reuse", Value: "junk"},
	}

	samples, dropped := ParseBatch(raws)
	if len(samples) != 2 {
		t.Fatalf("expected 2 accepted samples, got %d", len(samples))
	}
	if dropped != 1 {
		t.Errorf("expected 1 dropped tuple, got %d", dropped)
	}
	if samples[1].Value != 0 {
		t.Errorf("expected coerced value 0, got %d", samples[1].Value)
	}
}

func TestNewSet(t *testing.T) {
	set := NewSet("n1", "v1.0.0", nil)

	if set.Kind != header.KindSampleSet {
		t.Errorf("expected kind %s, got %s", header.KindSampleSet, set.Kind)
	}
	if set.APIVersion != APIVersion {
		t.Errorf("unexpected apiVersion: %s", set.APIVersion)
	}
	if set.Metadata["source-node"] != "n1" {
		t.Errorf("expected source-node n1, got %q", set.Metadata["source-node"])
	}
	if set.Samples == nil {
		t.Error("expected non-nil samples slice for empty set")
	}
}
