package store

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/NVIDIA/bondctl/pkg/sample"
)

func smp(node, bond, iface, metric string, value uint64) sample.Sample {
	return sample.Sample{Node: node, Bond: bond, Interface: iface, Metric: metric, Value: value}
}

func TestInsertAndLookup(t *testing.T) {
	s := New()
	s.Insert(smp("n1", "bond0", "eth0", "rx_cache_reuse", 99))
	s.Insert(smp("n1", "bond0", "eth1", "rx_cache_reuse", 1))
	s.Insert(smp("n1", "bond1", "eth2", "rx_cache_busy", 7))
	s.Insert(smp("n2", "bond0", "eth0", "rx_cache_full", 3))

	if got := s.Nodes(); !reflect.DeepEqual(got, []string{"n1", "n2"}) {
		t.Errorf("Nodes() = %v", got)
	}
	if got := s.Bonds("n1"); !reflect.DeepEqual(got, []string{"bond0", "bond1"}) {
		t.Errorf("Bonds(n1) = %v", got)
	}
	if got := s.Interfaces("n1", "bond0"); !reflect.DeepEqual(got, []string{"eth0", "eth1"}) {
		t.Errorf("Interfaces(n1, bond0) = %v", got)
	}

	v, ok := s.Value("n1", "bond0", "eth0", "rx_cache_reuse")
	if !ok || v != 99 {
		t.Errorf("Value() = %d, %v; want 99, true", v, ok)
	}
	if _, ok := s.Value("n1", "bond0", "eth0", "rx_cache_busy"); ok {
		t.Error("expected missing metric lookup to report absence")
	}
}

func TestInsertLastWriteWins(t *testing.T) {
	s := New()
	s.Insert(smp("n1", "bond0", "eth0", "rx_cache_reuse", 10))
	s.Insert(smp("n1", "bond0", "eth0", "rx_cache_reuse", 20))

	v, _ := s.Value("n1", "bond0", "eth0", "rx_cache_reuse")
	if v != 20 {
		t.Errorf("expected last write to win, got %d", v)
	}
}

func TestInsertIdempotent(t *testing.T) {
	a, b := New(), New()

	a.Insert(smp("n1", "bond0", "eth0", "rx_cache_reuse", 5))

	b.Insert(smp("n1", "bond0", "eth0", "rx_cache_reuse", 5))
	b.Insert(smp("n1", "bond0", "eth0", "rx_cache_reuse", 5))

	if !reflect.DeepEqual(a.Metrics("n1", "bond0", "eth0"), b.Metrics("n1", "bond0", "eth0")) {
		t.Error("double insert of an identical sample changed store state")
	}
}

func TestEnumerationOrderIndependentOfInsertOrder(t *testing.T) {
	samples := []sample.Sample{
		smp("n2", "bond0", "eth0", "rx_cache_reuse", 1),
		smp("n1", "bond1", "eth3", "rx_cache_busy", 2),
		smp("n1", "bond0", "eth1", "rx_cache_full", 3),
		smp("n1", "bond0", "eth0", "rx_cache_reuse", 4),
		smp("n3", "bond2", "eth9", "rx_cache_busy", 5),
	}

	baseline := New()
	baseline.InsertBatch(samples)

	for seed := int64(0); seed < 5; seed++ {
		shuffled := make([]sample.Sample, len(samples))
		copy(shuffled, samples)
		rand.New(rand.NewSource(seed)).Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		s := New()
		s.InsertBatch(shuffled)

		if !reflect.DeepEqual(s.Nodes(), baseline.Nodes()) {
			t.Fatalf("seed %d: node order differs", seed)
		}
		for _, node := range s.Nodes() {
			if !reflect.DeepEqual(s.Bonds(node), baseline.Bonds(node)) {
				t.Fatalf("seed %d: bond order differs on %s", seed, node)
			}
			for _, bond := range s.Bonds(node) {
				if !reflect.DeepEqual(s.Interfaces(node, bond), baseline.Interfaces(node, bond)) {
					t.Fatalf("seed %d: interface order differs on %s/%s", seed, node, bond)
				}
			}
		}
	}
}

func TestMetricsReturnsCopy(t *testing.T) {
	s := New()
	s.Insert(smp("n1", "bond0", "eth0", "rx_cache_reuse", 1))

	m := s.Metrics("n1", "bond0", "eth0")
	m["rx_cache_reuse"] = 999

	v, _ := s.Value("n1", "bond0", "eth0", "rx_cache_reuse")
	if v != 1 {
		t.Error("mutating the returned map leaked into the store")
	}
}

func TestMetricNames(t *testing.T) {
	s := New()
	s.Insert(smp("n1", "bond0", "eth0", "rx_cache_reuse", 1))
	s.Insert(smp("n1", "bond0", "eth0", "rx_cache_busy", 2))
	s.Insert(smp("n1", "bond0", "eth0", "rx_cache_full", 3))

	want := []string{"rx_cache_busy", "rx_cache_full", "rx_cache_reuse"}
	if got := s.MetricNames("n1", "bond0", "eth0"); !reflect.DeepEqual(got, want) {
		t.Errorf("MetricNames() = %v, want %v", got, want)
	}
}

func TestInterfaceHasIssue(t *testing.T) {
	s := New()
	s.Insert(smp("n1", "bond0", "eth0", "rx_cache_busy", 5))
	s.Insert(smp("n1", "bond0", "eth1", "rx_cache_busy", 0))

	tests := []struct {
		name      string
		iface     string
		threshold uint64
		want      bool
	}{
		{"above default threshold", "eth0", 0, true},
		{"zero value at default threshold", "eth1", 0, false},
		{"at custom threshold is not an issue", "eth0", 5, false},
		{"below custom threshold", "eth0", 10, false},
		{"unknown interface", "eth9", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.InterfaceHasIssue("n1", "bond0", tt.iface, tt.threshold); got != tt.want {
				t.Errorf("InterfaceHasIssue(%s, %d) = %v, want %v", tt.iface, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestEmpty(t *testing.T) {
	s := New()
	if !s.Empty() {
		t.Error("new store should be empty")
	}
	s.Insert(smp("n1", "bond0", "eth0", "rx_cache_reuse", 0))
	if s.Empty() {
		t.Error("store with samples should not be empty")
	}
}

func TestLookupUnknownKeysIsSafe(t *testing.T) {
	s := New()
	if got := s.Bonds("nope"); len(got) != 0 {
		t.Errorf("Bonds on unknown node = %v", got)
	}
	if got := s.Interfaces("nope", "bond0"); len(got) != 0 {
		t.Errorf("Interfaces on unknown pair = %v", got)
	}
	if got := s.Metrics("nope", "bond0", "eth0"); len(got) != 0 {
		t.Errorf("Metrics on unknown interface = %v", got)
	}
}
