package serializer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/NVIDIA/bondctl/pkg/sample"
)

func TestParseConfigMapURI(t *testing.T) {
	tests := []struct {
		name          string
		uri           string
		wantNamespace string
		wantName      string
		wantErr       bool
	}{
		{name: "valid", uri: "cm://fleet/bondctl-samples", wantNamespace: "fleet", wantName: "bondctl-samples"},
		{name: "name with slash preserved", uri: "cm://ns/a/b", wantNamespace: "ns", wantName: "a/b"},
		{name: "missing scheme", uri: "fleet/bondctl-samples", wantErr: true},
		{name: "missing name", uri: "cm://fleet", wantErr: true},
		{name: "empty namespace", uri: "cm:///name", wantErr: true},
		{name: "empty name", uri: "cm://ns/", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			namespace, name, err := ParseConfigMapURI(tc.uri)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantNamespace, namespace)
			assert.Equal(t, tc.wantName, name)
		})
	}
}

func TestConfigMapWriteRead(t *testing.T) {
	kc := fake.NewClientset()
	ctx := context.Background()

	set := sample.NewSet("worker-1", "v1.0.0", []sample.Raw{
		{Node: "worker-1", Bond: "bond0", Interface: "eth0", Metric: "rx_cache_reuse", Value: "90"},
		{Node: "worker-1", Bond: "bond0", Interface: "eth1", Metric: "rx_cache_busy", Value: "4"},
	})

	w := NewConfigMapWriter("fleet", "bondctl-samples-worker-1", FormatJSON)
	w.Client = kc
	require.NoError(t, w.Serialize(ctx, set))
	require.NoError(t, w.Close())

	cm, err := kc.CoreV1().ConfigMaps("fleet").Get(ctx, "bondctl-samples-worker-1", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "bondctl", cm.Labels["app.kubernetes.io/name"])
	assert.Equal(t, "SampleSet", cm.Labels["app.kubernetes.io/component"])
	assert.Equal(t, "json", cm.Data["format"])
	assert.NotEmpty(t, cm.Data["timestamp"])
	assert.Contains(t, cm.Data["samples.json"], "rx_cache_reuse")

	decoded, err := ReadConfigMap[sample.Set](ctx, kc, "fleet", "bondctl-samples-worker-1")
	require.NoError(t, err)
	assert.Equal(t, set.Kind, decoded.Kind)
	assert.Equal(t, "worker-1", decoded.Metadata["source-node"])
	require.Len(t, decoded.Samples, 2)
	assert.Equal(t, "90", decoded.Samples[0].Value)
}

func TestConfigMapWriteUpdatesExisting(t *testing.T) {
	kc := fake.NewClientset()
	ctx := context.Background()

	w := NewConfigMapWriter("fleet", "bondctl-samples", FormatJSON)
	w.Client = kc

	first := sample.NewSet("n1", "v1.0.0", nil)
	require.NoError(t, w.Serialize(ctx, first))

	second := sample.NewSet("n2", "v1.0.0", nil)
	require.NoError(t, w.Serialize(ctx, second))

	decoded, err := ReadConfigMap[sample.Set](ctx, kc, "fleet", "bondctl-samples")
	require.NoError(t, err)
	assert.Equal(t, "n2", decoded.Metadata["source-node"])
}

func TestReadConfigMapMissing(t *testing.T) {
	kc := fake.NewClientset()
	_, err := ReadConfigMap[sample.Set](context.Background(), kc, "fleet", "nope")
	assert.Error(t, err)
}

func TestReadConfigMapNoSamplesData(t *testing.T) {
	kc := fake.NewClientset()
	ctx := context.Background()

	w := NewConfigMapWriter("fleet", "cm", FormatJSON)
	w.Client = kc
	require.NoError(t, w.Serialize(ctx, sample.NewSet("n1", "v1.0.0", nil)))

	cm, err := kc.CoreV1().ConfigMaps("fleet").Get(ctx, "cm", metav1.GetOptions{})
	require.NoError(t, err)
	delete(cm.Data, "samples.json")
	_, err = kc.CoreV1().ConfigMaps("fleet").Update(ctx, cm, metav1.UpdateOptions{})
	require.NoError(t, err)

	_, err = ReadConfigMap[sample.Set](ctx, kc, "fleet", "cm")
	assert.Error(t, err)
}
