package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
)

func TestParseTolerationsDefault(t *testing.T) {
	tolerations, err := ParseTolerations(nil)
	require.NoError(t, err)
	require.Len(t, tolerations, 1)
	assert.Equal(t, corev1.TolerationOpExists, tolerations[0].Operator)
	assert.Empty(t, tolerations[0].Key)
}

func TestParseTolerations(t *testing.T) {
	tolerations, err := ParseTolerations([]string{
		"dedicated=infra:NoSchedule",
		"gpu:NoExecute",
	})
	require.NoError(t, err)
	require.Len(t, tolerations, 2)

	assert.Equal(t, "dedicated", tolerations[0].Key)
	assert.Equal(t, "infra", tolerations[0].Value)
	assert.Equal(t, corev1.TolerationOpEqual, tolerations[0].Operator)
	assert.Equal(t, corev1.TaintEffectNoSchedule, tolerations[0].Effect)

	assert.Equal(t, "gpu", tolerations[1].Key)
	assert.Empty(t, tolerations[1].Value)
	assert.Equal(t, corev1.TolerationOpExists, tolerations[1].Operator)
}

func TestParseTolerationsInvalid(t *testing.T) {
	_, err := ParseTolerations([]string{"no-effect"})
	assert.Error(t, err)

	_, err = ParseTolerations([]string{"a:b:c"})
	assert.Error(t, err)
}
