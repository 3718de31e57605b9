package classifier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"docflow/internal/classifier/detector"
	"docflow/internal/classifier/registry"
)

// panicky is a deliberately broken detector used to verify that one failing
// strategy never takes down classification for a document.
type panicky struct{}

func (panicky) Name() string { return "panicky_detector" }

func (panicky) Detect(string) detector.Result {
	panic("regex engine exploded")
}

func TestPerDetectorFailureIsolation(t *testing.T) {
	reg, err := registry.Parse([]byte(testConfig))
	require.NoError(t, err)
	router, err := New(reg)
	require.NoError(t, err)

	detectors := append(reg.All(), panicky{})
	result := router.run(leaseText, detectors)

	require.Len(t, result.Failed, 1)
	require.Len(t, result.Succeeded, len(detectors)-1)
	require.Contains(t, result.Failed["panicky_detector"], "regex engine exploded")

	// The healthy detectors still produced their detections.
	require.Equal(t, "lease", result.Detections["lease_header_detector"].Value)
	require.Equal(t, "CA", result.Detections["jurisdiction_detector"].Value)
}

func TestSucceededAndFailedPartitionInvokedSet(t *testing.T) {
	reg, err := registry.Parse([]byte(testConfig))
	require.NoError(t, err)
	router, err := New(reg)
	require.NoError(t, err)

	detectors := append(reg.All(), panicky{})
	result := router.run(leaseText, detectors)

	seen := make(map[string]bool)
	for name := range result.Succeeded {
		seen[name] = true
	}
	for name := range result.Failed {
		require.False(t, seen[name], "detector %s in both succeeded and failed", name)
		seen[name] = true
	}
	require.Len(t, seen, len(detectors))
	for _, d := range detectors {
		require.True(t, seen[d.Name()])
	}
}
