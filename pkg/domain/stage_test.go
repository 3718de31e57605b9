package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/pkg/stageerr"
)

func TestParseStage(t *testing.T) {
	t.Run("all pipeline stages parse", func(t *testing.T) {
		for _, name := range []string{
			"INGESTION", "EXTRACTOR", "CLASSIFIER_ROUTER", "LLM_ENGINE",
			"RULES_ENGINE", "FORMAT_EXPORT", "STORAGE",
		} {
			st, err := ParseStage(name)
			require.NoError(t, err, name)
			assert.Equal(t, name, st.String())
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := ParseStage("")
		require.Error(t, err)
		assert.True(t, stageerr.HasCode(err, stageerr.CodeValidation))
	})

	t.Run("unknown name rejected", func(t *testing.T) {
		_, err := ParseStage("OCR")
		require.Error(t, err)
		assert.True(t, stageerr.HasCode(err, stageerr.CodeValidation))
	})

	t.Run("lowercase name rejected", func(t *testing.T) {
		_, err := ParseStage("classifier_router")
		require.Error(t, err)
	})
}

func TestIdempotencyKey(t *testing.T) {
	key := IdempotencyKey("doc_123", StageClassifierRouter)
	assert.Equal(t, "doc_123::CLASSIFIER_ROUTER", key)
}
