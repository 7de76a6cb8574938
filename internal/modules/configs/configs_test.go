package configs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepMergeJSONNestedMaps(t *testing.T) {
	old := map[string]interface{}{
		"generation": map[string]interface{}{
			"content_framework": "SAGE",
			"target_word_count": float64(1500),
		},
	}
	incoming := map[string]interface{}{
		"generation": map[string]interface{}{
			"target_word_count": float64(2000),
		},
	}

	merged := deepMergeJSON(old, incoming).(map[string]interface{})
	gen := merged["generation"].(map[string]interface{})
	assert.Equal(t, "SAGE", gen["content_framework"])
	assert.Equal(t, float64(2000), gen["target_word_count"])
}

func TestDeepMergeJSONArraysReplaceWholesale(t *testing.T) {
	old := []interface{}{"a", "b", "c"}
	incoming := []interface{}{"x"}
	assert.Equal(t, incoming, deepMergeJSON(old, incoming))
}

func TestDeepMergeJSONScalarOverwrites(t *testing.T) {
	assert.Equal(t, "new", deepMergeJSON("old", "new"))
	assert.Equal(t, nil, deepMergeJSON("old", nil))
}

func TestSnakeToCamelKey(t *testing.T) {
	assert.Equal(t, "contentFramework", snakeToCamelKey("content_framework"))
	assert.Equal(t, "quietMS", snakeToCamelKey("quiet_ms"))
	assert.Equal(t, "providerID", snakeToCamelKey("provider_id"))
	assert.Equal(t, "url", snakeToCamelKey("url"))
}

func TestCamelToSnakeKey(t *testing.T) {
	assert.Equal(t, "content_framework", camelToSnakeKey("contentFramework"))
	assert.Equal(t, "quiet_ms", camelToSnakeKey("quietMS"))
	assert.Equal(t, "s3_options", camelToSnakeKey("s3Options"))
	assert.Equal(t, "autosave", camelToSnakeKey("autosave"))
}

func TestNormalizeJSONKeys(t *testing.T) {
	out, err := normalizeJSONKeys(json.RawMessage(`{"quietMS":2500,"nested":{"targetWordCount":1800}}`), camelToSnakeKey)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, float64(2500), m["quiet_ms"])
	nested := m["nested"].(map[string]interface{})
	assert.Equal(t, float64(1800), nested["target_word_count"])

	_, err = normalizeJSONKeys(json.RawMessage(`not json`), camelToSnakeKey)
	assert.Error(t, err)
}
