package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestEncodeJSON(t *testing.T) {
	assert.Equal(t, `["pose","vernis"]`, encodeJSON([]string{"pose", "vernis"}, "[]"))
	assert.Equal(t, "[]", encodeJSON([]string(nil), "[]"))
	assert.Equal(t, "{}", encodeJSON(make(chan int), "{}"))
}

func TestDecodeJSON_LogsMalformedColumns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	defer zap.ReplaceGlobals(zap.New(core))()

	var includes []string
	decodeJSON(`["transport"]`, &includes, "includes", "DEV-2026-0001")
	assert.Equal(t, []string{"transport"}, includes)

	var excludes []string
	decodeJSON(`["montage"`, &excludes, "excludes", "DEV-2026-0001")
	assert.Empty(t, excludes)

	entries := logs.FilterMessage("Malformed JSON column").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "DEV-2026-0001", entries[0].ContextMap()["owner"])
	}
}
