package printing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaperSize(t *testing.T) {
	assert.True(t, PaperSizeA4.IsValid())
	assert.True(t, PaperSizeA5.IsValid())
	assert.False(t, PaperSize("A3").IsValid())
	assert.False(t, PaperSize("").IsValid())
}

func TestRenderRequest_Validate(t *testing.T) {
	assert.NoError(t, (&RenderRequest{HTML: "<p>ok</p>", PaperSize: PaperSizeA5}).validate())

	err := (&RenderRequest{HTML: "<p>ok</p>", PaperSize: "Letter"}).validate()
	assert.ErrorContains(t, err, `"Letter"`)
}

func TestRenderError(t *testing.T) {
	assert.Equal(t, "boom", NewRenderError(ErrCodeRenderFailed, "boom", nil).Error())

	cause := errors.New("chrome gone")
	err := NewRenderError(ErrCodeRenderTimeout, "timed out", cause)
	assert.Equal(t, "timed out: chrome gone", err.Error())
	assert.ErrorIs(t, err, cause)
}
