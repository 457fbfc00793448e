package errors

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("train", "empty training set")

	assert.True(t, Is(err, ErrInvalidInput))
	assert.False(t, Is(err, ErrInvalidConfiguration))
	assert.Contains(t, err.Error(), "train: empty training set")
}

func TestInvalidConfiguration(t *testing.T) {
	err := InvalidConfiguration("threshold", 1.5, "must be within [0, 1]")

	require.True(t, Is(err, ErrInvalidConfiguration))

	var cfgErr *ConfigError
	require.True(t, As(err, &cfgErr))
	assert.Equal(t, "threshold", cfgErr.Param)
	assert.Equal(t, 1.5, cfgErr.Value)
}

func TestDimensionError(t *testing.T) {
	err := NewDimensionError("score", 20, 5)

	assert.True(t, Is(err, ErrInvalidInput))

	var dimErr *DimensionError
	require.True(t, As(err, &dimErr))
	assert.Equal(t, 20, dimErr.Expected)
	assert.Equal(t, 5, dimErr.Got)
	assert.Equal(t, "score: dimension mismatch, expected 20 features, got 5", dimErr.Error())
}

func TestNotTrained(t *testing.T) {
	err := NotTrained("predict")
	assert.True(t, Is(err, ErrNotTrained))
	assert.Contains(t, err.Error(), "predict")
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "context"))
	assert.NoError(t, Wrapf(nil, "context %d", 1))
}

func TestMarshalZerologObject(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logger.Error().EmbedObject(&ConfigError{Param: "trees", Value: 0, Reason: "must be positive"}).Msg("bad config")

	assert.Contains(t, buf.String(), `"param":"trees"`)
	assert.Contains(t, buf.String(), `"reason":"must be positive"`)
}
