package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage_WrapsAndUnwraps(t *testing.T) {
	err := Stage("transcode", ErrEngineExecutionFailed, "check ffmpeg")
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrEngineExecutionFailed)
	assert.Equal(t, "transcode: media engine execution failed", err.Error())
	assert.Equal(t, "check ffmpeg", HintOf(err))

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "transcode", se.Stage)
}

func TestStage_NilPassthrough(t *testing.T) {
	assert.NoError(t, Stage("fetch", nil, "unused"))
}

func TestHintOf_DeepChain(t *testing.T) {
	inner := Stage("extend", ErrOutputMissing, "rerun the extension")
	outer := fmt.Errorf("pipeline: %w", inner)
	assert.Equal(t, "rerun the extension", HintOf(outer))
}

func TestHintOf_PlainError(t *testing.T) {
	assert.Empty(t, HintOf(errors.New("plain")))
	assert.Empty(t, HintOf(nil))
}
