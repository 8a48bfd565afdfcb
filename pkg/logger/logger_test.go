package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	l, err := New("debug", "json")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New("not-a-level", "console")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestFields(t *testing.T) {
	assert.Equal(t, "schedule_id", Field("schedule_id", "abc").Key)
	assert.Equal(t, int64(3), IntField("count", 3).Integer)
	assert.Equal(t, "name", StringField("name", "x").Key)
	assert.Equal(t, "error", ErrorField(errors.New("boom")).Key)
	NewNop().Info("discarded")
}
