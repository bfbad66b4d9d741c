package infra

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

var initPC = caller()

func caller() Frame {
	var PCs [3]uintptr
	n := runtime.Callers(2, PCs[:])
	frames := runtime.CallersFrames(PCs[:n])
	frame, _ := frames.Next()
	return Frame(frame.PC)
}

func TestFrameFormat(t *testing.T) {
	require.Equal(t, "err_stack_test.go", fmt.Sprintf("%s", initPC))
	require.Equal(t, "init", fmt.Sprintf("%n", initPC))
	require.Equal(t, "16", fmt.Sprintf("%d", initPC))
	require.Equal(t, "err_stack_test.go:16", fmt.Sprintf("%v", initPC))

	full := fmt.Sprintf("%+s", initPC)
	require.True(t, strings.HasPrefix(full, "github.com/benz9527/xtree/lib/infra.init\n\t"))
	require.True(t, strings.HasSuffix(full, "err_stack_test.go"))
	require.True(t, strings.HasSuffix(fmt.Sprintf("%+v", initPC), "err_stack_test.go:16"))

	testcases := []struct {
		format string
		want   string
	}{
		{"%s", "unknownFile"},
		{"%n", "unknownFunc"},
		{"%d", "0"},
	}
	for _, tc := range testcases {
		require.Equal(t, tc.want, fmt.Sprintf(tc.format, Frame(0)))
	}
}

func TestFrameMarshalText(t *testing.T) {
	_bytes, err := initPC.MarshalText()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(_bytes), "github.com/benz9527/xtree/lib/infra.init "))
	require.True(t, strings.HasSuffix(string(_bytes), "err_stack_test.go:16"))

	_bytes, err = Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "unknownFrame", string(_bytes))
}

func TestFrameMarshalJSON(t *testing.T) {
	_bytes, err := json.Marshal(initPC)
	require.NoError(t, err)
	res := map[string]string{}
	require.NoError(t, json.Unmarshal(_bytes, &res))
	require.Equal(t, "github.com/benz9527/xtree/lib/infra.init", res["func"])
	require.True(t, strings.HasSuffix(res["fileAndLine"], "err_stack_test.go:16"))

	_bytes, err = json.Marshal(Frame(0))
	require.NoError(t, err)
	require.Equal(t, "{\"frame\":\"unknownFrame\"}", string(_bytes))
}

func TestErrorStack(t *testing.T) {
	es := NewErrorStack("broken link")
	require.Equal(t, "broken link", es.Error())
	require.NotEmpty(t, es.Frames())

	sentinel := errors.New("sentinel")
	wrapped := WrapErrorStackWithMessage(sentinel, "release")
	require.Equal(t, "release: sentinel", wrapped.Error())
	require.ErrorIs(t, wrapped, sentinel)

	require.Nil(t, WrapErrorStack(nil))
	require.Nil(t, WrapErrorStackWithMessage(nil, "nothing"))
	again := WrapErrorStack(wrapped)
	require.Same(t, wrapped, again)
	require.ErrorIs(t, WrapErrorStack(sentinel), sentinel)
}

func TestErrorStackMarshalLogObject(t *testing.T) {
	merr := multierr.Combine(errors.New("e1"), errors.New("e2"))
	es := WrapErrorStack(merr)

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, es.MarshalLogObject(enc))
	require.Equal(t, es.Error(), enc.Fields["error"])
	require.Equal(t, []any{"e1", "e2"}, enc.Fields["errors"])
	frames, ok := enc.Fields["errorStack"].([]any)
	require.True(t, ok)
	require.Len(t, frames, len(es.Frames()))
}
