package codec

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/danmuck/starwire/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

func TestNewStreamNormalizesInput(t *testing.T) {
	testlog.Start(t)
	inputs := []any{
		[]byte("hi"),
		"hi",
		bytes.NewReader([]byte("hi")),
		bufio.NewReader(bytes.NewReader([]byte("hi"))),
	}
	for _, in := range inputs {
		s, err := NewStream(in)
		require.NoError(t, err)
		b, err := s.ReadFull(2)
		require.NoError(t, err)
		require.Equal(t, []byte("hi"), b)
		require.Equal(t, int64(2), s.Offset())
		require.Equal(t, 0, s.Lookahead())
	}

	s, err := NewStream([]byte{1})
	require.NoError(t, err)
	same, err := NewStream(s)
	require.NoError(t, err)
	require.Same(t, s, same)

	_, err = NewStream(42)
	require.ErrorIs(t, err, ErrUnknownInput)
}

func TestStreamLookaheadDoesNotConsume(t *testing.T) {
	testlog.Start(t)
	s, err := NewStream([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 3, s.Lookahead())
	require.Equal(t, 3, s.Lookahead())
	require.Equal(t, int64(0), s.Offset())
	b, err := s.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(1), b)
	require.Equal(t, 2, s.Lookahead())
}

func TestRecordKeepsInsertionOrder(t *testing.T) {
	testlog.Start(t)
	r := NewRecord()
	r.Set("b", 1)
	r.Set("a", 2)
	r.Set("b", 3)
	require.Equal(t, []string{"b", "a"}, r.Keys())
	v, ok := r.Get("b")
	require.True(t, ok)
	require.Equal(t, 3, v)
	require.False(t, r.Has("c"))

	var visited []string
	r.Range(func(name string, _ any) bool {
		visited = append(visited, name)
		return false
	})
	require.Equal(t, []string{"b"}, visited)
}

func TestContextCompressedFlag(t *testing.T) {
	testlog.Start(t)
	ctx := NewContext()
	require.False(t, ctx.Compressed())
	ctx.SetCompressed(true)
	require.True(t, ctx.Compressed())
	ctx.Set(KeyCompressed, "yes")
	require.False(t, ctx.Compressed())

	var nilCtx *Context
	nilCtx.Set("x", 1)
	_, ok := nilCtx.Get("x")
	require.False(t, ok)
	require.Equal(t, 0, nilCtx.Snapshot().Len())
}

func TestNewStreamRejectsTypedNilReader(t *testing.T) {
	testlog.Start(t)
	var r *bytes.Reader
	_, err := NewStream(r)
	require.ErrorIs(t, err, ErrUnknownInput)

	var br *bufio.Reader
	_, err = NewStream(br)
	require.ErrorIs(t, err, ErrUnknownInput)
}
