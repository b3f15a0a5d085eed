package fastsensor

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genLines(n int) []byte {
	var b bytes.Buffer
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "2025-01-01 00:00:%02d,site_%d,dev_%d,temp,Cel,%d.5\n", i%60, i%3, i%13, i%90)
	}
	return b.Bytes()
}

func TestChunkerPreservesBytes(t *testing.T) {
	data := genLines(50_000)

	chunker := NewChunker(bytes.NewReader(data), 8, 4096)
	errCh := make(chan error, 1)
	go func() { errCh <- chunker.Run() }()

	hasher := md5.New()
	receivedBytes := 0
	for {
		chunk := chunker.NextChunk()
		if chunk == nil {
			break
		}
		require.Equalf(t, byte('\n'), (*chunk)[len(*chunk)-1], "chunk: %v", *chunk)

		_, err := hasher.Write(*chunk)
		assert.NoError(t, err)
		receivedBytes += len(*chunk)

		chunker.ReleaseChunk(chunk)
	}

	require.NoError(t, <-errCh)
	assert.Equal(t, len(data), receivedBytes)
	assert.Equal(t, md5.Sum(data), [16]byte(hasher.Sum(nil)))
}

func TestChunkerLineLongerThanChunk(t *testing.T) {
	// a row longer than the chunk size must still come through whole
	long := strings.Repeat("x", 9000)
	data := []byte("short,line\n" + long + ",1\nanother,2\n")

	chunker := NewChunker(bytes.NewReader(data), 4, 1024)
	errCh := make(chan error, 1)
	go func() { errCh <- chunker.Run() }()

	var got []byte
	for {
		chunk := chunker.NextChunk()
		if chunk == nil {
			break
		}
		got = append(got, *chunk...)
		chunker.ReleaseChunk(chunk)
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, data, got)
}

func TestChunkerMissingFinalNewline(t *testing.T) {
	data := []byte("a,1\nb,2") // no trailing \n

	chunker := NewChunker(bytes.NewReader(data), 4, 1024)
	errCh := make(chan error, 1)
	go func() { errCh <- chunker.Run() }()

	var got []byte
	for {
		chunk := chunker.NextChunk()
		if chunk == nil {
			break
		}
		require.Equal(t, byte('\n'), (*chunk)[len(*chunk)-1])
		got = append(got, *chunk...)
		chunker.ReleaseChunk(chunk)
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, []byte("a,1\nb,2\n"), got)
}

func TestChunkerEmptyInput(t *testing.T) {
	chunker := NewChunker(bytes.NewReader(nil), 4, 1024)
	errCh := make(chan error, 1)
	go func() { errCh <- chunker.Run() }()
	assert.Nil(t, chunker.NextChunk())
	require.NoError(t, <-errCh)
}
