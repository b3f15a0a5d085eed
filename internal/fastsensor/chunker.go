package fastsensor

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// Chunker slices the input into newline-aligned chunks so each worker can
// parse whole rows without coordinating with the others. Chunk buffers come
// from a sync.Pool; workers hand them back with ReleaseChunk when done.
type Chunker struct {
	r       io.Reader
	pool    sync.Pool
	chunkCh chan *[]byte
}

// NewChunker returns a chunker over r producing chunks of up to chunkSize
// bytes through a channel with capacity chCap.
func NewChunker(r io.Reader, chCap, chunkSize int) *Chunker {
	return &Chunker{
		r:       r,
		chunkCh: make(chan *[]byte, chCap),
		pool: sync.Pool{
			New: func() any {
				b := make([]byte, 0, chunkSize)
				return &b
			},
		},
	}
}

func (c *Chunker) getChunk() *[]byte {
	b := c.pool.Get().(*[]byte)
	*b = (*b)[:0]
	return b
}

// ReleaseChunk returns a chunk buffer to the pool.
func (c *Chunker) ReleaseChunk(chunk *[]byte) {
	c.pool.Put(chunk)
}

// NextChunk blocks for the next chunk, nil once the input is exhausted.
// Every chunk ends with '\n' and never splits a row.
func (c *Chunker) NextChunk() *[]byte {
	return <-c.chunkCh
}

// Run reads the input to exhaustion, emitting newline-aligned chunks.
// It closes the chunk channel when done, so it must be called exactly once.
func (c *Chunker) Run() error {
	leftovers := make([]byte, 0, 256)
	for {
		chunk := c.getChunk()
		*chunk = append(*chunk, leftovers...) // partial row from the previous read
		readStart := len(leftovers)
		leftovers = leftovers[:0]
		*chunk = (*chunk)[:cap(*chunk)]

		n, err := c.r.Read((*chunk)[readStart:])
		if err != nil {
			if err == io.EOF {
				if readStart > 0 {
					*chunk = (*chunk)[:readStart]
					if (*chunk)[len(*chunk)-1] != '\n' {
						// last row might not be newline-terminated
						*chunk = append(*chunk, '\n')
					}
					c.chunkCh <- chunk
				}
				close(c.chunkCh)
				return nil
			}
			close(c.chunkCh)
			return fmt.Errorf("failed Read: %w", err)
		}
		*chunk = (*chunk)[:readStart+n]

		lastnl := bytes.LastIndexByte(*chunk, '\n')
		if lastnl == -1 {
			// no full row yet, keep reading
			leftovers = append(leftovers, (*chunk)...)
			continue
		}

		if lastnl < readStart+n-1 {
			leftovers = append(leftovers, (*chunk)[lastnl+1:]...)
		}

		*chunk = (*chunk)[:lastnl+1]
		c.chunkCh <- chunk
	}
}
