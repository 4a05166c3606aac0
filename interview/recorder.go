package interview

import "sync"

// Recorder records a stream into binary chunks. Stop is asynchronous: the
// implementation delivers any buffered data and then closes Chunks. A host
// recorder that never flushes is tolerated by the controller's stop timeout.
type Recorder interface {
	Start() error
	Stop()
	Chunks() <-chan []byte
}

// RecorderFactory builds a recorder over a combined capture stream.
type RecorderFactory func(stream *Stream) (Recorder, error)

// ChunkBuffer accumulates recorded chunks in emission order.
type ChunkBuffer struct {
	mu     sync.Mutex
	chunks [][]byte
	size   int
}

func NewChunkBuffer() *ChunkBuffer {
	return &ChunkBuffer{}
}

func (b *ChunkBuffer) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	b.mu.Lock()
	b.chunks = append(b.chunks, chunk)
	b.size += len(chunk)
	b.mu.Unlock()
}

func (b *ChunkBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks)
}

func (b *ChunkBuffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Bytes concatenates all chunks into one artifact. A zero-byte result means
// "no artifact", never an error.
func (b *ChunkBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, 0, b.size)
	for _, chunk := range b.chunks {
		out = append(out, chunk...)
	}
	return out
}
