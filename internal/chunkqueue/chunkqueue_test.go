package chunkqueue

import (
	"sync"
	"testing"
	"time"

	"github.com/meetcap/core/internal/audiochunk"
)

func TestUnbounded_PreservesOrder(t *testing.T) {
	q := New()
	for i := 0; i < 100; i++ {
		q.Push(audiochunk.AudioChunk{ChunkID: uint64(i)})
	}

	for i := 0; i < 100; i++ {
		select {
		case chunk := <-q.Out():
			if chunk.ChunkID != uint64(i) {
				t.Fatalf("chunk %d out of order: got ChunkID %d", i, chunk.ChunkID)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for chunk %d", i)
		}
	}
	q.Close()
}

func TestUnbounded_PushNeverBlocksUnderBackpressure(t *testing.T) {
	q := New()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10000; i++ {
			q.Push(audiochunk.AudioChunk{ChunkID: uint64(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Push blocked with no consumer draining Out()")
	}

	drained := 0
	for range q.Out() {
		drained++
		if drained == 10000 {
			q.Close()
		}
	}
	if drained != 10000 {
		t.Fatalf("expected 10000 chunks drained, got %d", drained)
	}
}

func TestUnbounded_ClosesAfterDraining(t *testing.T) {
	q := New()
	q.Push(audiochunk.AudioChunk{ChunkID: 1})
	q.Push(audiochunk.AudioChunk{ChunkID: 2})
	q.Close()

	var got []uint64
	for chunk := range q.Out() {
		got = append(got, chunk.ChunkID)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("expected remaining buffered chunks to drain before close, got %v", got)
	}
}

func TestUnbounded_ConcurrentProducers(t *testing.T) {
	q := New()
	const producers = 8
	const perProducer = 500

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(audiochunk.AudioChunk{ChunkID: uint64(p*perProducer + i)})
			}
		}(p)
	}

	count := 0
	go func() {
		wg.Wait()
		// the drain loop below stops on its own count once every pushed
		// chunk has arrived; Close is called after it.
	}()

	timeout := time.After(2 * time.Second)
	for count < producers*perProducer {
		select {
		case <-q.Out():
			count++
		case <-timeout:
			t.Fatalf("only drained %d of %d chunks", count, producers*perProducer)
		}
	}
	q.Close()
}
