package pipeline

import (
	"context"
	"errors"
	"log"
	"net"
	"time"
)

// ReadChunkSize is the per-read buffer size; the read loop doubles the
// buffer and reads again whenever a read fills it exactly. It stops at the
// first read that leaves the buffer short of full, so a request whose bytes
// arrive in pieces is cut off at that read.
const ReadChunkSize = 4096

// readDeadline bounds how long readOne waits for a client that has opened
// a connection but sent nothing (or stopped sending mid-request).
const readDeadline = 10 * time.Second

// Accept runs the producer side of the pipeline: it accepts connections on
// ln until ctx is cancelled, reads the full request from each, and pushes
// a Record onto q. Reading happens on its own goroutine per connection so
// one slow or silent client can't stall new accepts.
func Accept(ctx context.Context, ln net.Listener, q *Queue) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("accept: %v", err)
			continue
		}
		go readOne(conn, q)
	}
}

func readOne(conn net.Conn, q *Queue) {
	conn.SetReadDeadline(time.Now().Add(readDeadline))

	buf := make([]byte, ReadChunkSize)
	total := 0
	for {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			break
		}
		if total < len(buf) {
			// Read returned before filling the buffer: the client paused,
			// which for a single-shot request means it's done sending.
			break
		}
		grown := make([]byte, len(buf)*2)
		copy(grown, buf)
		buf = grown
	}

	if total == 0 {
		conn.Close()
		return
	}
	q.Push(&Record{Conn: conn, Raw: buf[:total]})
}
