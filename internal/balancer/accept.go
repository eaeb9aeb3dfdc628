package balancer

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net"
	"time"
)

// ReadBufferSize is the fixed read size for an incoming request: unlike
// the STORE/COORDINATOR pipeline, this producer does not grow the buffer
// on an exact fill — it makes one read, and only the bytes that read
// returned (at most ReadBufferSize) are forwarded to the backend.
const ReadBufferSize = 4096

// Accept runs the balancer's producer: it accepts connections on ln until
// ctx is cancelled, reads one request, picks a backend for it (sticky via
// cookie or PickBackend), and pushes a Connection onto q.
func Accept(ctx context.Context, ln net.Listener, q *Queue, pool *Pool) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("balancer accept: %v", err)
			continue
		}
		go produce(conn, q, pool)
	}
}

func produce(conn net.Conn, q *Queue, pool *Pool) {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	buf := make([]byte, ReadBufferSize)
	n, err := conn.Read(buf)
	if err != nil && n == 0 {
		writeHTTP500(conn)
		conn.Close()
		return
	}
	req := buf[:n]

	if _, ok := ParseRequestLine(req); !ok {
		writeHTTP500(conn)
		conn.Close()
		return
	}

	backend := choose(req, pool)

	q.Push(Connection{
		Client:    conn,
		Backend:   backend,
		Request:   append([]byte(nil), req...),
		Timestamp: time.Now(),
	})
}

func choose(req []byte, pool *Pool) int {
	if idx, ok := findCookie(req); ok && idx >= 0 && idx < pool.Len() {
		return idx
	}
	return PickBackend(pool.Len())
}

func findCookie(req []byte) (int, bool) {
	for _, line := range bytes.Split(req, []byte("\r\n")) {
		if bytes.HasPrefix(bytes.ToLower(line), []byte("cookie:")) {
			return ExtractForwarderCookie(string(line))
		}
	}
	return 0, false
}

func writeHTTP500(conn net.Conn) {
	conn.Write([]byte("HTTP/1.1 500 Internal Server Error\r\nConnection: close\r\n\r\n"))
}
