package balancer

import (
	"context"
	"io"
	"log"
	"net"
	"time"
)

// Connection is one accepted client connection paired with the backend
// index chosen for it and the captured request bytes to replay.
type Connection struct {
	Client    net.Conn
	Backend   int
	Request   []byte
	Timestamp time.Time
}

// DialTimeout bounds how long Forward waits to connect to a backend.
const DialTimeout = 5 * time.Second

// Forward dials the chosen backend, sends the captured request once, and
// relays the backend's response back to the client byte-for-byte until
// either side closes or a write fails. Both connections are closed before
// returning.
func Forward(ctx context.Context, conn Connection, pool *Pool) error {
	defer conn.Client.Close()

	backend := pool.At(conn.Backend)
	if backend == nil {
		return errBadBackendIndex
	}

	var d net.Dialer
	dialCtx, cancel := context.WithTimeout(ctx, DialTimeout)
	defer cancel()

	upstream, err := d.DialContext(dialCtx, "tcp", backend.Addr)
	if err != nil {
		writeHTTP500(conn.Client)
		return err
	}
	defer upstream.Close()

	if _, err := upstream.Write(conn.Request); err != nil {
		writeHTTP500(conn.Client)
		return err
	}
	backend.Forward()

	if _, err := io.Copy(conn.Client, upstream); err != nil && err != io.EOF {
		log.Printf("balancer: relay to client failed: %v", err)
		return err
	}
	return nil
}

var errBadBackendIndex = &backendIndexError{}

type backendIndexError struct{}

func (*backendIndexError) Error() string { return "balancer: backend index out of range" }
