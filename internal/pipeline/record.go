// Package pipeline implements the accept → parse → enqueue → dispatch
// request flow shared by the STORE and COORDINATOR binaries: one accept
// loop producing Records, one Queue, a fixed-size Pool of workers draining
// it. The LOAD BALANCER has its own queue and forwarders in package balancer.
package pipeline

import (
	"bytes"
	"net"
)

// Record is one accepted connection together with the raw request bytes
// read from it. Raw is kept untouched — whatever parses it downstream
// does so non-destructively, so a single Record can be logged, retried, or
// handed to more than one parser without losing information, and can
// still be forwarded verbatim afterward.
type Record struct {
	Conn net.Conn
	Raw  []byte
}

// Close closes the underlying connection. Safe to call once a worker is
// done with the record.
func (r *Record) Close() error {
	return r.Conn.Close()
}

var headerBodySep = []byte("\r\n\r\n")

// Body returns whatever follows the first blank line in Raw — the POST
// body carrying cmd=VERB&key=... for a routed request, or the empty slice
// for a header-only request. Returns the whole of Raw unchanged if no
// blank line is present, so a bare body with no HTTP envelope still works.
func (r *Record) Body() []byte {
	_, body, found := bytes.Cut(r.Raw, headerBodySep)
	if !found {
		return r.Raw
	}
	return body
}
