package router

import "fmt"

// Reply is a wire response: an HTTP-style status line and a body, mirroring
// the STORE/COORDINATOR's plain-text reply framing. A forwarded reply
// carries Raw instead — bytes already framed by the owning store, relayed
// to the client untouched.
type Reply struct {
	Status int
	Text   string
	Body   string
	Raw    []byte
}

var statusText = map[int]string{
	200: "OK",
	400: "Bad Request",
	404: "Not Found",
	500: "Internal Server Error",
	501: "Not Implemented",
}

// NewReply builds a Reply, filling in the standard reason phrase for status.
func NewReply(status int, body string) Reply {
	return Reply{Status: status, Text: statusText[status], Body: body}
}

// Bytes renders the reply exactly as it goes on the wire.
func (r Reply) Bytes() []byte {
	if r.Raw != nil {
		return r.Raw
	}
	return fmt.Appendf(nil,
		"HTTP/1.1 %d %s\r\nContent-Type: text/plain\r\nContent-Length: %d\r\nConnection: close\r\n\r\n%s",
		r.Status, r.Text, len(r.Body), r.Body)
}
