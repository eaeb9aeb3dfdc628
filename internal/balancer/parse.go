package balancer

import (
	"math/rand/v2"
	"regexp"
	"strconv"
)

var requestLineRE = regexp.MustCompile(`^GET /([^ ]*) HTTP/1`)

// ParseRequestLine extracts the path from a GET request line. ok is false
// for anything that doesn't match a GET request, which the caller turns
// into a 500 rather than attempting to forward it.
func ParseRequestLine(buf []byte) (path string, ok bool) {
	m := requestLineRE.FindSubmatch(buf)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

var cookieRE = regexp.MustCompile(`forwarderid=([^;]+)`)

// ExtractForwarderCookie pulls the sticky-session backend index out of a
// Cookie header. ok is false if the header carries no such cookie, or the
// value isn't a plain integer.
func ExtractForwarderCookie(header string) (index int, ok bool) {
	m := cookieRE.FindStringSubmatch(header)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// PickBackend returns a uniformly random index in [0, n). Only the
// interface is prescribed; callers that need deterministic selection
// (tests, alternate policies) can bypass this and select the index
// directly.
func PickBackend(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}
