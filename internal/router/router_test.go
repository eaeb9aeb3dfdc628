package router

import (
	"context"
	"errors"
	"testing"

	"dkvring/internal/localmap"
	"dkvring/internal/ring"
)

func TestParseCommandSetAndGet(t *testing.T) {
	verb, arg, ok := ParseCommand([]byte("cmd=SET&key=alpha=1"))
	if !ok || verb != "SET" || arg != "alpha=1" {
		t.Fatalf("got verb=%q arg=%q ok=%v", verb, arg, ok)
	}

	verb, arg, ok = ParseCommand([]byte("cmd=GET&key=alpha"))
	if !ok || verb != "GET" || arg != "alpha" {
		t.Fatalf("got verb=%q arg=%q ok=%v", verb, arg, ok)
	}
}

func TestParseCommandDoesNotMutateInput(t *testing.T) {
	buf := []byte("cmd=SET&key=alpha=1")
	orig := append([]byte(nil), buf...)
	ParseCommand(buf)
	if string(buf) != string(orig) {
		t.Fatalf("ParseCommand mutated its input: got %q, want %q", buf, orig)
	}
}

func TestParseKeyValue(t *testing.T) {
	k, v, has := ParseKeyValue("alpha=1")
	if k != "alpha" || v != "1" || !has {
		t.Fatalf("got %q %q %v", k, v, has)
	}
	k, _, has = ParseKeyValue("alpha")
	if k != "alpha" || has {
		t.Fatalf("bare key should have hasValue=false, got %v", has)
	}
}

func TestParseAddServerArgs(t *testing.T) {
	ip, port, weight, ok := ParseAddServerArgs("127.0.0.1&port=7001&weight=3")
	if !ok || ip != "127.0.0.1" || port != 7001 || weight != 3 {
		t.Fatalf("got ip=%q port=%d weight=%d ok=%v", ip, port, weight, ok)
	}
}

func TestStoreRouterSetGetRoundTrip(t *testing.T) {
	m := localmap.New(16, localmap.DJB2)
	rt := NewStoreRouter(m)
	ctx := context.Background()

	reply := rt.Handle(ctx, []byte("cmd=SET&key=alpha=1"), []byte("cmd=SET&key=alpha=1"))
	if reply.Status != 200 {
		t.Fatalf("SET status = %d, want 200", reply.Status)
	}

	reply = rt.Handle(ctx, []byte("cmd=GET&key=alpha"), []byte("cmd=GET&key=alpha"))
	if reply.Status != 200 || reply.Body != "alpha=1" {
		t.Fatalf("GET = %d %q, want 200 alpha=1", reply.Status, reply.Body)
	}
}

func TestStoreRouterGetMiss(t *testing.T) {
	rt := NewStoreRouter(localmap.New(16, localmap.DJB2))
	body := []byte("cmd=GET&key=missing")
	reply := rt.Handle(context.Background(), body, body)
	if reply.Status != 404 {
		t.Fatalf("status = %d, want 404", reply.Status)
	}
}

func TestStoreRouterDuplicateSet(t *testing.T) {
	rt := NewStoreRouter(localmap.New(16, localmap.DJB2))
	ctx := context.Background()
	first := []byte("cmd=SET&key=alpha=1")
	rt.Handle(ctx, first, first)
	second := []byte("cmd=SET&key=alpha=2")
	reply := rt.Handle(ctx, second, second)
	if reply.Status != 400 {
		t.Fatalf("duplicate SET status = %d, want 400", reply.Status)
	}
}

func TestStoreRouterRemThenGetMisses(t *testing.T) {
	rt := NewStoreRouter(localmap.New(16, localmap.DJB2))
	ctx := context.Background()
	set := []byte("cmd=SET&key=alpha=1")
	rt.Handle(ctx, set, set)
	rem := []byte("cmd=REM&key=alpha")
	reply := rt.Handle(ctx, rem, rem)
	if reply.Status != 200 {
		t.Fatalf("REM status = %d, want 200", reply.Status)
	}
	get := []byte("cmd=GET&key=alpha")
	reply = rt.Handle(ctx, get, get)
	if reply.Status != 404 {
		t.Fatalf("GET after REM status = %d, want 404", reply.Status)
	}
}

func TestCoordinatorForwardsToOwningStore(t *testing.T) {
	r := ring.New(10007, ring.DJB2)
	r.AddServer("10.0.0.1", 9000, 0)

	var forwardedAddr string
	fakeForward := func(ctx context.Context, addr string, raw []byte) ([]byte, error) {
		forwardedAddr = addr
		return []byte("HTTP/1.1 200 OK\r\n\r\nalpha=1"), nil
	}

	rt := NewCoordinatorRouter(r, fakeForward)
	body := []byte("cmd=SET&key=alpha=1")
	reply := rt.Handle(context.Background(), body, body)
	if forwardedAddr != "10.0.0.1:9000" {
		t.Fatalf("forwarded to %q, want 10.0.0.1:9000", forwardedAddr)
	}
	if string(reply.Bytes()) != "HTTP/1.1 200 OK\r\n\r\nalpha=1" {
		t.Fatalf("reply = %q", reply.Bytes())
	}
}

// TestCoordinatorForwardsRawBytesVerbatim is invariant 7 (forward
// transparency): the bytes handed to Forward must be the client's original
// request — envelope included — not the already-unwrapped body used to
// parse the verb, so a STORE receiving a forwarded request sees exactly
// what the client sent.
func TestCoordinatorForwardsRawBytesVerbatim(t *testing.T) {
	r := ring.New(10007, ring.DJB2)
	r.AddServer("10.0.0.1", 9000, 0)

	var gotRaw []byte
	fakeForward := func(ctx context.Context, addr string, raw []byte) ([]byte, error) {
		gotRaw = append([]byte(nil), raw...)
		return []byte("HTTP/1.1 200 OK\r\n\r\nalpha=1"), nil
	}

	rt := NewCoordinatorRouter(r, fakeForward)
	body := []byte("cmd=SET&key=alpha=1")
	raw := []byte("POST / HTTP/1.1\r\nHost: x\r\n\r\ncmd=SET&key=alpha=1")
	rt.Handle(context.Background(), body, raw)

	if string(gotRaw) != string(raw) {
		t.Fatalf("forwarded %q, want the verbatim request %q", gotRaw, raw)
	}
}

func TestCoordinatorForwardErrorMapsTo500(t *testing.T) {
	r := ring.New(10007, ring.DJB2)
	r.AddServer("10.0.0.1", 9000, 0)

	failingForward := func(ctx context.Context, addr string, raw []byte) ([]byte, error) {
		return nil, errors.New("connection refused")
	}

	rt := NewCoordinatorRouter(r, failingForward)
	body := []byte("cmd=SET&key=alpha=1")
	reply := rt.Handle(context.Background(), body, body)
	if reply.Status != 500 {
		t.Fatalf("status = %d, want 500 on forward failure", reply.Status)
	}
}

func TestCoordinatorAddServer(t *testing.T) {
	r := ring.New(10007, ring.DJB2)
	r.AddServer("10.0.0.1", 9000, 0)
	rt := NewCoordinatorRouter(r, nil)

	body := []byte("cmd=ADD&key=127.0.0.1&port=7001&weight=3")
	reply := rt.Handle(context.Background(), body, body)
	if reply.Status != 200 {
		t.Fatalf("ADD status = %d, want 200", reply.Status)
	}
	if r.NumberOfServers() != 1+1+3 {
		t.Fatalf("NumberOfServers = %d, want 5 (1 existing + 1 new primary + 3 virtual)", r.NumberOfServers())
	}
}

func TestCoordinatorRemIsNotImplemented(t *testing.T) {
	r := ring.New(10007, ring.DJB2)
	rt := NewCoordinatorRouter(r, nil)
	body := []byte("cmd=REM&key=alpha")
	reply := rt.Handle(context.Background(), body, body)
	if reply.Status != 501 {
		t.Fatalf("status = %d, want 501", reply.Status)
	}
}
