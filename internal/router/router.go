package router

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"dkvring/internal/localmap"
	"dkvring/internal/ring"
)

// Role distinguishes a STORE router (owns a Map) from a COORDINATOR router
// (owns a Ring and forwards to the owning STORE).
type Role int

const (
	RoleStore Role = iota
	RoleCoordinator
)

// Forwarder opens a connection to addr, writes raw verbatim, and returns
// the full reply. Swappable so tests can exercise Handle's forwarding
// branch without a real second process listening.
type Forwarder func(ctx context.Context, addr string, raw []byte) ([]byte, error)

// Router dispatches a parsed command to the local Map or, on a
// COORDINATOR, to the owning STORE.
type Router struct {
	Role    Role
	Map     *localmap.Map // non-nil on RoleStore
	Ring    *ring.Ring    // non-nil on RoleCoordinator
	Forward Forwarder
}

// NewStoreRouter builds a STORE router backed by m.
func NewStoreRouter(m *localmap.Map) *Router {
	return &Router{Role: RoleStore, Map: m}
}

// NewCoordinatorRouter builds a COORDINATOR router backed by r, dialing
// owning stores with fwd (DialForward if nil).
func NewCoordinatorRouter(r *ring.Ring, fwd Forwarder) *Router {
	if fwd == nil {
		fwd = DialForward
	}
	return &Router{Role: RoleCoordinator, Ring: r, Forward: fwd}
}

// Handle parses body and dispatches it per the verb table, returning the
// Reply to write back to the client. raw is the verbatim bytes the client
// originally sent (envelope included) — it is what gets relayed unchanged
// to an owning STORE when this is a COORDINATOR, so the STORE sees exactly
// what the client sent rather than body's already-unwrapped command.
func (rt *Router) Handle(ctx context.Context, body, raw []byte) Reply {
	verb, arg, ok := ParseCommand(body)
	if !ok {
		return NewReply(400, "bad request")
	}

	switch verb {
	case "GET":
		return rt.handleGet(ctx, arg, raw)
	case "SET":
		return rt.handleSet(ctx, arg, raw)
	case "REM":
		return rt.handleRem(arg)
	case "ADD":
		return rt.handleAdd(arg)
	case "DEL":
		return rt.handleDel(arg)
	case "SYNC":
		return NewReply(501, "not implemented")
	default:
		return NewReply(501, "not implemented")
	}
}

func (rt *Router) handleGet(ctx context.Context, arg string, raw []byte) Reply {
	key, _, _ := ParseKeyValue(arg)

	if rt.Role == RoleStore {
		v, ok := rt.Map.Lookup(key)
		if !ok {
			return NewReply(404, "not found")
		}
		return NewReply(200, fmt.Sprintf("%s=%s", key, v))
	}

	owner, ok := rt.Ring.LookupKey(key)
	if !ok {
		return NewReply(404, "not found")
	}
	return rt.forward(ctx, owner.IP, owner.Port, raw)
}

func (rt *Router) handleSet(ctx context.Context, arg string, raw []byte) Reply {
	key, value, hasValue := ParseKeyValue(arg)
	if !hasValue {
		return NewReply(400, "bad request")
	}

	if rt.Role == RoleStore {
		if !rt.Map.Insert(key, value) {
			return NewReply(400, "duplicate key")
		}
		return NewReply(200, "ok")
	}

	owner, err := rt.Ring.AddKey(key)
	if err != nil {
		return NewReply(404, "not found")
	}
	return rt.forward(ctx, owner.IP, owner.Port, raw)
}

func (rt *Router) handleRem(arg string) Reply {
	key, _, _ := ParseKeyValue(arg)

	if rt.Role == RoleStore {
		if !rt.Map.Remove(key) {
			return NewReply(404, "not found")
		}
		return NewReply(200, "ok")
	}
	return NewReply(501, "not implemented")
}

func (rt *Router) handleAdd(arg string) Reply {
	if rt.Role == RoleStore {
		return NewReply(400, "bad request")
	}

	ip, port, weight, ok := ParseAddServerArgs(arg)
	if !ok {
		return NewReply(400, "bad request")
	}
	if _, err := rt.Ring.AddServer(ip, port, weight); err != nil {
		return NewReply(400, err.Error())
	}
	return NewReply(200, "ok")
}

func (rt *Router) handleDel(arg string) Reply {
	if rt.Role == RoleStore {
		return NewReply(400, "bad request")
	}

	ip, port, ok := ParseRemoveServerArgs(arg)
	if !ok {
		return NewReply(400, "bad request")
	}
	if err := rt.Ring.RemoveServer(ip, port); err != nil {
		return NewReply(404, err.Error())
	}
	return NewReply(200, "ok")
}

// forward dials the owning store and relays its reply verbatim. A dial,
// write, or read failure becomes a 500 rather than being dropped silently.
func (rt *Router) forward(ctx context.Context, ip string, port int, raw []byte) Reply {
	addr := fmt.Sprintf("%s:%d", ip, port)
	reply, err := rt.Forward(ctx, addr, raw)
	if err != nil {
		return NewReply(500, "forwarding failed")
	}
	return Reply{Raw: reply}
}

// DialForward is the default Forwarder: open a fresh TCP connection to
// addr, write raw unchanged, and read the full reply.
func DialForward(ctx context.Context, addr string, raw []byte) ([]byte, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(10 * time.Second))
	}

	if _, err := conn.Write(raw); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if len(buf) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return buf, nil
}

