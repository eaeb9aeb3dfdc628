package router

import (
	"context"
	"time"

	"dkvring/internal/pipeline"
)

// RequestTimeout bounds how long a single Handle call (including any
// forward to an owning store) is allowed to take.
const RequestTimeout = 10 * time.Second

// HandlerFor adapts Router.Handle into a pipeline.Handler: write the reply
// and close the connection, the way a worker owns a Record end-to-end.
func (rt *Router) HandlerFor() pipeline.Handler {
	return func(rec *pipeline.Record) {
		defer rec.Close()

		ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
		defer cancel()

		reply := rt.Handle(ctx, rec.Body(), rec.Raw)
		rec.Conn.Write(reply.Bytes())
	}
}
