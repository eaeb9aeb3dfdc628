// cmd/store is the entrypoint for a STORE node: an in-memory key-value
// table reachable over the plain-text cmd=VERB&key=... protocol, plus a
// small read-only admin HTTP surface for health/stats probes.
//
// Example:
//
//	./store -port 6000 -admin-port 6080 -buckets 1024 -workers 8
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"dkvring/internal/admin"
	"dkvring/internal/localmap"
	"dkvring/internal/pipeline"
	"dkvring/internal/router"
)

func main() {
	port := flag.Int("port", 6000, "wire-protocol listen port, must be >= 1000")
	adminPort := flag.Int("admin-port", 6080, "admin HTTP port (health/stats), 0 disables it")
	buckets := flag.Int("buckets", 1024, "local map bucket count")
	workers := flag.Int("workers", 8, "worker pool size")
	flag.Parse()

	if *port < 1000 {
		log.Fatalf("FATAL: port %d must be >= 1000", *port)
	}

	m := localmap.New(*buckets, localmap.DJB2)
	rt := router.NewStoreRouter(m)

	addr := fmt.Sprintf(":%d", *port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("listen %s: %v", addr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var adminSrv *http.Server
	if *adminPort != 0 {
		adminSrv = &http.Server{
			Addr:         fmt.Sprintf(":%d", *adminPort),
			Handler:      admin.NewStoreEngine(m),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		}
		go func() {
			if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("admin server error: %v", err)
			}
		}()
	}

	q := pipeline.NewQueue()
	pool := pipeline.NewPool(q, *workers, rt.HandlerFor())

	go func() {
		log.Printf("STORE listening on %s (admin=%d buckets=%d workers=%d)", addr, *adminPort, *buckets, *workers)
		if err := pipeline.Accept(ctx, ln, q); err != nil {
			log.Printf("accept loop: %v", err)
		}
	}()

	pool.Run(ctx)

	if adminSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		adminSrv.Shutdown(shutdownCtx)
	}
	log.Println("STORE shut down")
}
