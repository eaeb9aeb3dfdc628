// cmd/coordinator is the entrypoint for a COORDINATOR node: a consistent
// hash ring that routes requests to the STORE node currently responsible
// for a key, speaking the same plain-text protocol as cmd/store.
//
// Example:
//
//	./coordinator -port 5000 -store 127.0.0.1:6000,127.0.0.1:6001 -workers 8
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"dkvring/internal/admin"
	"dkvring/internal/pipeline"
	"dkvring/internal/ring"
	"dkvring/internal/router"
)

// seedVirtualNodes is the virtual replica count used for every store
// seeded onto the ring at startup via -store.
const seedVirtualNodes = 10

func main() {
	port := flag.Int("port", 5000, "listen port")
	adminPort := flag.Int("admin-port", 5080, "admin HTTP port (health/stats), 0 disables it")
	storeList := flag.String("store", "", "comma-separated ip:port list of STORE nodes to seed the ring with")
	workers := flag.Int("workers", 8, "worker pool size")
	flag.Parse()

	if *port < 1000 {
		log.Fatalf("FATAL: port %d must be >= 1000", *port)
	}

	r := ring.New(ring.DefaultSize, ring.Jenkins)
	for _, entry := range strings.Split(*storeList, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		ip, portStr, err := net.SplitHostPort(entry)
		if err != nil {
			log.Fatalf("FATAL: invalid -store entry %q: %v", entry, err)
		}
		p, err := strconv.Atoi(portStr)
		if err != nil {
			log.Fatalf("FATAL: invalid port in -store entry %q: %v", entry, err)
		}
		if _, err := r.AddServer(ip, p, seedVirtualNodes); err != nil {
			log.Fatalf("FATAL: seeding store %s: %v", entry, err)
		}
	}

	rt := router.NewCoordinatorRouter(r, router.DialForward)

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
			Handler:      admin.NewCoordinatorEngine(r),
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
		log.Printf("COORDINATOR listening on %s (admin=%d servers=%d workers=%d)", addr, *adminPort, r.NumberOfServers(), *workers)
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
	log.Println("COORDINATOR shut down")
}
