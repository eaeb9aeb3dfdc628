// cmd/loadbalancer is the entrypoint for the LOAD BALANCER: it accepts
// plain HTTP GET connections and relays each one to a backend chosen
// either by a sticky forwarderid cookie or at random, plus a small admin
// HTTP surface reporting per-backend forward counts.
//
// Example:
//
//	./loadbalancer -port 5555 -admin-port 5580 127.0.0.1:6000 127.0.0.1:6001
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dkvring/internal/admin"
	"dkvring/internal/balancer"
)

func main() {
	port := flag.Int("port", 5555, "listen port")
	adminPort := flag.Int("admin-port", 5580, "admin HTTP port (health/stats), 0 disables it")
	workers := flag.Int("workers", 8, "forwarder pool size")
	flag.Parse()

	backends := flag.Args()
	if len(backends) == 0 {
		fmt.Fprintln(os.Stderr, "usage: loadbalancer [-port P] [-admin-port P] [-workers N] ip:port [ip:port ...]")
		os.Exit(1)
	}

	pool := balancer.NewPool(backends)

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
			Handler:      admin.NewBalancerEngine(pool),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		}
		go func() {
			if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("admin server error: %v", err)
			}
		}()
	}

	q := balancer.NewQueue()

	go func() {
		log.Printf("LOAD BALANCER listening on %s (admin=%d), backends=%v", addr, *adminPort, backends)
		if err := balancer.Accept(ctx, ln, q, pool); err != nil {
			log.Printf("accept loop: %v", err)
		}
	}()

	balancer.RunForwarders(ctx, q, pool, *workers)

	if adminSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		adminSrv.Shutdown(shutdownCtx)
	}
	log.Println("LOAD BALANCER shut down")
}
