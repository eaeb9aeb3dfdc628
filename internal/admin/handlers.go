package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dkvring/internal/balancer"
	"dkvring/internal/localmap"
	"dkvring/internal/ring"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(Logger(), Recovery())
	return e
}

// NewStoreEngine returns an admin engine reporting the local map's size.
func NewStoreEngine(m *localmap.Map) *gin.Engine {
	e := newEngine()
	e.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "role": "store"})
	})
	e.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"keys": m.Len()})
	})
	return e
}

// NewCoordinatorEngine returns an admin engine reporting ring shape.
func NewCoordinatorEngine(r *ring.Ring) *gin.Engine {
	e := newEngine()
	e.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "role": "coordinator"})
	})
	e.GET("/stats", func(c *gin.Context) {
		servers := r.Servers()
		out := make([]gin.H, len(servers))
		for i, s := range servers {
			out[i] = gin.H{
				"ip": s.IP, "port": s.Port,
				"range_start": s.RangeStart, "range_end": s.RangeEnd,
				"is_virtual": s.IsVirtual, "replica_index": s.ReplicaIndex,
			}
		}
		c.JSON(http.StatusOK, gin.H{"server_slots": r.NumberOfServers(), "servers": out})
	})
	return e
}

// NewBalancerEngine returns an admin engine reporting per-backend forward
// counts.
func NewBalancerEngine(pool *balancer.Pool) *gin.Engine {
	e := newEngine()
	e.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "role": "loadbalancer"})
	})
	e.GET("/stats", func(c *gin.Context) {
		out := make([]gin.H, pool.Len())
		for i := 0; i < pool.Len(); i++ {
			b := pool.At(i)
			out[i] = gin.H{"addr": b.Addr, "forwards": b.ForwardCount()}
		}
		c.JSON(http.StatusOK, gin.H{"backends": out})
	})
	return e
}
