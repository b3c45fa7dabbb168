package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdlayher/vsock"

	"github.com/erfannorozi54/highest-voice/api/service"
)

// Server handles HTTP requests from bidders, tippers and dashboard
// clients. It can serve over TCP or, when running inside an enclave,
// over a vsock port.
type Server struct {
	port      int
	vsockPort uint32
	engine    *gin.Engine
}

// New returns a server with the auction routes registered. A non-zero
// vsockPort makes Run listen on vsock instead of TCP.
func New(port int, vsockPort uint32, svc *service.Service) *Server {
	s := &Server{
		port:      port,
		vsockPort: vsockPort,
		engine:    gin.Default(),
	}

	s.registerRouter(svc)
	return s
}

// handlerFunc is the shape every service handler takes: it returns the
// response payload and an error, and the wrapper builds the envelope.
type handlerFunc func(c *gin.Context) (any, error)

func (s *Server) handle(fn handlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := fn(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    service.CodeOf(err),
				"message": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"code": 0,
			"data": data,
		})
	}
}

func (s *Server) registerRouter(svc *service.Service) {
	g := s.engine.Group("auction/v1")

	g.GET("ping", s.handle(svc.Ping))
	g.GET("status", s.handle(svc.Status))
	g.GET("current", s.handle(svc.CurrentAuction))
	g.GET("countdown", s.handle(svc.Countdown))
	g.GET("keeper", s.handle(svc.KeeperStatus))
	g.GET("auctions/:id", s.handle(svc.Auction))
	g.GET("auctions/:id/result", s.handle(svc.AuctionResult))
	g.GET("auctions/:id/progress", s.handle(svc.AuctionProgress))
	g.GET("auctions/:id/post", s.handle(svc.AuctionPost))
	g.GET("participants/:address", s.handle(svc.Participant))

	g.POST("commit", s.handle(svc.Commit))
	g.POST("reveal", s.handle(svc.Reveal))
	g.POST("settle", s.handle(svc.Settle))
	g.POST("tip", s.handle(svc.Tip))
	g.POST("claim", s.handle(svc.Claim))
}

// Run blocks serving requests until the listener fails.
func (s *Server) Run() error {
	if s.vsockPort != 0 {
		return s.runVsock()
	}
	log.Printf("INFO: http server listening on :%d", s.port)
	return s.engine.Run(fmt.Sprintf(":%d", s.port))
}

func (s *Server) runVsock() error {
	ln, err := vsock.Listen(s.vsockPort, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = ln.Close()
	}()

	log.Printf("INFO: http server listening on vsock port %d", s.vsockPort)
	return s.engine.RunListener(ln)
}
