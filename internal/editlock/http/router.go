package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/lock-sweeper/internal/editlock/http/middleware"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Health      Pinger
	Sweeping    func() bool
	Reports     ReportReader
	Trigger     Trigger
	Gatherer    prometheus.Gatherer
	Logger      *zap.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(dep.Logger))

	NewHealthHandler(dep.ServiceName, dep.Version, dep.Health, dep.Sweeping).RegisterRoutes(r)

	if dep.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(dep.Gatherer, promhttp.HandlerOpts{})))
	}

	h := NewSweepHandler(dep.Reports, dep.Trigger, dep.Logger)

	api := r.Group("/api/v1/sweeps")
	api.GET("", h.List)
	api.GET("/latest", h.Latest)
	api.GET("/:id", h.Get)
	api.POST("", h.Trigger)

	return r
}
