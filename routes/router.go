package routes

import (
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/victorjacobs/go-floureon/bridge"
)

func New(b *bridge.Bridge, registry *prometheus.Registry) *httprouter.Router {
	router := httprouter.New()
	router.GET("/state", State(b))
	router.GET("/state/:id", Device(b))
	router.Handler("GET", "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return router
}
