package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/victorjacobs/go-floureon/climate"
)

const namespace = "floureon"

var allModes = []climate.Mode{climate.ModeOff, climate.ModeAuto, climate.ModeCool, climate.ModeFanOnly, climate.ModeHeat}

// Collector tracks climate state as seen by the last poll and the outcome of
// commands received from Home Assistant.
type Collector struct {
	currentTemp *prometheus.GaugeVec
	targetTemp  *prometheus.GaugeVec
	available   *prometheus.GaugeVec
	mode        *prometheus.GaugeVec
	commands    *prometheus.CounterVec
	pollErrors  *prometheus.CounterVec
}

func NewCollector() *Collector {
	labels := []string{"device", "name"}
	return &Collector{
		currentTemp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_temperature",
			Help:      "Current temperature reported by the device, in its unit",
		}, append(labels, "unit")),
		targetTemp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "target_temperature",
			Help:      "Target temperature reported by the device, in its unit",
		}, append(labels, "unit")),
		available: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "available",
			Help:      "Whether the last exchange with the device succeeded (1=up, 0=down)",
		}, labels),
		mode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mode",
			Help:      "Operating mode of the device (1=active)",
		}, append(labels, "mode")),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands received from Home Assistant",
		}, []string{"device", "command", "result"}),
		pollErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_errors_total",
			Help:      "Failed device polls",
		}, []string{"device"}),
	}
}

func (c *Collector) Collectors() []prometheus.Collector {
	return []prometheus.Collector{c.currentTemp, c.targetTemp, c.available, c.mode, c.commands, c.pollErrors}
}

func (c *Collector) MustRegister(registry prometheus.Registerer) {
	registry.MustRegister(c.Collectors()...)
}

// Observe records the state of entity.
func (c *Collector) Observe(entity climate.Entity) {
	id, name := entity.UniqueID(), entity.Name()
	unit := entity.TemperatureUnit().Short()

	c.available.WithLabelValues(id, name).Set(boolToFloat(entity.Available()))
	c.currentTemp.WithLabelValues(id, name, unit).Set(entity.CurrentTemperature())
	c.targetTemp.WithLabelValues(id, name, unit).Set(entity.TargetTemperature())

	current, ok := entity.Mode()
	for _, m := range allModes {
		c.mode.WithLabelValues(id, name, string(m)).Set(boolToFloat(ok && m == current))
	}
}

func (c *Collector) PollFailed(entity climate.Entity) {
	c.pollErrors.WithLabelValues(entity.UniqueID()).Inc()
	c.available.WithLabelValues(entity.UniqueID(), entity.Name()).Set(0)
}

func (c *Collector) CommandHandled(entity climate.Entity, command string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.commands.WithLabelValues(entity.UniqueID(), command, result).Inc()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
