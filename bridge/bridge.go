package bridge

import (
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/victorjacobs/go-floureon/climate"
	"github.com/victorjacobs/go-floureon/homeassistant"
	"github.com/victorjacobs/go-floureon/metrics"
)

const (
	payloadOnline  = "online"
	payloadOffline = "offline"
)

// Bridge exposes climate entities to Home Assistant over MQTT.
type Bridge struct {
	metrics *metrics.Collector

	mutex   sync.Mutex
	entries []*entry
}

func New(entities []climate.Entity, collector *metrics.Collector) *Bridge {
	b := &Bridge{metrics: collector}

	for _, e := range entities {
		log.Printf("Exposing %v (%v)", e.Name(), e.UniqueID())
		b.entries = append(b.entries, &entry{
			entity:    e,
			topics:    homeassistant.ClimateTopics(e.UniqueID()),
			published: make(map[string]string),
		})
	}

	return b
}

func (b *Bridge) RegisterClimates(mqttClient mqtt.Client) error {
	homeAssistantClient := homeassistant.NewClient(mqttClient)

	for _, e := range b.entries {
		if err := homeAssistantClient.RegisterClimate(e.entity); err != nil {
			return err
		}
		log.Printf("Registered climate %v", e.entity.Name())
	}

	return nil
}

// SubscribeToClimateCommands must run again after every reconnect.
func (b *Bridge) SubscribeToClimateCommands(mqttClient mqtt.Client) {
	for _, e := range b.entries {
		e := e

		b.subscribe(mqttClient, e.topics.ModeCommand, func(payload string) {
			mode := climate.Mode(payload)
			b.handled(e, "mode", e.entity.SetMode(mode))
		})

		b.subscribe(mqttClient, e.topics.TemperatureCommand, func(payload string) {
			var req climate.TemperatureRequest
			if temperature, err := strconv.ParseFloat(payload, 64); err != nil {
				log.Printf("Ignoring temperature %q for %v: %v", payload, e.entity.Name(), err)
			} else {
				req.Temperature = &temperature
			}
			b.handled(e, "temperature", e.entity.SetTemperature(req))
		})

		b.subscribe(mqttClient, e.topics.FanModeCommand, func(payload string) {
			b.handled(e, "fan_mode", e.entity.SetFanMode(payload))
		})
	}
}

func (b *Bridge) subscribe(mqttClient mqtt.Client, topic string, handle func(payload string)) {
	if t := mqttClient.Subscribe(topic, 0, func(client mqtt.Client, msg mqtt.Message) {
		handle(strings.TrimSpace(string(msg.Payload())))
	}); t.Wait() && t.Error() != nil {
		log.Printf("MQTT receive error: %v", t.Error())
	}
}

func (b *Bridge) handled(e *entry, command string, err error) {
	if err != nil {
		log.Printf("Error handling %v command for %v: %v", command, e.entity.Name(), err)
	}
	if b.metrics != nil {
		b.metrics.CommandHandled(e.entity, command, err)
	}
}

// PollClimates refreshes every entity and publishes the states that changed.
// Device exchanges run without holding the mutex so snapshots stay responsive.
func (b *Bridge) PollClimates(mqttClient mqtt.Client) {
	for _, e := range b.entries {
		err := e.entity.Update()

		b.mutex.Lock()
		b.publishEntry(mqttClient, e, err)
		b.mutex.Unlock()
	}
}

// publishEntry must be called with the mutex held.
func (b *Bridge) publishEntry(mqttClient mqtt.Client, e *entry, updateErr error) {
	if updateErr != nil {
		log.Printf("Polling %v failed: %v", e.entity.Name(), updateErr)
		if b.metrics != nil {
			b.metrics.PollFailed(e.entity)
		}
		b.publish(mqttClient, e, e.topics.Availability, payloadOffline)
		return
	}
	e.polledAt = time.Now()

	availability := payloadOffline
	if e.entity.Available() {
		availability = payloadOnline
	}
	b.publish(mqttClient, e, e.topics.Availability, availability)

	for _, def := range stateDefinitions {
		value, ok := def.get(e.entity)
		if def.name == "mode" {
			if !ok && !e.modeUntranslatable {
				log.Printf("%v reports a mode that cannot be translated", e.entity.Name())
			}
			e.modeUntranslatable = !ok
		}
		if !ok {
			continue
		}
		b.publish(mqttClient, e, def.topic(e.topics), value)
	}

	if b.metrics != nil {
		b.metrics.Observe(e.entity)
	}
}

// publish only sends values that differ from the last published one. Caller
// must hold the mutex.
func (b *Bridge) publish(mqttClient mqtt.Client, e *entry, topic string, value string) {
	if last, ok := e.published[topic]; ok && last == value {
		return
	}

	if t := mqttClient.Publish(topic, 0, true, value); t.Wait() && t.Error() != nil {
		log.Printf("MQTT publishing failed: %v", t.Error())
		return
	}

	e.published[topic] = value
}

// ResetPublished forgets what was published so the next poll sends every
// state again, e.g. after the broker restarted.
func (b *Bridge) ResetPublished() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for _, e := range b.entries {
		e.published = make(map[string]string)
	}
}

func (b *Bridge) States() []State {
	states := make([]State, 0, len(b.entries))
	for _, e := range b.entries {
		states = append(states, snapshot(e.entity, b.polledAt(e)))
	}
	return states
}

func (b *Bridge) State(id string) (State, bool) {
	for _, e := range b.entries {
		if e.entity.UniqueID() == id {
			return snapshot(e.entity, b.polledAt(e)), true
		}
	}
	return State{}, false
}

func (b *Bridge) polledAt(e *entry) time.Time {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return e.polledAt
}

func snapshot(entity climate.Entity, polledAt time.Time) State {
	state := State{
		ID:                 entity.UniqueID(),
		Name:               entity.Name(),
		Available:          entity.Available(),
		Modes:              climate.ModeNames(entity.Modes()),
		CurrentTemperature: entity.CurrentTemperature(),
		TargetTemperature:  entity.TargetTemperature(),
		TemperatureStep:    entity.TargetTemperatureStep(),
		TemperatureUnit:    string(entity.TemperatureUnit()),
		MinTemp:            entity.MinTemp(),
		MaxTemp:            entity.MaxTemp(),
		SupportedFeatures:  int(entity.SupportedFeatures()),
		LastPolled:         polledAt,
	}

	if mode, ok := entity.Mode(); ok {
		state.Mode = string(mode)
	}
	if entity.SupportedFeatures().Has(climate.FeatureFanMode) {
		state.FanMode = entity.FanMode()
		state.FanModes = entity.FanModes()
	}

	return state
}
