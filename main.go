package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/victorjacobs/go-floureon/bridge"
	"github.com/victorjacobs/go-floureon/climate"
	"github.com/victorjacobs/go-floureon/config"
	"github.com/victorjacobs/go-floureon/metrics"
	"github.com/victorjacobs/go-floureon/routes"
	"github.com/victorjacobs/go-floureon/tuya"
)

const attachTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "floureon.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfiguration(*configPath)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
		return
	}

	registry := tuya.NewRegistry()
	for _, d := range cfg.Devices {
		log.Printf("Connecting to %v on %v", d.ID, d.SerialPort)

		session, err := tuya.NewSession(d.SessionOptions())
		if err != nil {
			log.Fatalf("Error setting up device: %v", err)
			return
		}

		if err := session.Update(); err != nil {
			log.Printf("Initial poll of %v failed: %v", d.ID, err)
		}

		if err := registry.Add(d.ID, session); err != nil {
			log.Fatalf("Error setting up device: %v", err)
			return
		}
	}

	adapters := climate.Setup(registry, &climate.Discovery{DeviceIDs: cfg.Discovery})
	entities := make([]climate.Entity, 0, len(adapters))
	for _, a := range adapters {
		ctx, cancel := context.WithTimeout(context.Background(), attachTimeout)
		err := a.Attach(ctx)
		cancel()
		if err != nil {
			log.Fatalf("Error attaching %v: %v", a.Name(), err)
			return
		}

		log.Printf("Attached %v, initially %v, modes %v", a.Name(), a.InitialMode(), a.Modes())
		entities = append(entities, a)
	}

	promRegistry := prometheus.NewRegistry()
	collector := metrics.NewCollector()
	collector.MustRegister(promRegistry)

	bridge := bridge.New(entities, collector)

	mqttOpts := cfg.Mqtt.ClientOptions()
	// Configure MQTT subscriptions in the ConnectHandler to make sure they are set up after reconnect
	mqttOpts.SetOnConnectHandler(func(client mqtt.Client) {
		bridge.SubscribeToClimateCommands(client)
		bridge.ResetPublished()
	})

	mqttClient := mqtt.NewClient(mqttOpts)
	if t := mqttClient.Connect(); t.Wait() && t.Error() != nil {
		log.Printf("MQTT connection error: %v", t.Error())
		return
	}

	if err := bridge.RegisterClimates(mqttClient); err != nil {
		log.Printf("Registering climates failed: %v", err)
		return
	}

	go loopSafely("poll", cfg.PollEvery(), func() {
		bridge.PollClimates(mqttClient)
	})

	router := routes.New(bridge, promRegistry)

	go loopSafely("http", time.Second, func() {
		if err := http.ListenAndServe(cfg.Http.ListenAddr, router); err != nil {
			log.Printf("HTTP server stopped: %v", err)
		}
	})

	select {}
}
