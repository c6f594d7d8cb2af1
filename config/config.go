package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/victorjacobs/go-floureon/tuya"
	"gopkg.in/yaml.v3"
)

const HomeAssistantPrefix = "homeassistant"
const TopicPrefix = "floureon"

const (
	DefaultMqttPort     = 1883
	DefaultClientID     = "floureon"
	DefaultListenAddr   = ":8080"
	DefaultPollInterval = 5
)

type Configuration struct {
	Mqtt         Mqtt     `yaml:"mqtt"`
	Http         Http     `yaml:"http"`
	PollInterval int      `yaml:"poll_interval"`
	Devices      []Device `yaml:"devices"`
	// Discovery lists the device ids exposed to Home Assistant. Empty means
	// every configured device.
	Discovery []string `yaml:"discovery"`
}

type Mqtt struct {
	IpAddress string `yaml:"ip_address"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	ClientID  string `yaml:"client_id"`
}

type Http struct {
	ListenAddr string `yaml:"listen_addr"`
}

type Device struct {
	ID                    string     `yaml:"id"`
	Name                  string     `yaml:"name"`
	SerialPort            string     `yaml:"serial_port"`
	BaudRate              int        `yaml:"baud_rate"`
	Unit                  string     `yaml:"unit"`
	TemperatureMultiplier int        `yaml:"temperature_multiplier"`
	TargetTemperatureStep float64    `yaml:"target_temperature_step"`
	Datapoints            Datapoints `yaml:"datapoints"`
	Modes                 []string   `yaml:"modes"`
	FanModes              []string   `yaml:"fan_modes"`
}

type Datapoints struct {
	Power              byte `yaml:"power"`
	Mode               byte `yaml:"mode"`
	TargetTemperature  byte `yaml:"target_temperature"`
	CurrentTemperature byte `yaml:"current_temperature"`
	FanSpeed           byte `yaml:"fan_speed"`
	Unit               byte `yaml:"unit"`
}

// LoadConfiguration reads a YAML configuration file. JSON files are accepted
// as well.
func LoadConfiguration(filename string) (*Configuration, error) {
	var file *os.File
	var err error
	if file, err = os.Open(filename); err != nil {
		return nil, err
	}

	defer file.Close()
	decoder := yaml.NewDecoder(file)
	configuration := &Configuration{}
	if err := decoder.Decode(configuration); err != nil {
		return nil, fmt.Errorf("parse %v: %w", filename, err)
	}

	configuration.applyDefaults()
	if err := configuration.Validate(); err != nil {
		return nil, err
	}

	return configuration, nil
}

func (c *Configuration) applyDefaults() {
	if c.Mqtt.Port == 0 {
		c.Mqtt.Port = DefaultMqttPort
	}
	if c.Mqtt.ClientID == "" {
		c.Mqtt.ClientID = DefaultClientID
	}
	if c.Http.ListenAddr == "" {
		c.Http.ListenAddr = DefaultListenAddr
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if len(c.Discovery) == 0 {
		for _, d := range c.Devices {
			c.Discovery = append(c.Discovery, d.ID)
		}
	}
}

func (c *Configuration) Validate() error {
	if c.Mqtt.IpAddress == "" {
		return errors.New("mqtt.ip_address is required")
	}
	if c.PollInterval < 0 {
		return errors.New("poll_interval must be positive")
	}
	if len(c.Devices) == 0 {
		return errors.New("at least one device is required")
	}

	seen := make(map[string]bool)
	for i, d := range c.Devices {
		if d.ID == "" {
			return fmt.Errorf("devices[%v].id is required", i)
		}
		if seen[d.ID] {
			return fmt.Errorf("duplicate device id %v", d.ID)
		}
		seen[d.ID] = true

		if d.SerialPort == "" {
			return fmt.Errorf("device %v: serial_port is required", d.ID)
		}
		if d.Datapoints.Power == 0 {
			return fmt.Errorf("device %v: datapoints.power is required", d.ID)
		}
		if d.Unit != "" && d.Unit != tuya.UnitCelsius && d.Unit != tuya.UnitFahrenheit {
			return fmt.Errorf("device %v: unit must be %v or %v", d.ID, tuya.UnitCelsius, tuya.UnitFahrenheit)
		}
	}

	return nil
}

func (c *Configuration) PollEvery() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

func (d *Device) SessionOptions() tuya.Options {
	return tuya.Options{
		ID:                    d.ID,
		Name:                  d.Name,
		SerialPort:            d.SerialPort,
		BaudRate:              d.BaudRate,
		Unit:                  d.Unit,
		TemperatureMultiplier: d.TemperatureMultiplier,
		TargetTemperatureStep: d.TargetTemperatureStep,
		Datapoints: tuya.Datapoints{
			Power:              d.Datapoints.Power,
			Mode:               d.Datapoints.Mode,
			TargetTemperature:  d.Datapoints.TargetTemperature,
			CurrentTemperature: d.Datapoints.CurrentTemperature,
			FanSpeed:           d.Datapoints.FanSpeed,
			Unit:               d.Datapoints.Unit,
		},
		Modes:    d.Modes,
		FanModes: d.FanModes,
	}
}

func (m *Mqtt) ClientOptions() *mqtt.ClientOptions {
	return mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%v:%v", m.IpAddress, m.Port)).
		SetClientID(m.ClientID).
		SetUsername(m.Username).
		SetPassword(m.Password).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(client mqtt.Client, err error) {
			log.Printf("MQTT connection lost: %v", err)
		}).
		SetReconnectingHandler(func(client mqtt.Client, opts *mqtt.ClientOptions) {
			log.Printf("MQTT reconnecting")
		})
}
