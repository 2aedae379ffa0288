// Package mqtt subscribes to fleet status topics and applies external
// resource status changes to the assignment manager. A status change that
// takes a committed resource out of service triggers an urgent sweep.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/skyops/fleetmatch/core/assignment"
	"github.com/skyops/fleetmatch/core/model"
	"github.com/skyops/fleetmatch/core/reassign"
	"github.com/skyops/fleetmatch/infra/logger"
)

// Config defines the connection parameters for the status listener.
type Config struct {
	Enabled    bool   `json:"enabled"`
	Broker     string `json:"broker"`
	ClientID   string `json:"client_id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	PilotTopic string `json:"pilot_topic"`
	DroneTopic string `json:"drone_topic"`
	QoS        byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "fleetmatch-" + uuid.NewString()[:8]
	}
	if c.PilotTopic == "" {
		c.PilotTopic = "fleet/status/pilot/+"
	}
	if c.DroneTopic == "" {
		c.DroneTopic = "fleet/status/drone/+"
	}
}

// statusUpdate is the expected payload on status topics.
type statusUpdate struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// StatusListener wires broker messages into the assignment manager.
type StatusListener struct {
	cli     paho.Client
	cfg     Config
	mgr     *assignment.Manager
	sweeper *reassign.Service
	log     logger.Logger
}

// NewStatusListener connects to the broker and subscribes to both status
// topics. The sweeper may be nil, in which case updates are applied without
// triggering reassignment.
func NewStatusListener(cfg Config, mgr *assignment.Manager, sweeper *reassign.Service) (*StatusListener, error) {
	if mgr == nil {
		return nil, fmt.Errorf("mqtt: nil assignment manager")
	}
	cfg.SetDefaults()
	log := logger.New("status-listener")
	l := &StatusListener{cfg: cfg, mgr: mgr, sweeper: sweeper, log: log}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true)
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(cfg.PilotTopic, cfg.QoS, l.onPilotStatus); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
		if token := c.Subscribe(cfg.DroneTopic, cfg.QoS, l.onDroneStatus); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}

	c := paho.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	l.cli = c
	return l, nil
}

func (l *StatusListener) onPilotStatus(_ paho.Client, msg paho.Message) {
	var upd statusUpdate
	if err := json.Unmarshal(msg.Payload(), &upd); err != nil {
		l.log.Warnf("bad pilot status payload on %s: %v", msg.Topic(), err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pilot, ok := l.mgr.Pilot(upd.ID)
	if !ok {
		l.log.Warnf("status update for unknown pilot %s", upd.ID)
		return
	}
	if err := l.mgr.UpdatePilotStatus(ctx, upd.ID, model.PilotStatus(upd.Status)); err != nil {
		l.log.Errorf("pilot status update: %v", err)
		return
	}
	l.log.Infof("pilot %s status changed to %s", upd.ID, upd.Status)
	if pilot.CurrentAssignment != "" && model.PilotStatus(upd.Status) != model.PilotAvailable {
		l.trigger(ctx, pilot.CurrentAssignment)
	}
}

func (l *StatusListener) onDroneStatus(_ paho.Client, msg paho.Message) {
	var upd statusUpdate
	if err := json.Unmarshal(msg.Payload(), &upd); err != nil {
		l.log.Warnf("bad drone status payload on %s: %v", msg.Topic(), err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	drone, ok := l.mgr.Drone(upd.ID)
	if !ok {
		l.log.Warnf("status update for unknown drone %s", upd.ID)
		return
	}
	if err := l.mgr.UpdateDroneStatus(ctx, upd.ID, model.DroneStatus(upd.Status)); err != nil {
		l.log.Errorf("drone status update: %v", err)
		return
	}
	l.log.Infof("drone %s status changed to %s", upd.ID, upd.Status)
	if drone.CurrentAssignment != "" && model.DroneStatus(upd.Status) != model.DroneAvailable {
		l.trigger(ctx, drone.CurrentAssignment)
	}
}

func (l *StatusListener) trigger(ctx context.Context, missionID string) {
	if l.sweeper == nil {
		return
	}
	out, err := l.sweeper.ProcessOne(ctx, missionID)
	if err != nil && !errors.Is(err, reassign.ErrSweepInProgress) {
		l.log.Errorf("urgent reassignment for mission %s: %v", missionID, err)
		return
	}
	l.log.Infof("urgent reassignment for mission %s: %s", missionID, out)
}

// Close disconnects from the broker.
func (l *StatusListener) Close() error {
	if l.cli != nil && l.cli.IsConnected() {
		l.cli.Disconnect(250)
	}
	return nil
}
