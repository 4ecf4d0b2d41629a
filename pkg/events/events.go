package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cyrilix/robocar-carla-bridge/pkg/messages"
	"github.com/cyrilix/robocar-protobuf/go/events"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/protobuf/proto"
	"go.uber.org/zap"
)

// PublisherTopics lists the outbound topics, an empty topic disables the route
type PublisherTopics struct {
	VehicleStatus string
	VehiclePose   string
	Canbus        string
	VehicleInfo   string
	Steering      string
	Throttle      string
}

func NewMqttPublisher(client mqtt.Client, topics PublisherTopics) *MqttPublisher {
	return &MqttPublisher{
		client: client,
		topics: topics,
	}
}

type MqttPublisher struct {
	client mqtt.Client
	topics PublisherTopics
}

func (m *MqttPublisher) PublishStatus(msg *messages.VehicleStatus) {
	m.publishJson(m.topics.VehicleStatus, msg, false)
}

func (m *MqttPublisher) PublishPose(msg *messages.PoseStamped) {
	m.publishJson(m.topics.VehiclePose, msg, false)
}

func (m *MqttPublisher) PublishCanbus(msg *messages.Canbus) {
	m.publishJson(m.topics.Canbus, msg, false)
}

// PublishVehicleInfo publishes in retained mode, late subscribers see the
// last vehicle configuration
func (m *MqttPublisher) PublishVehicleInfo(msg *messages.VehicleInfo) {
	m.publishJson(m.topics.VehicleInfo, msg, true)
}

func (m *MqttPublisher) PublishSteering(msg *events.SteeringMessage) {
	m.publishProto(m.topics.Steering, msg)
}

func (m *MqttPublisher) PublishThrottle(msg *events.ThrottleMessage) {
	m.publishProto(m.topics.Throttle, msg)
}

func (m *MqttPublisher) publishJson(topic string, msg interface{}, retain bool) {
	if topic == "" {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		zap.S().Errorf("unable to marshal msg to topic %v: %v", topic, err)
		return
	}
	if err = m.publish(topic, payload, retain); err != nil {
		zap.S().Errorf("unable to publish to topic %v: %v", topic, err)
	}
}

func (m *MqttPublisher) publishProto(topic string, msg proto.Message) {
	if topic == "" {
		return
	}
	payload, err := proto.Marshal(msg)
	if err != nil {
		zap.S().Errorf("unable to marshal protobuf message: %v", err)
		return
	}
	if err = m.publish(topic, payload, false); err != nil {
		zap.S().Errorf("unable to publish to topic %v: %v", topic, err)
	}
}

func (m *MqttPublisher) publish(topic string, payload []byte, retain bool) error {
	token := m.client.Publish(topic, 0, retain, payload)
	token.WaitTimeout(10 * time.Millisecond)
	if err := token.Error(); err != nil {
		return fmt.Errorf("unable to publish to topic: %v", err)
	}
	return nil
}

// ControlHandler receives the decoded inbound commands
type ControlHandler interface {
	OnControlCommand(msg *messages.VehicleControl, manualOverride bool)
	OnManualOverride(enabled bool)
	OnAutopilot(enabled bool)
}

// SubscriberTopics lists the inbound topics, an empty topic disables the route
type SubscriberTopics struct {
	ControlCmd       string
	ControlCmdManual string
	ManualOverride   string
	Autopilot        string
}

func NewSubscriber(client mqtt.Client, qos byte, topics SubscriberTopics, handler ControlHandler) *Subscriber {
	return &Subscriber{
		client:  client,
		qos:     qos,
		topics:  topics,
		handler: handler,
	}
}

// Subscriber registers the inbound mqtt routes and forwards decoded commands
// to the handler
type Subscriber struct {
	client  mqtt.Client
	qos     byte
	topics  SubscriberTopics
	handler ControlHandler

	registered []string
}

func (s *Subscriber) Start() error {
	routes := []struct {
		topic   string
		handler mqtt.MessageHandler
	}{
		{s.topics.ControlCmd, func(_ mqtt.Client, message mqtt.Message) {
			s.onControlCommand(message, false)
		}},
		{s.topics.ControlCmdManual, func(_ mqtt.Client, message mqtt.Message) {
			s.onControlCommand(message, true)
		}},
		{s.topics.ManualOverride, func(_ mqtt.Client, message mqtt.Message) {
			s.onManualOverride(message)
		}},
		{s.topics.Autopilot, func(_ mqtt.Client, message mqtt.Message) {
			s.onAutopilot(message)
		}},
	}

	for _, route := range routes {
		if route.topic == "" {
			continue
		}
		zap.S().Infof("configure mqtt route on topic %v", route.topic)
		token := s.client.Subscribe(route.topic, s.qos, route.handler)
		token.Wait()
		if err := token.Error(); err != nil {
			return fmt.Errorf("unable to subscribe to topic %v: %v", route.topic, err)
		}
		s.registered = append(s.registered, route.topic)
	}
	return nil
}

func (s *Subscriber) Stop() {
	for _, topic := range s.registered {
		token := s.client.Unsubscribe(topic)
		token.Wait()
		if err := token.Error(); err != nil {
			zap.S().Warnf("unable to unsubscribe from topic %v: %v", topic, err)
		}
	}
	s.registered = nil
}

func (s *Subscriber) onControlCommand(message mqtt.Message, manualOverride bool) {
	var msg messages.VehicleControl
	err := json.Unmarshal(message.Payload(), &msg)
	if err != nil {
		zap.S().Errorf("unable to unmarshal control msg '%v': %v", string(message.Payload()), err)
		return
	}
	s.handler.OnControlCommand(&msg, manualOverride)
}

func (s *Subscriber) onManualOverride(message mqtt.Message) {
	var msg messages.BoolMsg
	err := json.Unmarshal(message.Payload(), &msg)
	if err != nil {
		zap.S().Errorf("unable to unmarshal override msg '%v': %v", string(message.Payload()), err)
		return
	}
	s.handler.OnManualOverride(msg.Data)
}

func (s *Subscriber) onAutopilot(message mqtt.Message) {
	var msg messages.BoolMsg
	err := json.Unmarshal(message.Payload(), &msg)
	if err != nil {
		zap.S().Errorf("unable to unmarshal autopilot msg '%v': %v", string(message.Payload()), err)
		return
	}
	s.handler.OnAutopilot(msg.Data)
}
