package main

import (
	"flag"
	"log"
	"os"

	"github.com/cyrilix/robocar-base/cli"
	"github.com/cyrilix/robocar-carla-bridge/pkg/events"
	"github.com/cyrilix/robocar-carla-bridge/pkg/relay"
	"github.com/cyrilix/robocar-carla-bridge/pkg/simulator"
	"go.uber.org/zap"
)

const DefaultClientId = "robocar-carla-bridge"

func main() {
	var mqttBroker, username, password, clientId string
	var topicVehicleStatus, topicVehiclePose, topicCanbus, topicVehicleInfo string
	var topicSteering, topicThrottle string
	var topicControlCmd, topicControlCmdManual, topicManualOverride, topicAutopilot string
	var address string
	var debug bool

	mqttQos := cli.InitIntFlag("MQTT_QOS", 0)
	_, mqttRetain := os.LookupEnv("MQTT_RETAIN")

	cli.InitMqttFlags(DefaultClientId, &mqttBroker, &username, &password, &clientId, &mqttQos, &mqttRetain)

	flag.StringVar(&topicVehicleStatus, "events-topic-vehicle-status", os.Getenv("MQTT_TOPIC_VEHICLE_STATUS"), "Mqtt topic to publish vehicle status, use MQTT_TOPIC_VEHICLE_STATUS if args not set")
	flag.StringVar(&topicVehiclePose, "events-topic-vehicle-pose", os.Getenv("MQTT_TOPIC_VEHICLE_POSE"), "Mqtt topic to publish vehicle pose, use MQTT_TOPIC_VEHICLE_POSE if args not set")
	flag.StringVar(&topicCanbus, "events-topic-canbus", os.Getenv("MQTT_TOPIC_CANBUS"), "Mqtt topic to publish canbus telemetry, use MQTT_TOPIC_CANBUS if args not set")
	flag.StringVar(&topicVehicleInfo, "events-topic-vehicle-info", os.Getenv("MQTT_TOPIC_VEHICLE_INFO"), "Mqtt topic to publish vehicle info (retained), use MQTT_TOPIC_VEHICLE_INFO if args not set")
	flag.StringVar(&topicSteering, "events-topic-steering", os.Getenv("MQTT_TOPIC_STEERING"), "Mqtt topic to publish steering events, use MQTT_TOPIC_STEERING if args not set")
	flag.StringVar(&topicThrottle, "events-topic-throttle", os.Getenv("MQTT_TOPIC_THROTTLE"), "Mqtt topic to publish throttle events, use MQTT_TOPIC_THROTTLE if args not set")
	flag.StringVar(&topicControlCmd, "topic-control-cmd", os.Getenv("MQTT_TOPIC_CONTROL_CMD"), "Mqtt topic to receive control commands, use MQTT_TOPIC_CONTROL_CMD if args not set")
	flag.StringVar(&topicControlCmdManual, "topic-control-cmd-manual", os.Getenv("MQTT_TOPIC_CONTROL_CMD_MANUAL"), "Mqtt topic to receive manual control commands, use MQTT_TOPIC_CONTROL_CMD_MANUAL if args not set")
	flag.StringVar(&topicManualOverride, "topic-manual-override", os.Getenv("MQTT_TOPIC_MANUAL_OVERRIDE"), "Mqtt topic to receive the manual override switch, use MQTT_TOPIC_MANUAL_OVERRIDE if args not set")
	flag.StringVar(&topicAutopilot, "topic-autopilot", os.Getenv("MQTT_TOPIC_AUTOPILOT"), "Mqtt topic to receive the autopilot switch, use MQTT_TOPIC_AUTOPILOT if args not set")
	flag.StringVar(&address, "simulator-address", "127.0.0.1:2000", "Simulator address")
	flag.BoolVar(&debug, "debug", false, "Debug logs")

	flag.Parse()
	if len(os.Args) <= 1 {
		flag.PrintDefaults()
		os.Exit(1)
	}

	config := zap.NewDevelopmentConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	lgr, err := config.Build()
	if err != nil {
		log.Fatalf("unable to init logger: %v", err)
	}
	defer func() {
		if err := lgr.Sync(); err != nil {
			log.Printf("unable to Sync logger: %v\n", err)
		}
	}()
	zap.ReplaceGlobals(lgr)

	client, err := cli.Connect(mqttBroker, username, password, clientId)
	if err != nil {
		zap.S().Fatalf("unable to connect to mqtt broker: %v", err)
	}
	defer client.Disconnect(10)

	vehicle := simulator.New(address)
	defer vehicle.Stop()
	if err := vehicle.Start(); err != nil {
		zap.S().Fatalf("unable to start simulator client: %v", err)
	}

	publisher := events.NewMqttPublisher(client, events.PublisherTopics{
		VehicleStatus: topicVehicleStatus,
		VehiclePose:   topicVehiclePose,
		Canbus:        topicCanbus,
		VehicleInfo:   topicVehicleInfo,
		Steering:      topicSteering,
		Throttle:      topicThrottle,
	})

	r := relay.New(vehicle, publisher, func(id string) {
		zap.S().Debugf("control applied to vehicle '%v'", id)
	})

	subscriber := events.NewSubscriber(client, byte(mqttQos), events.SubscriberTopics{
		ControlCmd:       topicControlCmd,
		ControlCmdManual: topicControlCmdManual,
		ManualOverride:   topicManualOverride,
		Autopilot:        topicAutopilot,
	}, r)
	if err := subscriber.Start(); err != nil {
		zap.S().Fatalf("unable to register mqtt routes: %v", err)
	}
	defer subscriber.Stop()

	cli.HandleExit(r)

	err = r.Start()
	if err != nil {
		zap.S().Fatalf("unable to start service: %v", err)
	}
}
