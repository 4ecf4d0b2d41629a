package simulator

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"
)

func New(address string) *Client {
	return &Client{
		address: address,
		logr:    zap.S().With("simulator", address),
	}
}

/* Client maintains the connection to the simulator engine. It tracks the
latest telemetry frame and the one-shot vehicle configuration, and writes
control and autopilot messages back to the engine. */
type Client struct {
	cancel chan interface{}

	address string
	conn    io.ReadWriteCloser

	muState   sync.Mutex
	telemetry TelemetryMsg
	config    VehicleConfigMsg

	muWrite sync.Mutex

	frameChan     chan FrameEvent
	initFrameChan sync.Once

	logr *zap.SugaredLogger
}

func (c *Client) Start() error {
	c.logr.Info("connect to simulator engine")
	c.cancel = make(chan interface{})
	c.initFrameChan.Do(func() { c.frameChan = make(chan FrameEvent) })
	go c.run()
	return nil
}

func (c *Client) Stop() {
	c.logr.Info("close simulator client")
	close(c.cancel)

	if err := c.Close(); err != nil {
		c.logr.Warnf("unexpected error while simulator connection is closed: %v", err)
	}
}

func (c *Client) Close() error {
	if c.conn == nil {
		c.logr.Warn("no connection to close")
		return nil
	}
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("unable to close connection to simulator: %v", err)
	}
	return nil
}

// NotifyFrame returns the channel where new telemetry frames are notified
func (c *Client) NotifyFrame() <-chan FrameEvent {
	c.initFrameChan.Do(func() { c.frameChan = make(chan FrameEvent) })
	return c.frameChan
}

func (c *Client) run() {
	err := retry.Do(func() error {
		conn, err := connect(c.address)
		if err != nil {
			return fmt.Errorf("unable to connect to simulator at %v", c.address)
		}
		c.conn = conn
		c.logr.Info("connection success")
		return nil
	},
		retry.Delay(1*time.Second),
	)
	if err != nil {
		c.logr.Panicf("unable to connect to simulator: %v", err)
	}

	reader := bufio.NewReader(c.conn)

	err = retry.Do(
		func() error { return c.listen(reader) },
	)
	if err != nil {
		c.logr.Errorf("unable to listen simulator engine: %v", err)
	}
}

func (c *Client) listen(reader *bufio.Reader) error {
	for {
		rawLine, err := reader.ReadBytes('\n')
		if err == io.EOF {
			c.logr.Info("connection closed")
			return err
		}
		if err != nil {
			return fmt.Errorf("unable to read response: %v", err)
		}

		var msg Msg
		err = json.Unmarshal(rawLine, &msg)
		if err != nil {
			c.logr.Errorf("unable to unmarshal simulator msg '%v': %v", string(rawLine), err)
			continue
		}

		switch msg.MsgType {
		case MsgTypeTelemetry:
			var tMsg TelemetryMsg
			err = json.Unmarshal(rawLine, &tMsg)
			if err != nil {
				c.logr.Errorf("unable to unmarshal telemetry msg '%v': %v", string(rawLine), err)
				continue
			}
			c.muState.Lock()
			c.telemetry = tMsg
			c.muState.Unlock()
			c.frameChan <- FrameEvent{Frame: tMsg.Frame, Time: tMsg.Time}
		case MsgTypeVehicleConfig:
			var cfgMsg VehicleConfigMsg
			err = json.Unmarshal(rawLine, &cfgMsg)
			if err != nil {
				c.logr.Errorf("unable to unmarshal vehicle config msg '%v': %v", string(rawLine), err)
				continue
			}
			c.logr.Infof("vehicle '%v' configured with role '%v'", cfgMsg.Id, cfgMsg.RoleName)
			c.muState.Lock()
			c.config = cfgMsg
			c.muState.Unlock()
		}
	}
}

func (c *Client) Id() string {
	c.muState.Lock()
	defer c.muState.Unlock()
	return c.config.Id
}

func (c *Client) TypeId() string {
	c.muState.Lock()
	defer c.muState.Unlock()
	return c.config.TypeId
}

func (c *Client) RoleName() string {
	c.muState.Lock()
	defer c.muState.Unlock()
	return c.config.RoleName
}

func (c *Client) Physics() PhysicsControl {
	c.muState.Lock()
	defer c.muState.Unlock()
	return c.config.Physics
}

func (c *Client) Velocity() Vector3 {
	c.muState.Lock()
	defer c.muState.Unlock()
	return c.telemetry.Velocity
}

func (c *Client) Acceleration() Vector3 {
	c.muState.Lock()
	defer c.muState.Unlock()
	return c.telemetry.Acceleration
}

func (c *Client) Transform() Transform {
	c.muState.Lock()
	defer c.muState.Unlock()
	return c.telemetry.Transform
}

func (c *Client) Control() ControlCommand {
	c.muState.Lock()
	defer c.muState.Unlock()
	return c.telemetry.Control
}

// ApplyControl forwards a control command to the engine
func (c *Client) ApplyControl(cmd *ControlCommand) {
	msg := ControlMsg{
		MsgType:        MsgTypeControl,
		ControlCommand: *cmd,
	}
	c.writeMsg(&msg)
}

// SetAutopilot enables or disables the engine autopilot for the ego vehicle
func (c *Client) SetAutopilot(enabled bool) {
	msg := AutopilotMsg{
		MsgType: MsgTypeSetAutopilot,
		Enabled: enabled,
	}
	c.writeMsg(&msg)
}

func (c *Client) writeMsg(msg interface{}) {
	c.muWrite.Lock()
	defer c.muWrite.Unlock()

	w := bufio.NewWriter(c.conn)
	content, err := json.Marshal(msg)
	if err != nil {
		c.logr.Errorf("unable to marshal msg \"%#v\": %v", msg, err)
		return
	}

	_, err = w.Write(append(content, '\n'))
	if err != nil {
		c.logr.Errorf("unable to write msg \"%#v\" to simulator: %v", msg, err)
		return
	}
	err = w.Flush()
	if err != nil {
		c.logr.Errorf("unable to flush msg \"%#v\" to simulator: %v", msg, err)
		return
	}
}

var connect = func(address string) (io.ReadWriteCloser, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to %v", address)
	}
	return conn, nil
}
