package simulator

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"

	"go.uber.org/zap"
)

type EngineMock struct {
	initOnce sync.Once

	ln            net.Listener
	muConn        sync.Mutex
	conn          net.Conn
	writer        *bufio.Writer
	newConnection chan net.Conn

	notifyCtrlChan      chan *ControlMsg
	notifyAutopilotChan chan *AutopilotMsg

	logger *zap.SugaredLogger
}

func (c *EngineMock) init() {
	c.notifyCtrlChan = make(chan *ControlMsg)
	c.notifyAutopilotChan = make(chan *AutopilotMsg)
}

func (c *EngineMock) NotifyCtrl() <-chan *ControlMsg {
	c.initOnce.Do(c.init)
	return c.notifyCtrlChan
}

func (c *EngineMock) NotifyAutopilot() <-chan *AutopilotMsg {
	c.initOnce.Do(c.init)
	return c.notifyAutopilotChan
}

func (c *EngineMock) Start() error {
	c.logger = zap.S().With("simulator", "mock")
	c.initOnce.Do(c.init)
	c.newConnection = make(chan net.Conn)
	ln, err := net.Listen("tcp", "127.0.0.1:")
	c.ln = ln
	if err != nil {
		return fmt.Errorf("unable to listen on port: %v", err)
	}
	go func() {
		for {
			conn, err := c.ln.Accept()
			if err != nil {
				c.logger.Debugf("connection close: %v", err)
				break
			}
			if c.newConnection == nil {
				break
			}
			go c.handleConnection(conn)
			c.newConnection <- conn
		}
	}()
	return nil
}

func (c *EngineMock) Addr() string {
	return c.ln.Addr().String()
}

func (c *EngineMock) WaitConnection() {
	c.muConn.Lock()
	defer c.muConn.Unlock()
	c.logger.Debug("engine waiting connection")
	if c.conn != nil {
		return
	}
	conn := <-c.newConnection
	c.logger.Debug("new connection")

	c.conn = conn
	c.writer = bufio.NewWriter(conn)
}

func (c *EngineMock) EmitMsg(p string) (err error) {
	c.muConn.Lock()
	defer c.muConn.Unlock()
	_, err = c.writer.WriteString(p + "\n")
	if err != nil {
		c.logger.Errorf("unable to write response: %v", err)
	}
	if err == io.EOF {
		c.logger.Info("connection closed")
		return err
	}
	err = c.writer.Flush()
	return err
}

func (c *EngineMock) handleConnection(conn net.Conn) {
	reader := bufio.NewReader(conn)
	for {
		rawMsg, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				c.logger.Debug("connection closed")
				break
			}
			c.logger.Errorf("unable to read request: %v", err)
			return
		}
		var msg Msg
		err = json.Unmarshal(rawMsg, &msg)
		if err != nil {
			c.logger.Errorf("unable to unmarshal msg \"%v\": %v", string(rawMsg), err)
			continue
		}
		switch msg.MsgType {
		case MsgTypeControl:
			var msgControl ControlMsg
			err = json.Unmarshal(rawMsg, &msgControl)
			if err != nil {
				c.logger.Errorf("unable to unmarshal control msg \"%v\": %v", string(rawMsg), err)
				continue
			}
			c.notifyCtrlChan <- &msgControl
		case MsgTypeSetAutopilot:
			var msgAutopilot AutopilotMsg
			err = json.Unmarshal(rawMsg, &msgAutopilot)
			if err != nil {
				c.logger.Errorf("unable to unmarshal autopilot msg \"%v\": %v", string(rawMsg), err)
				continue
			}
			c.notifyAutopilotChan <- &msgAutopilot
		}
	}
}

func (c *EngineMock) Close() error {
	c.logger.Debug("close mock engine")
	close(c.newConnection)
	c.newConnection = nil
	err := c.ln.Close()
	if err != nil {
		return fmt.Errorf("unable to close mock engine: %v", err)
	}
	if c.notifyCtrlChan != nil {
		close(c.notifyCtrlChan)
	}
	if c.notifyAutopilotChan != nil {
		close(c.notifyAutopilotChan)
	}
	return nil
}
