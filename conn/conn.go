package conn

import (
	"errors"
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"
)

var ErrClosed = errors.New("connection is not running anymore")

// Frame is a single data message read from the client.
type Frame struct {
	Data []byte
	Op   ws.OpCode
}

// Websocket connection wrapper to handle JsonRpc communication
type Conn struct {
	ID        string
	c         net.Conn
	In        chan Frame
	Exit      chan struct{}
	writeLock sync.Mutex
	closeOnce sync.Once
}

// NewConn starts reading from c. In is closed when reading stops.
func NewConn(c net.Conn) *Conn {
	conn := &Conn{
		ID:   uuid.NewString(),
		c:    c,
		In:   make(chan Frame),
		Exit: make(chan struct{}),
	}
	go conn.read()
	return conn
}

// Sends ping message to the connection
func (c *Conn) Ping() error {
	return c.write(ws.OpPing, nil)
}

// Writes text message to the connection
func (c *Conn) Send(msg []byte) error {
	return c.write(ws.OpText, msg)
}

// Writes binary message to the connection
func (c *Conn) SendBinary(msg []byte) error {
	return c.write(ws.OpBinary, msg)
}

// Close sends close frame and closes underlying connection. Safe to call
// more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.Exit)
		c.writeLock.Lock()
		_ = wsutil.WriteServerMessage(c.c, ws.OpClose, ws.NewCloseFrameBody(ws.StatusNormalClosure, ""))
		c.writeLock.Unlock()
		err = c.c.Close()
	})
	return err
}

// Checks if connection is still running. Exit is closed together with
// the connection.
func (c *Conn) Running() bool {
	select {
	case <-c.Exit:
		return false
	default:
	}
	return true
}

func (c *Conn) read() {
	defer close(c.In)
	for {
		msg, op, err := wsutil.ReadClientData(c.c)
		if err != nil {
			c.Close()
			return
		}
		select {
		case c.In <- Frame{Data: msg, Op: op}:
		case <-c.Exit:
			return
		}
	}
}

// Writers share one lock, wsutil does not serialize frames.
func (c *Conn) write(op ws.OpCode, msg []byte) error {
	if !c.Running() {
		return ErrClosed
	}
	c.writeLock.Lock()
	err := wsutil.WriteServerMessage(c.c, op, msg)
	c.writeLock.Unlock()
	if err != nil {
		c.Close()
	}
	return err
}
