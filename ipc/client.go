package ipc

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"gamestringer/textenc"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Client is the injected module's end of the channel. It correlates
// responses to outstanding requests by request id; responses may arrive in
// any order. A response that arrives after its waiter timed out is
// dropped.
type Client struct {
	pipeName string
	codec    Codec

	mu        sync.Mutex
	conn      net.Conn
	reader    *bufio.Reader
	connected atomic.Bool
	closed    atomic.Bool

	nextID  atomic.Uint32
	writeMu sync.Mutex

	waiterMu sync.Mutex
	waiters  map[uint32]chan string

	// jsonMu serializes round trips on the legacy JSON framing, which has
	// no request ids.
	jsonMu sync.Mutex

	// OnConfigUpdate receives CONFIG_UPDATE payload text, if set
	OnConfigUpdate func(string)

	log *logger.Logger
}

// NewClient prepares a client for the named channel. Binary framing unless
// a codec is set with UseCodec.
func NewClient(pipeName string) *Client {
	return &Client{
		pipeName: pipeName,
		codec:    BinaryCodec{},
		waiters:  make(map[uint32]chan string),
		log:      logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "ipc-client")),
	}
}

// UseCodec switches the framing; must be called before Connect.
func (c *Client) UseCodec(codec Codec) {
	c.codec = codec
}

func (c *Client) isJSON() bool {
	_, ok := c.codec.(JSONCodec)
	return ok
}

// IsConnected reports whether the receive loop is live
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// Attach adopts an established connection and starts the receive loop.
// Connect uses it after dialing; tests drive it with an in-memory pipe.
func (c *Client) Attach(conn net.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.mu.Unlock()

	c.nextID.Store(0)
	c.connected.Store(true)
	go c.receiveLoop()
}

// Disconnect tears the connection down. Idempotent; outstanding waiters
// fail with their timeout.
func (c *Client) Disconnect() {
	c.connected.Store(false)

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.reader = nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// Close shuts the client for good; Connect refuses afterwards
func (c *Client) Close() {
	c.closed.Store(true)
	c.Disconnect()
}

// Translate sends a TRANSLATE_REQUEST and waits for the matching
// TRANSLATE_RESPONSE until the timeout elapses.
func (c *Client) Translate(text string, timeout time.Duration) (string, error) {
	if !c.connected.Load() {
		return "", ErrNotConnected
	}

	if c.isJSON() {
		// No ids on the legacy framing; one round trip at a time.
		c.jsonMu.Lock()
		defer c.jsonMu.Unlock()
		return c.roundTrip(0, text, timeout)
	}

	id := c.nextID.Add(1)
	return c.roundTrip(id, text, timeout)
}

func (c *Client) roundTrip(id uint32, text string, timeout time.Duration) (string, error) {
	msg, err := NewTextMessage(TypeTranslateRequest, id, text)
	if err != nil {
		return "", err
	}

	ch := make(chan string, 1)
	c.waiterMu.Lock()
	c.waiters[id] = ch
	c.waiterMu.Unlock()

	defer func() {
		c.waiterMu.Lock()
		delete(c.waiters, id)
		c.waiterMu.Unlock()
	}()

	if err := c.send(msg); err != nil {
		return "", err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case translated := <-ch:
		return translated, nil
	case <-timer.C:
		return "", ErrTimeout
	}
}

// SendLog forwards a log line to the orchestrator; best effort
func (c *Client) SendLog(level, message string) error {
	msg, err := NewTextMessage(TypeLogMessage, 0, level+"|"+message)
	if err != nil {
		return err
	}
	return c.send(msg)
}

// SendStats forwards the counter triple to the orchestrator
func (c *Client) SendStats(requests, hits, errs uint64) error {
	data := make([]byte, 24)
	binary.LittleEndian.PutUint64(data[0:], requests)
	binary.LittleEndian.PutUint64(data[8:], hits)
	binary.LittleEndian.PutUint64(data[16:], errs)
	return c.send(&Message{Type: TypeStatsUpdate, Data: data})
}

// SendCacheSync pushes locally observed pairs up to the orchestrator
func (c *Client) SendCacheSync(pairs map[string]string) error {
	var data []byte
	for original, translated := range pairs {
		data = appendUTF16Field(data, original)
		data = appendUTF16Field(data, translated)
	}
	return c.send(&Message{Type: TypeCacheSync, Data: data})
}

func (c *Client) send(msg *Message) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil || !c.connected.Load() {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.codec.Encode(conn, msg); err != nil {
		c.Disconnect()
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

func (c *Client) receiveLoop() {
	c.mu.Lock()
	reader := c.reader
	c.mu.Unlock()
	if reader == nil {
		return
	}

	for c.connected.Load() {
		msg, err := c.codec.Decode(reader)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || isDisconnectError(err) {
				c.log.Warn("Connection lost: ", err)
				c.Disconnect()
				return
			}
			if errors.Is(err, ErrProtocol) {
				c.log.Warn("Dropping malformed frame: ", err)
				continue
			}
			c.Disconnect()
			return
		}

		switch msg.Type {
		case TypeTranslateResponse:
			text, err := msg.Text()
			if err != nil {
				continue
			}
			c.waiterMu.Lock()
			ch, ok := c.waiters[msg.RequestID]
			c.waiterMu.Unlock()
			if ok {
				// Buffered; a waiter that already timed out simply never
				// receives and the value is dropped.
				select {
				case ch <- text:
				default:
				}
			}

		case TypeConfigUpdate:
			if c.OnConfigUpdate != nil {
				if text, err := msg.Text(); err == nil {
					c.OnConfigUpdate(text)
				}
			}

		case TypeShutdown:
			c.log.Infoln("Shutdown requested by orchestrator")
			c.Disconnect()
			return
		}
	}
}

func appendUTF16Field(data []byte, s string) []byte {
	units, err := textenc.EncodeWide(s)
	if err != nil {
		return data
	}
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(units)/2))
	data = append(data, n[:]...)
	return append(data, units...)
}
