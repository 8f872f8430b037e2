package onebot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/logger"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/protocol"
)

// ErrNotConnected is returned by sends while the socket is down.
var ErrNotConnected = errors.New("onebot: not connected")

const (
	minBackoff   = time.Second
	maxBackoff   = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// Client is a forward WebSocket client. It pushes inbound events into the host queue
// and implements protocol.Sender for outbound actions.
type Client struct {
	url     string
	token   string
	host    *protocol.Host
	limiter *rate.Limiter
	dialer  *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
	seq  atomic.Uint64
}

var _ protocol.Sender = (*Client)(nil)

// NewClient returns a client for url. perSecond and burst bound outbound actions.
func NewClient(url, token string, host *protocol.Host, perSecond float64, burst int) *Client {
	if perSecond <= 0 {
		perSecond = 5
	}
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		url:     url,
		token:   token,
		host:    host,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// Run connects and reads until ctx is done, reconnecting with capped exponential backoff.
func (c *Client) Run(ctx context.Context) error {
	log := logger.Get("onebot")
	backoff := minBackoff
	for {
		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("dial failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff
		log.Info().Str("url", c.url).Msg("connected")
		c.setConn(conn)
		err = c.readLoop(ctx, conn)
		c.setConn(nil)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Msg("connection lost, reconnecting")
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}
	conn, resp, err := c.dialer.DialContext(ctx, c.url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("onebot dial %s: %w", c.url, err)
	}
	return conn, nil
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	old := c.conn
	c.conn = conn
	c.mu.Unlock()
	if old != nil && old != conn {
		old.Close()
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()
	log := logger.Get("onebot")
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		ev, ok := ParseEvent(data, c.host.NickNames())
		if !ok {
			continue
		}
		if err := c.host.Push(ev); err != nil {
			log.Warn().Err(err).Str("user", ev.UserID).Msg("event dropped")
		}
	}
}

func (c *Client) nextEcho() string {
	return "superpoke-" + strconv.FormatUint(c.seq.Add(1), 10)
}

// SendMessage implements protocol.Sender.
func (c *Client) SendMessage(ctx context.Context, t protocol.Target, msg protocol.Message) error {
	payload, err := buildSendMessage(t, msg, c.nextEcho())
	if err != nil {
		return err
	}
	return c.write(ctx, payload)
}

// SendPoke implements protocol.Sender.
func (c *Client) SendPoke(ctx context.Context, t protocol.Target, userID string) error {
	payload, err := buildPoke(t, userID, c.nextEcho())
	if err != nil {
		return err
	}
	return c.write(ctx, payload)
}

func (c *Client) write(ctx context.Context, payload []byte) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("onebot write: %w", err)
	}
	return nil
}
