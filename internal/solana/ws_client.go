package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSConfig configures WebSocket confirmer behavior.
type WSConfig struct {
	// ConfirmTimeout bounds a single confirmation wait.
	ConfirmTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ConfirmTimeout: 60 * time.Second,
		WriteTimeout:   10 * time.Second,
		PingInterval:   30 * time.Second,
	}
}

// WSConfirmer implements Confirmer via signatureSubscribe over a
// WebSocket connection. A signature subscription fires once and is
// removed server-side; on any connection failure the confirmer falls
// back to the polling Confirmer when one is provided.
type WSConfirmer struct {
	endpoint string
	config   WSConfig
	fallback Confirmer

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	broken    atomic.Bool
	requestID atomic.Uint64

	// pendingSubs maps request ID to channel waiting for subscription ID
	pendingSubs   map[uint64]chan int64
	pendingSubsMu sync.Mutex

	// subs maps subscription ID to channel receiving the tx error field
	subs   map[int64]chan interface{}
	subsMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWSConfirmer connects to the WebSocket endpoint. fallback may be
// nil, in which case WS failures surface as errors.
func NewWSConfirmer(ctx context.Context, endpoint string, config *WSConfig, fallback Confirmer) (*WSConfirmer, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	c := &WSConfirmer{
		endpoint:    endpoint,
		config:      cfg,
		fallback:    fallback,
		pendingSubs: make(map[uint64]chan int64),
		subs:        make(map[int64]chan interface{}),
		done:        make(chan struct{}),
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial ws %s: %w", endpoint, err)
	}
	c.conn = conn

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()

	return c, nil
}

var _ Confirmer = (*WSConfirmer)(nil)

// Close shuts the connection down.
func (c *WSConfirmer) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)
	c.connMu.Lock()
	err := c.conn.Close()
	c.connMu.Unlock()
	c.wg.Wait()
	return err
}

// WaitForConfirmation subscribes to the signature and blocks until the
// notification arrives, the transaction reports an error, or the
// confirmation timeout elapses.
func (c *WSConfirmer) WaitForConfirmation(ctx context.Context, signature string) error {
	if c.closed.Load() || c.broken.Load() {
		return c.confirmFallback(ctx, signature, fmt.Errorf("ws connection unavailable"))
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.ConfirmTimeout)
	defer cancel()

	subID, ch, err := c.subscribe(ctx, signature)
	if err != nil {
		return c.confirmFallback(ctx, signature, err)
	}
	defer c.dropSub(subID)

	select {
	case txErr := <-ch:
		if txErr != nil {
			return fmt.Errorf("transaction %s failed on-chain: %v", signature, txErr)
		}
		return nil
	case <-c.done:
		return c.confirmFallback(ctx, signature, fmt.Errorf("ws confirmer closed"))
	case <-ctx.Done():
		return fmt.Errorf("confirmation timeout for %s: %w", signature, ctx.Err())
	}
}

func (c *WSConfirmer) confirmFallback(ctx context.Context, signature string, cause error) error {
	if c.fallback != nil {
		return c.fallback.WaitForConfirmation(ctx, signature)
	}
	return cause
}

// subscribe sends signatureSubscribe and waits for the subscription ID.
func (c *WSConfirmer) subscribe(ctx context.Context, signature string) (int64, chan interface{}, error) {
	reqID := c.requestID.Add(1)

	idCh := make(chan int64, 1)
	c.pendingSubsMu.Lock()
	c.pendingSubs[reqID] = idCh
	c.pendingSubsMu.Unlock()
	defer func() {
		c.pendingSubsMu.Lock()
		delete(c.pendingSubs, reqID)
		c.pendingSubsMu.Unlock()
	}()

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "signatureSubscribe",
		Params: []interface{}{
			signature,
			map[string]interface{}{"commitment": "confirmed"},
		},
	}

	if err := c.writeJSON(req); err != nil {
		return 0, nil, fmt.Errorf("send subscribe: %w", err)
	}

	select {
	case subID := <-idCh:
		ch := make(chan interface{}, 1)
		c.subsMu.Lock()
		c.subs[subID] = ch
		c.subsMu.Unlock()
		return subID, ch, nil
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	case <-c.done:
		return 0, nil, fmt.Errorf("ws confirmer closed")
	}
}

func (c *WSConfirmer) dropSub(subID int64) {
	c.subsMu.Lock()
	delete(c.subs, subID)
	c.subsMu.Unlock()
}

func (c *WSConfirmer) writeJSON(v interface{}) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	return c.conn.WriteJSON(v)
}

// wsMessage covers both subscribe responses and notifications.
type wsMessage struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Method string          `json:"method"`
	Params *struct {
		Subscription int64 `json:"subscription"`
		Result       struct {
			Value struct {
				Err interface{} `json:"err"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

func (c *WSConfirmer) readLoop() {
	defer c.wg.Done()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !c.closed.Load() {
				c.broken.Store(true)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch {
		case msg.Method == "signatureNotification" && msg.Params != nil:
			c.subsMu.Lock()
			ch, ok := c.subs[msg.Params.Subscription]
			c.subsMu.Unlock()
			if ok {
				select {
				case ch <- msg.Params.Result.Value.Err:
				default:
				}
			}

		case msg.ID != 0 && len(msg.Result) > 0:
			var subID int64
			if err := json.Unmarshal(msg.Result, &subID); err != nil {
				continue
			}
			c.pendingSubsMu.Lock()
			ch, ok := c.pendingSubs[msg.ID]
			c.pendingSubsMu.Unlock()
			if ok {
				select {
				case ch <- subID:
				default:
				}
			}
		}
	}
}

func (c *WSConfirmer) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.connMu.Unlock()
			if err != nil {
				c.broken.Store(true)
				return
			}
		}
	}
}
