package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// requestTimeout bounds how long a setter waits for the bridge to answer.
const requestTimeout = 10 * time.Second

// WebSocketClient drives an editor through a WebSocket bridge plugin. The
// bridge greets with auth_required, accepts an auth frame and then executes
// call_service requests in the "editor" domain.
type WebSocketClient struct {
	url    string
	token  string
	logger *zap.Logger

	conn      *websocket.Conn
	connected bool
	connMu    sync.RWMutex
	writeMu   sync.Mutex

	msgID   int
	msgIDMu sync.Mutex

	pending   map[int]chan Message
	pendingMu sync.Mutex

	ctx       context.Context
	cancel    context.CancelFunc
	reconnect bool
}

// NewWebSocketClient creates a client for the bridge at url.
func NewWebSocketClient(url, token string, logger *zap.Logger) *WebSocketClient {
	ctx, cancel := context.WithCancel(context.Background())
	return &WebSocketClient{
		url:       url,
		token:     token,
		logger:    logger.Named("websocket"),
		pending:   make(map[int]chan Message),
		ctx:       ctx,
		cancel:    cancel,
		reconnect: true,
	}
}

// Connect dials the bridge and authenticates.
func (c *WebSocketClient) Connect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.connected {
		return fmt.Errorf("already connected")
	}

	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to editor bridge: %w", err)
	}

	if err := c.authenticate(conn); err != nil {
		conn.Close()
		return err
	}

	if c.cancel != nil {
		c.cancel()
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.conn = conn
	c.connected = true
	c.reconnect = true
	c.logger.Info("Connected to editor bridge", zap.String("url", c.url))

	go c.receiveMessages(c.ctx, conn)
	return nil
}

func (c *WebSocketClient) authenticate(conn *websocket.Conn) error {
	var greeting Message
	if err := conn.ReadJSON(&greeting); err != nil {
		return fmt.Errorf("failed to read auth_required: %w", err)
	}
	if greeting.Type != "auth_required" {
		return fmt.Errorf("expected auth_required, got %s", greeting.Type)
	}

	if err := conn.WriteJSON(AuthMessage{Type: "auth", AccessToken: c.token}); err != nil {
		return fmt.Errorf("failed to send auth: %w", err)
	}

	var resp Message
	if err := conn.ReadJSON(&resp); err != nil {
		return fmt.Errorf("failed to read auth response: %w", err)
	}
	switch resp.Type {
	case "auth_ok":
		return nil
	case "auth_invalid":
		return fmt.Errorf("authentication failed: invalid token")
	default:
		return fmt.Errorf("expected auth_ok, got %s", resp.Type)
	}
}

// Disconnect closes the connection and disables reconnection.
func (c *WebSocketClient) Disconnect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	c.reconnect = false
	c.cancel()

	if !c.connected {
		return nil
	}
	c.connected = false

	if c.conn != nil {
		c.writeMu.Lock()
		c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()

		c.conn.Close()
		c.conn = nil
	}

	c.logger.Info("Disconnected from editor bridge")
	return nil
}

// IsConnected returns true if the client is connected.
func (c *WebSocketClient) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected
}

// SetColorScheme implements host.Host.
func (c *WebSocketClient) SetColorScheme(name string) error {
	return c.CallService(ServiceSetColorScheme, map[string]interface{}{"name": name})
}

// SetWindowTheme implements host.Host.
func (c *WebSocketClient) SetWindowTheme(name string) error {
	return c.CallService(ServiceSetWindowTheme, map[string]interface{}{"name": name})
}

// CallService runs an editor-domain service on the bridge and waits for the
// result.
func (c *WebSocketClient) CallService(service string, data map[string]interface{}) error {
	req := &CallServiceRequest{
		ID:          c.nextMsgID(),
		Type:        "call_service",
		Domain:      EditorDomain,
		Service:     service,
		ServiceData: data,
	}
	_, err := c.sendRequest(req.ID, req)
	if err != nil {
		return fmt.Errorf("failed to call %s.%s: %w", EditorDomain, service, err)
	}
	return nil
}

func (c *WebSocketClient) nextMsgID() int {
	c.msgIDMu.Lock()
	defer c.msgIDMu.Unlock()
	c.msgID++
	return c.msgID
}

func (c *WebSocketClient) sendRequest(id int, req interface{}) (*Message, error) {
	c.connMu.RLock()
	if !c.connected {
		c.connMu.RUnlock()
		return nil, fmt.Errorf("not connected")
	}
	conn := c.conn
	ctx := c.ctx
	c.connMu.RUnlock()

	respChan := make(chan Message, 1)
	c.pendingMu.Lock()
	c.pending[id] = respChan
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	c.writeMu.Lock()
	err := conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	select {
	case resp := <-respChan:
		if resp.Success != nil && !*resp.Success {
			if resp.Error != nil {
				return nil, fmt.Errorf("bridge error: %s - %s", resp.Error.Code, resp.Error.Message)
			}
			return nil, fmt.Errorf("request failed")
		}
		return &resp, nil
	case <-time.After(requestTimeout):
		return nil, fmt.Errorf("timeout waiting for response")
	case <-ctx.Done():
		return nil, fmt.Errorf("client disconnected")
	}
}

func (c *WebSocketClient) receiveMessages(ctx context.Context, conn *websocket.Conn) {
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			c.logger.Error("Failed to read message", zap.Error(err))
			c.handleDisconnect()
			return
		}

		if msg.Type != "result" || msg.ID == 0 {
			c.logger.Debug("Ignoring bridge message", zap.String("type", msg.Type))
			continue
		}

		c.pendingMu.Lock()
		if ch, ok := c.pending[msg.ID]; ok {
			select {
			case ch <- msg:
			default:
				c.logger.Warn("Response channel full", zap.Int("msg_id", msg.ID))
			}
		}
		c.pendingMu.Unlock()
	}
}

func (c *WebSocketClient) handleDisconnect() {
	c.connMu.Lock()
	c.connected = false
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	reconnect := c.reconnect
	ctx := c.ctx
	c.connMu.Unlock()

	c.logger.Warn("Connection to editor bridge lost")
	if reconnect {
		go c.attemptReconnect(ctx)
	}
}

// attemptReconnect retries Connect with exponential backoff until it
// succeeds or the client is disconnected.
func (c *WebSocketClient) attemptReconnect(ctx context.Context) {
	backoff := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		c.logger.Info("Attempting to reconnect...")
		if err := c.Connect(); err != nil {
			c.logger.Error("Reconnection failed", zap.Error(err))
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		c.logger.Info("Reconnected successfully")
		return
	}
}
