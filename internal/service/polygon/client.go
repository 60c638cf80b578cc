package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"OptionPilot/internal/domain/models"
	drepo "OptionPilot/internal/domain/repository"
	applogger "OptionPilot/pkg/logger"
)

// Client implements a QuoteStream backed by the Polygon websocket.
type Client struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *applogger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// New creates a new Polygon QuoteStream.
func New(apiKey, websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, log *applogger.Logger) *Client {
	if log == nil {
		log = applogger.Nop()
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log.Component("polygon"),
	}
}

// Connect dials the websocket and authenticates.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("polygon connect: %w", err)
	}
	if err := conn.WriteJSON(controlMessage{Action: "auth", Params: c.apiKey}); err != nil {
		_ = conn.Close()
		return fmt.Errorf("polygon auth: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.log.Info("connected", applogger.String("url", c.websocketURL))
	return nil
}

// Subscribe subscribes to quotes of the configured underlyings and their
// aggregates.
func (c *Client) Subscribe(ctx context.Context) error {
	conn := c.currentConn()
	if conn == nil {
		return fmt.Errorf("polygon not connected")
	}
	channels := BuildChannels(c.symbols)
	c.mu.Lock()
	err := conn.WriteJSON(controlMessage{Action: "subscribe", Params: strings.Join(channels, ",")})
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	c.log.Info("subscribed", applogger.Strings("channels", channels))
	return nil
}

// BuildChannels maps underlyings to Polygon channel names.
func BuildChannels(symbols []string) []string {
	channels := make([]string, 0, len(symbols)*2)
	for _, s := range symbols {
		channels = append(channels, "Q.O:"+s+"*", "A."+s)
	}
	if len(channels) == 0 {
		channels = append(channels, "Q.*")
	}
	return channels
}

type controlMessage struct {
	Action string `json:"action"`
	Params string `json:"params"`
}

// wireEvent covers quote ("Q"), aggregate ("A"/"AM") and status frames.
type wireEvent struct {
	Ev      string  `json:"ev"`
	Sym     string  `json:"sym"`
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Bp      float64 `json:"bp"`
	Ap      float64 `json:"ap"`
	Bs      int64   `json:"bs"`
	As      int64   `json:"as"`
	T       int64   `json:"t"`
	O       float64 `json:"o"`
	C       float64 `json:"c"`
	H       float64 `json:"h"`
	L       float64 `json:"l"`
	V       int64   `json:"v"`
	Vw      float64 `json:"vw"`
	S       int64   `json:"s"`
}

// Read streams market events and errors until ctx ends or the socket fails.
func (c *Client) Read(ctx context.Context) (<-chan models.MarketEvent, <-chan error) {
	events := make(chan models.MarketEvent, 1024)
	errs := make(chan error, 1)

	go c.pingLoop(ctx)

	go func() {
		defer close(events)
		defer close(errs)
		for {
			if ctx.Err() != nil {
				return
			}
			conn := c.currentConn()
			if conn == nil {
				errs <- fmt.Errorf("polygon conn nil")
				return
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				errs <- fmt.Errorf("polygon read: %w", err)
				return
			}
			var frames []wireEvent
			if err := json.Unmarshal(b, &frames); err != nil {
				continue
			}
			for _, f := range frames {
				if f.Ev == "status" {
					if f.Status == "auth_failed" {
						errs <- fmt.Errorf("polygon auth failed: %s", f.Message)
						return
					}
					continue
				}
				e, ok := toEvent(f)
				if !ok {
					continue
				}
				select {
				case events <- e:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return events, errs
}

func toEvent(f wireEvent) (models.MarketEvent, bool) {
	switch f.Ev {
	case "Q":
		q := NormalizeOptionQuote(models.OptionQuote{
			Symbol:    f.Sym,
			Bid:       f.Bp,
			Ask:       f.Ap,
			BidSize:   f.Bs,
			AskSize:   f.As,
			Timestamp: time.UnixMilli(f.T),
		})
		return models.MarketEvent{Kind: models.EventOptionQuote, Quote: &q}, true
	case "A", "AM":
		return models.MarketEvent{Kind: models.EventEquityAggregate, Aggregate: &models.EquityAggregate{
			Symbol:    f.Sym,
			Open:      f.O,
			Close:     f.C,
			High:      f.H,
			Low:       f.L,
			Volume:    f.V,
			Vwap:      f.Vw,
			Timestamp: time.UnixMilli(f.S).UTC(),
		}}, true
	default:
		return models.MarketEvent{}, false
	}
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.conn != nil {
				_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			}
			c.mu.Unlock()
		}
	}
}

// Reconnect closes, waits the reconnect delay and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	select {
	case <-time.After(c.reconnectDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) currentConn() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

var _ drepo.QuoteStream = (*Client)(nil)
