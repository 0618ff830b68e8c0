package channel

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"

	"github.com/five82/seatlock/internal/seatapi"
)

const (
	// DefaultPushPath is where the authority serves its websocket.
	DefaultPushPath  = "/ws"
	defaultReadLimit = 64 << 10
)

// WebsocketDialer connects to the authority's websocket endpoint.
type WebsocketDialer struct {
	url        string
	header     http.Header
	httpClient *http.Client
}

// NewWebsocketDialer derives the websocket URL from the API address:
// http becomes ws, https becomes wss, and path is appended.
func NewWebsocketDialer(apiBind, path string, httpClient *http.Client) (*WebsocketDialer, error) {
	base, err := seatapi.ParseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	switch base.Scheme {
	case "https", "wss":
		base.Scheme = "wss"
	case "http", "ws":
		base.Scheme = "ws"
	default:
		return nil, fmt.Errorf("unsupported scheme %q for push channel", base.Scheme)
	}
	if path == "" {
		path = DefaultPushPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	base.Path = path

	header := http.Header{}
	header.Set("User-Agent", seatapi.UserAgent)
	return &WebsocketDialer{url: base.String(), header: header, httpClient: httpClient}, nil
}

// URL returns the websocket URL being dialed.
func (d *WebsocketDialer) URL() string {
	return d.url
}

// Dial opens a websocket connection.
func (d *WebsocketDialer) Dial(ctx context.Context) (Conn, error) {
	c, _, err := websocket.Dial(ctx, d.url, &websocket.DialOptions{
		HTTPClient: d.httpClient,
		HTTPHeader: d.header.Clone(),
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", d.url, err)
	}
	c.SetReadLimit(defaultReadLimit)
	return &wsConn{c: c}, nil
}

type wsConn struct {
	c *websocket.Conn
}

func (w *wsConn) Read(ctx context.Context) ([]byte, error) {
	for {
		typ, data, err := w.c.Read(ctx)
		if err != nil {
			return nil, err
		}
		if typ == websocket.MessageText {
			return data, nil
		}
	}
}

func (w *wsConn) Close() error {
	return w.c.Close(websocket.StatusNormalClosure, "bye")
}
