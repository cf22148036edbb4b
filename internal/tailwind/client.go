package tailwind

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"gotailwind/internal/infra"
)

const (
	defaultRequestTimeout = 8 * time.Second

	// A door operation is given 120 poll cycles of 500ms to reach its
	// target state before the poller settles on whatever it last saw.
	defaultPollCycles   = 120
	defaultPollInterval = 500 * time.Millisecond
)

// DoorSelector identifies a specific door, either by its zero-based index
// or by its wire-assigned door ID.
type DoorSelector struct {
	index *int
	id    string
}

// DoorByIndex selects a door by its zero-based index.
func DoorByIndex(index int) DoorSelector {
	return DoorSelector{index: &index}
}

// DoorByID selects a door by its door ID.
func DoorByID(id string) DoorSelector {
	return DoorSelector{id: id}
}

// Selector returns a selector re-resolving this door by its index.
func (d Door) Selector() DoorSelector {
	return DoorByIndex(d.Index)
}

func (s DoorSelector) matches(d Door) bool {
	if s.index != nil {
		return d.Index == *s.index
	}
	return d.DoorID == s.id
}

func (s DoorSelector) String() string {
	if s.index != nil {
		return strconv.Itoa(*s.index)
	}
	return s.id
}

// connOwnership records whether the HTTP client was created by us or
// supplied by the caller. Consulted only at teardown.
type connOwnership int

const (
	connBorrowed connOwnership = iota
	connOwned
)

// Config configures a Client.
type Config struct {
	// Host is the IP address or hostname of the Tailwind device.
	Host string
	// Token is the device's 6 digit local access token.
	Token string

	// Product identifies the device model in the request envelope, for
	// example "iQ3". Omitted from the wire when empty.
	Product string

	// Timeout bounds each request round trip. Defaults to 8 seconds.
	Timeout time.Duration

	// HTTPClient, when set, remains owned by the caller and is never torn
	// down by Close. When nil, one is created lazily on first use and
	// released by Close.
	HTTPClient *http.Client

	// Logger receives request and retry debug logging.
	Logger *slog.Logger

	// PollCycles and PollInterval tune the door operation poll loop.
	PollCycles   int
	PollInterval time.Duration
}

// Client handles connections with a Tailwind garage door opener over the
// local control protocol. Requests are issued sequentially; the zero
// outstanding-request guarantee is the caller's.
type Client struct {
	host    string
	token   string
	product string
	url     string

	timeout time.Duration
	logger  *slog.Logger

	httpClient *http.Client
	ownership  connOwnership

	pollCycles   int
	pollInterval time.Duration
}

// NewClient creates a client for the Tailwind device at cfg.Host.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}
	pollCycles := cfg.PollCycles
	if pollCycles == 0 {
		pollCycles = defaultPollCycles
	}
	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = defaultPollInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ownership := connOwned
	if cfg.HTTPClient != nil {
		ownership = connBorrowed
	}

	return &Client{
		host:         cfg.Host,
		token:        cfg.Token,
		product:      cfg.Product,
		url:          "http://" + cfg.Host + "/json",
		timeout:      timeout,
		logger:       logger,
		httpClient:   cfg.HTTPClient,
		ownership:    ownership,
		pollCycles:   pollCycles,
		pollInterval: pollInterval,
	}
}

// Status gets the current status of the Tailwind device.
func (c *Client) Status(ctx context.Context) (*DeviceStatus, error) {
	return request(ctx, c, deviceStatusRequest())
}

// DoorStatus gets the door matching the given selector from a freshly
// fetched device status.
func (c *Client) DoorStatus(ctx context.Context, selector DoorSelector) (*Door, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return nil, err
	}
	for _, door := range status.Doors {
		if selector.matches(door) {
			return &door, nil
		}
	}
	return nil, fmt.Errorf("door %s: %w", selector, ErrDoorUnknown)
}

// Identify flashes the LED on the Tailwind device.
func (c *Client) Identify(ctx context.Context) error {
	_, err := request(ctx, c, identifyRequest())
	return err
}

// SetStatusLED sets the brightness of the device status LED. Brightness is
// a percentage; callers validate the 0-100 range, the device is sent the
// value as-is.
func (c *Client) SetStatusLED(ctx context.Context, brightness int) error {
	_, err := request(ctx, c, ledBrightnessRequest(brightness))
	return err
}

// Operate opens or closes a garage door and waits for the door to reach the
// requested state. When the poll budget runs out before the door gets
// there, the last observed door is returned without error; callers inspect
// its state to detect an incomplete operation.
func (c *Client) Operate(ctx context.Context, selector DoorSelector, operation DoorOperation) (*Door, error) {
	door, err := c.DoorStatus(ctx, selector)
	if err != nil {
		return nil, err
	}

	if door.LockedOut {
		return nil, fmt.Errorf("door %s: %w", selector, ErrDoorLockedOut)
	}
	if door.Disabled {
		return nil, fmt.Errorf("door %s: %w", selector, ErrDoorDisabled)
	}
	if door.State == operation.targetState() {
		return nil, fmt.Errorf("door %s: %w", selector, ErrDoorAlreadyInState)
	}

	_, err = request(ctx, c, doorOperationRequest(door.Index, operation))
	if err != nil {
		return nil, err
	}

	return c.waitForDoorState(ctx, selector, operation.targetState(), door)
}

// waitForDoorState polls the door status until the wanted state is observed
// or the poll budget is exhausted. Cancelling the context stops further
// polls; the door motion already commanded continues regardless.
func (c *Client) waitForDoorState(ctx context.Context, selector DoorSelector, want DoorState, last *Door) (*Door, error) {
	for i := 0; i < c.pollCycles; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		door, err := c.DoorStatus(ctx, selector)
		if err != nil {
			return nil, err
		}
		last = door
		if door.State == want {
			break
		}
	}
	return last, nil
}

// Close releases the HTTP client when it is owned by this Client. A caller
// supplied HTTP client is left untouched.
func (c *Client) Close() {
	if c.ownership == connOwned && c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
}

// request handles a single logical request to the device: encode, POST with
// bounded retries on connection failures, decode the paired response.
func request[T any](ctx context.Context, c *Client, req requestSpec[T]) (T, error) {
	var zero T

	body, err := json.Marshal(requestEnvelope{
		Version: protocolVersion,
		Data:    req.data,
		Product: c.product,
	})
	if err != nil {
		return zero, fmt.Errorf("encoding request: %w", err)
	}

	cfg := infra.DefaultRetryConfig()
	cfg.Retryable = func(err error) bool {
		return errors.Is(err, ErrConnection)
	}

	var respBody []byte
	attempt := 0
	err = infra.WithRetry(ctx, cfg, func() error {
		attempt++
		var postErr error
		respBody, postErr = c.post(ctx, body)
		if postErr != nil {
			c.logger.Debug("request failed",
				"name", req.data.Name,
				"attempt", attempt,
				"error", postErr,
			)
		}
		return postErr
	})
	if err != nil {
		return zero, err
	}

	return req.decode(respBody)
}

// post performs exactly one HTTP POST exchange with the device.
func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("TOKEN", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, fmt.Errorf("%w: %w", ErrConnectionTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrConnection, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: unexpected HTTP status %s", ErrConnection, resp.Status)
	}

	return respBody, nil
}
