// HubBridge - Hub Wire-Protocol Client
// Copyright (c) 2025 - Open Source Project

package hubbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// HubClient is the wire-protocol boundary toward a single hub. Calls block
// until the hub responds; this layer applies no timeout of its own, so
// callers bound calls through ctx when they need to.
type HubClient interface {
	Activities(ctx context.Context) ([]HubActivity, error)
	AvailableCommands(ctx context.Context) ([]HubDevice, error)
	CurrentActivity(ctx context.Context) (int64, error)
	StartActivity(ctx context.Context, activityID int64) error
	TurnOff(ctx context.Context) error
	HoldAction(ctx context.Context, body string) error
	Close() error
}

const (
	hubWebsocketPort = 8088
	hubOriginDomain  = "svcs.myharmony.com"

	cmdConfig          = "vnd.logitech.harmony/vnd.logitech.harmony.engine?config"
	cmdCurrentActivity = "vnd.logitech.harmony/vnd.logitech.harmony.engine?getCurrentActivity"
	cmdHoldAction      = "vnd.logitech.harmony/vnd.logitech.harmony.engine?holdAction"
	cmdRunActivity     = "harmony.activityengine?runactivity"
)

// wsHubClient speaks the hub's websocket engine protocol. Requests carry a
// unique id; the read loop matches responses back to waiting callers, and
// unsolicited hub digests (which carry no matching id) are ignored.
type wsHubClient struct {
	conn     *websocket.Conn
	remoteID string

	writeMutex sync.Mutex

	pendingMutex sync.Mutex
	pending      map[string]chan wsResponse

	closed    chan struct{}
	closeOnce sync.Once
}

type wsRequest struct {
	HubID   string      `json:"hubId,omitempty"`
	Timeout int         `json:"timeout,omitempty"`
	HBUS    wsHBUSBlock `json:"hbus"`
}

type wsHBUSBlock struct {
	Cmd    string      `json:"cmd"`
	ID     string      `json:"id"`
	Params interface{} `json:"params,omitempty"`
}

type wsResponse struct {
	ID   string          `json:"id"`
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type hubConfig struct {
	Activity []HubActivity `json:"activity"`
	Device   []HubDevice   `json:"device"`
}

// DialHub connects to the hub at the given address: it first asks the hub for
// its active remote id over plain HTTP, then opens the websocket session every
// engine call runs over.
func DialHub(ctx context.Context, ip string) (HubClient, error) {
	remoteID, err := fetchRemoteID(ctx, ip)
	if err != nil {
		return nil, errors.Wrap(err, "fetch hub remote id")
	}

	wsURL := fmt.Sprintf("ws://%s:%d/?domain=%s&hubId=%s", ip, hubWebsocketPort, hubOriginDomain, remoteID)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "dial hub websocket")
	}

	client := &wsHubClient{
		conn:     conn,
		remoteID: remoteID,
		pending:  make(map[string]chan wsResponse),
		closed:   make(chan struct{}),
	}
	go client.readLoop()

	return client, nil
}

// fetchRemoteID asks the hub's provisioning endpoint for the id the websocket
// session must be bound to.
func fetchRemoteID(ctx context.Context, ip string) (string, error) {
	payload := map[string]interface{}{
		"id":  1,
		"cmd": "setup.account?getProvisionInfo",
		"params": map[string]interface{}{
			"verb":   "get",
			"format": "json",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://%s:%d/", ip, hubWebsocketPort)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://sl.dhg.myharmony.com")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("provision request returned %d", resp.StatusCode)
	}

	var provision struct {
		Data struct {
			ActiveRemoteID json.Number `json:"activeRemoteId"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&provision); err != nil {
		return "", errors.Wrap(err, "decode provision response")
	}
	if provision.Data.ActiveRemoteID.String() == "" {
		return "", errors.New("hub reported no active remote id")
	}

	return provision.Data.ActiveRemoteID.String(), nil
}

// readLoop dispatches responses to waiting callers by request id.
func (c *wsHubClient) readLoop() {
	for {
		var resp wsResponse
		if err := c.conn.ReadJSON(&resp); err != nil {
			c.Close()
			return
		}
		if resp.ID == "" {
			continue // unsolicited digest
		}

		c.pendingMutex.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.pendingMutex.Unlock()

		if ok {
			ch <- resp
		}
	}
}

// call sends one engine command and waits for its response.
func (c *wsHubClient) call(ctx context.Context, cmd string, params interface{}) (json.RawMessage, error) {
	id := uuid.NewString()
	ch := make(chan wsResponse, 1)

	c.pendingMutex.Lock()
	c.pending[id] = ch
	c.pendingMutex.Unlock()

	req := wsRequest{
		HubID:   c.remoteID,
		Timeout: 30,
		HBUS: wsHBUSBlock{
			Cmd:    cmd,
			ID:     id,
			Params: params,
		},
	}

	c.writeMutex.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMutex.Unlock()
	if err != nil {
		c.dropPending(id)
		return nil, errors.Wrapf(err, "send %s", cmd)
	}

	select {
	case resp := <-ch:
		if resp.Code != 0 && resp.Code != http.StatusOK {
			return nil, errors.Errorf("%s returned %d: %s", cmd, resp.Code, resp.Msg)
		}
		return resp.Data, nil
	case <-ctx.Done():
		c.dropPending(id)
		return nil, ctx.Err()
	case <-c.closed:
		return nil, errors.New("hub connection closed")
	}
}

func (c *wsHubClient) dropPending(id string) {
	c.pendingMutex.Lock()
	delete(c.pending, id)
	c.pendingMutex.Unlock()
}

// config fetches the hub's full configuration (activities and devices).
func (c *wsHubClient) config(ctx context.Context) (*hubConfig, error) {
	data, err := c.call(ctx, cmdConfig, map[string]string{"verb": "get"})
	if err != nil {
		return nil, err
	}

	var config hubConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "decode hub config")
	}
	return &config, nil
}

func (c *wsHubClient) Activities(ctx context.Context) ([]HubActivity, error) {
	config, err := c.config(ctx)
	if err != nil {
		return nil, err
	}
	return config.Activity, nil
}

func (c *wsHubClient) AvailableCommands(ctx context.Context) ([]HubDevice, error) {
	config, err := c.config(ctx)
	if err != nil {
		return nil, err
	}
	return config.Device, nil
}

func (c *wsHubClient) CurrentActivity(ctx context.Context) (int64, error) {
	data, err := c.call(ctx, cmdCurrentActivity, map[string]string{"verb": "get"})
	if err != nil {
		return 0, err
	}

	var result struct {
		Result json.Number `json:"result"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, errors.Wrap(err, "decode current activity")
	}

	id, err := strconv.ParseInt(result.Result.String(), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse activity id %q", result.Result.String())
	}
	return id, nil
}

func (c *wsHubClient) StartActivity(ctx context.Context, activityID int64) error {
	params := map[string]string{
		"activityId": strconv.FormatInt(activityID, 10),
		"async":      "true",
	}
	_, err := c.call(ctx, cmdRunActivity, params)
	return err
}

func (c *wsHubClient) TurnOff(ctx context.Context) error {
	return c.StartActivity(ctx, ActivityOff)
}

func (c *wsHubClient) HoldAction(ctx context.Context, body string) error {
	_, err := c.call(ctx, cmdHoldAction, body)
	return err
}

// Close shuts the websocket down. In-flight callers are released through the
// closed channel.
func (c *wsHubClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}
