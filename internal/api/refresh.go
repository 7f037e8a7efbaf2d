package api

import (
	"context"
	"net/http"
)

// refreshState names the steps of the 401 recovery path.
//
//	sent -> unauthorized -> refreshing -> retrying -> done
//	                                   \-> cleared -> failed
type refreshState int

const (
	stateSent refreshState = iota
	stateUnauthorized
	stateRefreshing
	stateRetrying
	stateDone
	stateCleared
	stateFailed
)

func (s refreshState) String() string {
	switch s {
	case stateSent:
		return "sent"
	case stateUnauthorized:
		return "unauthorized"
	case stateRefreshing:
		return "refreshing"
	case stateRetrying:
		return "retrying"
	case stateDone:
		return "done"
	case stateCleared:
		return "cleared"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TokenPair is the body returned by the token endpoints.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type refreshBody struct {
	Refresh string `json:"refresh"`
}

// refreshFlightKey is the singleflight key for coalesced exchanges.
const refreshFlightKey = "refresh"

// refreshEligible reports whether a 401 for req may be recovered by a
// refresh. Explicit and anonymous credentials never are.
func (c *Client) refreshEligible(req *Request, explicit bool) bool {
	if explicit || req.NoAuth || c.store == nil {
		return false
	}
	refresh, ok := c.store.RefreshToken()
	return ok && refresh != ""
}

// retryAfterRefresh runs the single refresh-and-retry cycle after first came back 401.
// The retried response is final, whatever its status.
func (c *Client) retryAfterRefresh(ctx context.Context, req *Request, body payload, first *response, out any) error {
	logger := c.logger.WithContext(ctx).With("path", req.Path)
	state := stateUnauthorized
	step := func(next refreshState) {
		logger.DebugContext(ctx, "refresh transition", "from", state.String(), "to", next.String())
		state = next
	}

	step(stateRefreshing)
	access, err := c.exchange(ctx)
	if err != nil {
		step(stateCleared)
		step(stateFailed)
		logger.WarnContext(ctx, "credential refresh failed; session cleared", "error", err.Error())
		return first.decode(out)
	}

	step(stateRetrying)
	resp, err := c.send(ctx, req, body, access, 2)
	if err != nil {
		return err
	}

	step(stateDone)
	return resp.decode(out)
}

// Refresh exchanges the stored refresh credential for a new access
// credential right away. A failed exchange clears the store.
func (c *Client) Refresh(ctx context.Context) (TokenPair, error) {
	if c.store == nil {
		return TokenPair{}, invalidRequest("no credential store configured")
	}
	if _, ok := c.store.RefreshToken(); !ok {
		return TokenPair{}, invalidRequest("No refresh credential available")
	}

	if _, err := c.exchange(ctx); err != nil {
		return TokenPair{}, err
	}

	access, _ := c.store.Access()
	refresh, _ := c.store.RefreshToken()
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// exchange trades the refresh credential for a new pair, stores it, and
// returns the new access credential. Any failure clears the store.
func (c *Client) exchange(ctx context.Context) (string, error) {
	if !c.coalesce {
		return c.exchangeOnce(ctx)
	}

	// The shared call outlives any single waiter's cancellation.
	shared := context.WithoutCancel(ctx)
	v, err, joined := c.flight.Do(refreshFlightKey, func() (any, error) {
		return c.exchangeOnce(shared)
	})
	if joined {
		c.logger.WithContext(ctx).DebugContext(ctx, "joined in-flight refresh")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) exchangeOnce(ctx context.Context) (string, error) {
	refresh, ok := c.store.RefreshToken()
	if !ok {
		c.store.Clear()
		return "", invalidRequest("No refresh credential available")
	}

	req := &Request{
		Method: http.MethodPost,
		Path:   c.refreshPath,
		Body:   refreshBody{Refresh: refresh},
		NoAuth: true,
	}
	body, err := req.encode()
	if err != nil {
		c.store.Clear()
		return "", err
	}

	resp, err := c.send(ctx, req, body, "", 1)
	if err != nil {
		c.store.Clear()
		return "", err
	}

	var pair TokenPair
	if err := resp.decode(&pair); err != nil {
		c.store.Clear()
		return "", err
	}
	if pair.Access == "" {
		c.store.Clear()
		return "", &Error{
			Message:    "Refresh response did not include an access credential",
			StatusCode: resp.status,
			Kind:       KindParse,
		}
	}

	c.store.Set(pair.Access, pair.Refresh)
	c.logger.WithContext(ctx).InfoContext(ctx, "access credential refreshed", "rotated", pair.Refresh != "")
	return pair.Access, nil
}
