package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/calehh/hac-dao/app"
	"github.com/calehh/hac-dao/crypto"
	"github.com/calehh/hac-dao/tx"
	daotypes "github.com/calehh/hac-dao/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
	ctypes "github.com/cometbft/cometbft/rpc/core/types"
)

// QueryError is a non-zero ABCI response code.
type QueryError struct {
	Path string
	Code uint32
	Log  string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: code %d: %s", e.Path, e.Code, e.Log)
}

// Client talks to a node over its RPC endpoint: it reads governance state
// through ABCI queries and broadcasts signed transactions.
type Client struct {
	Url    string
	cli    *comethttp.HTTP
	logger cmtlog.Logger
}

func NewClient(url string, logger cmtlog.Logger) (*Client, error) {
	cli, err := comethttp.New(url, "/websocket")
	if err != nil {
		return nil, err
	}
	return &Client{
		Url:    url,
		cli:    cli,
		logger: logger.With("module", "client"),
	}, nil
}

func (c *Client) query(ctx context.Context, path string, v any) error {
	res, err := c.cli.ABCIQuery(ctx, path, nil)
	if err != nil {
		c.logger.Error("ABCIQuery fail", "path", path, "err", err)
		return err
	}
	if res.Response.Code != 0 {
		return &QueryError{Path: path, Code: res.Response.Code, Log: res.Response.Log}
	}
	return json.Unmarshal(res.Response.Value, v)
}

func (c *Client) Account(ctx context.Context, address string) (*app.AccountInfo, error) {
	var acnt app.AccountInfo
	if err := c.query(ctx, "/accounts/"+address, &acnt); err != nil {
		return nil, err
	}
	return &acnt, nil
}

func (c *Client) Proposal(ctx context.Context, index uint64) (*app.ProposalInfo, error) {
	var p app.ProposalInfo
	if err := c.query(ctx, fmt.Sprintf("/proposals/%d", index), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Member(ctx context.Context, address string) (*daotypes.Member, error) {
	var m daotypes.Member
	if err := c.query(ctx, "/members/"+address, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) DAO(ctx context.Context) (*app.DAOInfo, error) {
	var info app.DAOInfo
	if err := c.query(ctx, "/dao/", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) ChainId(ctx context.Context) (string, error) {
	status, err := c.cli.Status(ctx)
	if err != nil {
		return "", err
	}
	return status.NodeInfo.Network, nil
}

// Broadcast signs body with pv using the sender's current nonce and submits
// it to the mempool.
func (c *Client) Broadcast(ctx context.Context, pv *crypto.PV, tp tx.DAOTxType, body any) (*ctypes.ResultBroadcastTx, error) {
	chainId, err := c.ChainId(ctx)
	if err != nil {
		return nil, err
	}
	acnt, err := c.Account(ctx, pv.Address())
	if err != nil {
		return nil, err
	}
	btx := &tx.DAOTx{
		Version: tx.DAOTxVersion1,
		Type:    tp,
		Nonce:   acnt.Nonce,
		Tx:      body,
	}
	if err = pv.SignTx(btx, chainId); err != nil {
		return nil, err
	}
	dat, err := tx.MarshalDAOTx(btx)
	if err != nil {
		return nil, err
	}
	res, err := c.cli.BroadcastTxSync(ctx, dat)
	if err != nil {
		return nil, err
	}
	if res.Code != 0 {
		return res, fmt.Errorf("tx rejected: code %d (%s): %s", res.Code, res.Codespace, res.Log)
	}
	c.logger.Info("tx broadcast", "type", tp, "hash", res.Hash)
	return res, nil
}
