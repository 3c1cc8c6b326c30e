package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/calehh/hac-dao/dao"
	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
)

const (
	CodeTypeQueryNotFound uint32 = 404
	CodeTypeQueryInvalid  uint32 = 400
)

// Query routes /<resource>/<args...> to the matching querier. Queries read
// the last committed state.
func (app *DAOApp) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	parts := strings.Split(strings.Trim(req.Path, "/"), "/")
	q, ok := app.queriers[parts[0]]
	if !ok {
		res = &abcitypes.ResponseQuery{Code: CodeTypeQueryNotFound, Log: "unknown query path"}
		return
	}
	if app.engine == nil {
		res = &abcitypes.ResponseQuery{Code: CodeTypeUnsupported, Log: ErrNotInitialized.Error()}
		return
	}
	st, height := app.db.QueryState()
	res, err = q.Query(ctx, st, parts[1:])
	if err != nil {
		app.logger.Error("query fail", "path", req.Path, "err", err)
		res = &abcitypes.ResponseQuery{Code: types.CodeOf(err), Log: err.Error()}
		err = nil
	}
	res.Height = int64(height)
	return
}

type Querier interface {
	Query(ctx context.Context, st *state.State, args []string) (res *abcitypes.ResponseQuery, err error)
}

type QuerierFunc func(ctx context.Context, st *state.State, args []string) (*abcitypes.ResponseQuery, error)

func (f QuerierFunc) Query(ctx context.Context, st *state.State, args []string) (*abcitypes.ResponseQuery, error) {
	return f(ctx, st, args)
}

func invalidQuery(log string) *abcitypes.ResponseQuery {
	return &abcitypes.ResponseQuery{Code: CodeTypeQueryInvalid, Log: log}
}

func jsonResponse(v any) (*abcitypes.ResponseQuery, error) {
	dat, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &abcitypes.ResponseQuery{Value: dat}, nil
}

func NewAccountQuerier(app *DAOApp) Querier {
	return QuerierFunc(func(ctx context.Context, st *state.State, args []string) (*abcitypes.ResponseQuery, error) {
		if len(args) != 1 || args[0] == "" {
			return invalidQuery("usage: /accounts/<address>"), nil
		}
		acnt, err := app.engine.Account(st, args[0])
		if err != nil {
			return nil, err
		}
		nonce, err := st.Nonce(args[0])
		if err != nil {
			return nil, err
		}
		return jsonResponse(AccountInfo{Address: args[0], Balance: acnt, Nonce: nonce})
	})
}

type AccountInfo struct {
	Address string `json:"address"`
	types.Balance
	Nonce uint64 `json:"nonce"`
}

func NewProposalQuerier(app *DAOApp) Querier {
	return QuerierFunc(func(ctx context.Context, st *state.State, args []string) (*abcitypes.ResponseQuery, error) {
		if len(args) != 1 {
			return invalidQuery("usage: /proposals/<index>"), nil
		}
		idx, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return invalidQuery(err.Error()), nil
		}
		p, err := app.engine.Proposal(st, idx)
		if err != nil {
			return nil, err
		}
		deposit, _, err := app.engine.Deposit(st, idx)
		if err != nil {
			return nil, err
		}
		return jsonResponse(ProposalInfo{Proposal: *p, Deposit: deposit})
	})
}

// ProposalInfo is a proposal with the deposit its proposer escrowed.
type ProposalInfo struct {
	types.Proposal
	Deposit types.Deposit `json:"deposit"`
}

func NewMemberQuerier(app *DAOApp) Querier {
	return QuerierFunc(func(ctx context.Context, st *state.State, args []string) (*abcitypes.ResponseQuery, error) {
		if len(args) != 1 || args[0] == "" {
			return invalidQuery("usage: /members/<address>"), nil
		}
		m, found, err := app.engine.Member(st, args[0])
		if err != nil {
			return nil, err
		}
		if !found {
			return &abcitypes.ResponseQuery{Code: CodeTypeQueryNotFound, Log: "not a member"}, nil
		}
		return jsonResponse(m)
	})
}

func NewBallotQuerier(app *DAOApp) Querier {
	return QuerierFunc(func(ctx context.Context, st *state.State, args []string) (*abcitypes.ResponseQuery, error) {
		if len(args) != 2 {
			return invalidQuery("usage: /ballots/<address>/<index>"), nil
		}
		idx, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return invalidQuery(err.Error()), nil
		}
		b, found, err := app.engine.Ballot(st, args[0], idx)
		if err != nil {
			return nil, err
		}
		if !found {
			return &abcitypes.ResponseQuery{Code: CodeTypeQueryNotFound, Log: "no ballot"}, nil
		}
		return jsonResponse(map[string]any{"ballot": uint8(b), "vote": b.String()})
	})
}

type DAOInfo struct {
	Params               dao.Config `json:"params"`
	TotalShares          uint64     `json:"total_shares"`
	TotalSharesRequested uint64     `json:"total_shares_requested"`
	ProposalCount        uint64     `json:"proposal_count"`
}

func NewDAOQuerier(app *DAOApp) Querier {
	return QuerierFunc(func(ctx context.Context, st *state.State, args []string) (*abcitypes.ResponseQuery, error) {
		var (
			info DAOInfo
			err  error
		)
		info.Params = app.engine.Config()
		if info.TotalShares, err = app.engine.TotalShares(st); err != nil {
			return nil, err
		}
		if info.TotalSharesRequested, err = app.engine.TotalSharesRequested(st); err != nil {
			return nil, err
		}
		if info.ProposalCount, err = app.engine.ProposalCount(st); err != nil {
			return nil, err
		}
		return jsonResponse(info)
	})
}
