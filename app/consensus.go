package app

import (
	"context"
	"errors"

	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/tx"
	abcitypes "github.com/cometbft/cometbft/abci/types"
)

var (
	ErrUnexpectedTxProcess = errors.New("unexpected tx process")
	ErrUnsupportedTx       = errors.New("unsupported tx")
)

const (
	CodeTypeOK            uint32 = 0
	CodeTypeEncodingError uint32 = 1
	CodeTypeUnauthorized  uint32 = 2
	CodeTypeUnsupported   uint32 = 3
)

// hostRejected reports codes given before a tx reaches its handler. Such a
// tx never spends its nonce.
func hostRejected(code uint32) bool {
	return code == CodeTypeEncodingError || code == CodeTypeUnauthorized || code == CodeTypeUnsupported
}

// parseTx decodes txDat and authenticates its sender against st.
func (app *DAOApp) parseTx(st *state.State, txDat []byte, allowNonceGap bool) (btx *tx.DAOTx, sender string, code uint32, err error) {
	btx, err = tx.UnmarshalDAOTx(txDat)
	if err != nil {
		return nil, "", CodeTypeEncodingError, err
	}
	sender, err = st.Verify(btx, app.db.Header().ChainId, allowNonceGap)
	if err != nil {
		return nil, "", CodeTypeUnauthorized, err
	}
	return
}

func (app *DAOApp) CheckTx(ctx context.Context, check *abcitypes.RequestCheckTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: CodeTypeOK}
	if app.engine == nil {
		res.Code = CodeTypeUnsupported
		res.Log = ErrNotInitialized.Error()
		return
	}
	st, _ := app.db.QueryState()
	btx, sender, code, err := app.parseTx(st, check.Tx, true)
	if err != nil {
		app.logger.Info("parse tx fail", "err", err)
		res.Code = code
		res.Log = err.Error()
		err = nil
		return
	}
	app.logger.Debug("check tx", "type", btx.Type, "sender", sender)
	h, ok := app.txHdlrs[btx.Type]
	if !ok {
		app.logger.Error("unsupported tx", "type", btx.Type)
		res.Code = CodeTypeUnsupported
		res.Log = ErrUnsupportedTx.Error()
		return
	}
	res, err = h.Check(ctx, st, btx, sender)
	if err != nil {
		app.logger.Error("check tx fail", "err", err)
		res = &abcitypes.ResponseCheckTx{Code: CodeTypeUnsupported, Log: err.Error()}
		err = nil
	}
	return
}

// PrepareProposal keeps the transactions that execute successfully, in
// mempool order, within the block byte limit.
func (app *DAOApp) PrepareProposal(ctx context.Context, proposal *abcitypes.RequestPrepareProposal) (res *abcitypes.ResponsePrepareProposal, err error) {
	res = &abcitypes.ResponsePrepareProposal{Txs: make([][]byte, 0, len(proposal.Txs))}
	if app.engine == nil {
		return
	}
	app.clock.Set(uint64(proposal.Height))
	st := app.db.NewState()
	defer st.Discard()
	var size int64
	for _, stx := range proposal.Txs {
		if size+int64(len(stx)) > proposal.MaxTxBytes {
			break
		}
		result, err := app.deliverTx(ctx, st, stx)
		if err != nil {
			app.logger.Error("PrepareProposal tx fail", "height", proposal.Height, "err", err)
			return res, nil
		}
		if result.Code != CodeTypeOK {
			app.logger.Info("PrepareProposal drop tx", "code", result.Code, "log", result.Log)
			continue
		}
		size += int64(len(stx))
		res.Txs = append(res.Txs, stx)
	}
	return
}

// ProcessProposal rejects blocks carrying transactions that cannot be decoded
// or authenticated. Rejected governance operations are allowed through.
func (app *DAOApp) ProcessProposal(ctx context.Context, proposal *abcitypes.RequestProcessProposal) (res *abcitypes.ResponseProcessProposal, err error) {
	res = &abcitypes.ResponseProcessProposal{Status: abcitypes.ResponseProcessProposal_REJECT}
	if len(proposal.Txs) == 0 {
		res.Status = abcitypes.ResponseProcessProposal_ACCEPT
		return
	}
	if app.engine == nil {
		return
	}
	app.clock.Set(uint64(proposal.Height))
	st := app.db.NewState()
	defer st.Discard()
	for _, stx := range proposal.Txs {
		result, err := app.deliverTx(ctx, st, stx)
		if err != nil {
			app.logger.Error("ProcessProposal tx fail", "height", proposal.Height, "err", err)
			return res, nil
		}
		if hostRejected(result.Code) {
			app.logger.Info("ProcessProposal reject", "height", proposal.Height, "code", result.Code, "log", result.Log)
			return res, nil
		}
	}
	res.Status = abcitypes.ResponseProcessProposal_ACCEPT
	return
}

func (app *DAOApp) FinalizeBlock(ctx context.Context, req *abcitypes.RequestFinalizeBlock) (*abcitypes.ResponseFinalizeBlock, error) {
	app.logger.Info("FinalizeBlock", "height", req.Height, "txs", len(req.Txs))
	if app.engine == nil {
		return nil, ErrNotInitialized
	}
	app.clock.Set(uint64(req.Height))
	st := app.db.NewState()
	res := make([]*abcitypes.ExecTxResult, len(req.Txs))
	for i, stx := range req.Txs {
		result, err := app.deliverTx(ctx, st, stx)
		if err != nil {
			app.logger.Error("unexpected process tx fail", "height", req.Height, "err", err)
			st.Discard()
			app.db.Rollback()
			return nil, err
		}
		res[i] = result
	}
	h, err := app.db.Update(st, uint64(req.Height))
	if err != nil {
		app.logger.Error("state update hash fail", "err", err)
		return nil, err
	}
	return &abcitypes.ResponseFinalizeBlock{
		TxResults: res,
		AppHash:   h.Bytes(),
	}, nil
}

func (app *DAOApp) deliverTx(ctx context.Context, st *state.State, stx []byte) (*abcitypes.ExecTxResult, error) {
	btx, sender, code, err := app.parseTx(st, stx, false)
	if err != nil {
		return &abcitypes.ExecTxResult{Code: code, Log: err.Error()}, nil
	}
	h, ok := app.txHdlrs[btx.Type]
	if !ok {
		return &abcitypes.ExecTxResult{Code: CodeTypeUnsupported, Log: ErrUnsupportedTx.Error()}, nil
	}
	result, err := h.Process(ctx, st, btx, sender)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrUnexpectedTxProcess
	}
	return result, nil
}

func (app *DAOApp) Commit(ctx context.Context, commit *abcitypes.RequestCommit) (*abcitypes.ResponseCommit, error) {
	h, err := app.db.Commit()
	if err != nil {
		return nil, err
	}
	height := app.db.Header().Height
	app.clock.Set(height + 1)
	app.logger.Info("Commit", "height", height, "hash", h)
	return &abcitypes.ResponseCommit{}, nil
}
