package handler

import (
	"context"

	"github.com/calehh/hac-dao/dao"
	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/tx"
	"github.com/calehh/hac-dao/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

const Codespace = "dao"

// TxHandler applies one transaction type. Check never mutates st. Process
// returns an error only for failures that must abort the block; rejected
// operations are reported through the result code and still spend the nonce.
type TxHandler interface {
	Check(ctx context.Context, st *state.State, btx *tx.DAOTx, sender string) (res *abcitypes.ResponseCheckTx, err error)
	Process(ctx context.Context, st *state.State, btx *tx.DAOTx, sender string) (res *abcitypes.ExecTxResult, err error)
}

type applyFunc func(eng *dao.Engine, st *state.State, btx *tx.DAOTx, sender string) error

type txHandler struct {
	logger cmtlog.Logger
	engine *dao.Engine
	apply  applyFunc
}

func newTxHandler(engine *dao.Engine, logger cmtlog.Logger, tp tx.DAOTxType, apply applyFunc) *txHandler {
	return &txHandler{
		logger: logger.With("module", tp.String()+"Tx"),
		engine: engine,
		apply:  apply,
	}
}

func (h *txHandler) Check(ctx context.Context, st *state.State, btx *tx.DAOTx, sender string) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	cst := st.Cache()
	defer cst.Discard()
	err1 := h.apply(h.engine.WithSink(dao.NopSink), cst, btx, sender)
	if err1 == nil {
		return
	}
	h.logger.Info("CheckTx fail", "sender", sender, "err", err1)
	if types.KindOf(err1) == types.KindInternal {
		return res, err1
	}
	res.Code = types.CodeOf(err1)
	res.Codespace = Codespace
	res.Log = err1.Error()
	return
}

func (h *txHandler) Process(ctx context.Context, st *state.State, btx *tx.DAOTx, sender string) (res *abcitypes.ExecTxResult, err error) {
	events := new(dao.EventLog)
	err = h.apply(h.engine.WithSink(events), st, btx, sender)
	if err != nil {
		if types.KindOf(err) == types.KindInternal {
			return nil, err
		}
		h.logger.Info("tx rejected", "sender", sender, "err", err)
		// a rejected tx is still included, so its nonce is spent
		if err1 := st.IncrementNonce(sender); err1 != nil {
			return nil, err1
		}
		return &abcitypes.ExecTxResult{
			Code:      types.CodeOf(err),
			Codespace: Codespace,
			Log:       err.Error(),
		}, nil
	}
	if err = st.IncrementNonce(sender); err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	for _, ev := range events.Events() {
		res.Events = append(res.Events, types.EncodeEvent(ev))
	}
	return
}

// Handlers returns the handler of every supported transaction type.
func Handlers(engine *dao.Engine, logger cmtlog.Logger) map[tx.DAOTxType]TxHandler {
	return map[tx.DAOTxType]TxHandler{
		tx.DAOTxTypeInit:     NewInitTxHandler(engine, logger),
		tx.DAOTxTypeProposal: NewProposalTxHandler(engine, logger),
		tx.DAOTxTypeVote:     NewVoteTxHandler(engine, logger),
		tx.DAOTxTypeProcess:  NewProcessTxHandler(engine, logger),
		tx.DAOTxTypeTransfer: NewTransferTxHandler(engine, logger),
	}
}
