package handler

import (
	"context"
	"strings"
	"testing"

	"github.com/calehh/hac-dao/dao"
	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/tx"
	"github.com/calehh/hac-dao/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/require"
)

const owner = "OWNER"

var addrB = strings.Repeat("B", 40)

func newTestHandlers(t *testing.T) (map[tx.DAOTxType]TxHandler, *state.State) {
	db, err := state.NewMemStateDB(cmtlog.NewNopLogger())
	require.NoError(t, err)
	cfg := dao.DefaultConfig()
	cfg.Owner = owner
	eng, err := dao.New(cfg, dao.ClockFunc(func() uint64 { return 1 }), nil, cmtlog.NewNopLogger())
	require.NoError(t, err)
	return Handlers(eng, cmtlog.NewNopLogger()), db.NewState()
}

func TestProcessEmitsEventsAndBumpsNonce(t *testing.T) {
	hdlrs, st := newTestHandlers(t)
	ctx := context.Background()

	res, err := hdlrs[tx.DAOTxTypeInit].Process(ctx, st, &tx.DAOTx{Type: tx.DAOTxTypeInit, Tx: &tx.InitTx{Amount: 100}}, owner)
	require.NoError(t, err)
	require.Equal(t, uint32(0), res.Code)
	require.Len(t, res.Events, 1)
	require.Equal(t, types.EventInitializedType, res.Events[0].Type)

	nonce, err := st.Nonce(owner)
	require.NoError(t, err)
	require.Equal(t, uint64(1), nonce)

	res, err = hdlrs[tx.DAOTxTypeTransfer].Process(ctx, st, &tx.DAOTx{Type: tx.DAOTxTypeTransfer, Tx: &tx.TransferTx{To: addrB, Amount: 40}}, owner)
	require.NoError(t, err)
	require.Equal(t, uint32(0), res.Code)
	ev := types.DecodeEventTransferred(res.Events[0])
	require.Equal(t, &types.EventTransferred{From: owner, To: addrB, Amount: 40}, ev)
}

func TestProcessRejection(t *testing.T) {
	hdlrs, st := newTestHandlers(t)
	ctx := context.Background()

	res, err := hdlrs[tx.DAOTxTypeInit].Process(ctx, st, &tx.DAOTx{Type: tx.DAOTxTypeInit, Tx: &tx.InitTx{Amount: 100}}, addrB)
	require.NoError(t, err)
	require.Equal(t, types.ErrNotOwner.Code, res.Code)
	require.Equal(t, Codespace, res.Codespace)
	require.Empty(t, res.Events)

	init, err := st.Initialized()
	require.NoError(t, err)
	require.False(t, init)

	// the rejected tx spent its nonce and cannot be replayed
	nonce, err := st.Nonce(addrB)
	require.NoError(t, err)
	require.Equal(t, uint64(1), nonce)

	res, err = hdlrs[tx.DAOTxTypeVote].Process(ctx, st, &tx.DAOTx{Type: tx.DAOTxTypeVote, Tx: &tx.TransferTx{}}, addrB)
	require.NoError(t, err)
	require.Equal(t, types.ErrMalformedTx.Code, res.Code)

	nonce, err = st.Nonce(addrB)
	require.NoError(t, err)
	require.Equal(t, uint64(2), nonce)
}

func TestAccountIdsMustBeAddresses(t *testing.T) {
	hdlrs, st := newTestHandlers(t)
	ctx := context.Background()

	res, err := hdlrs[tx.DAOTxTypeInit].Process(ctx, st, &tx.DAOTx{Type: tx.DAOTxTypeInit, Tx: &tx.InitTx{Amount: 100}}, owner)
	require.NoError(t, err)
	require.Equal(t, uint32(0), res.Code)

	for _, id := range []string{strings.ToLower(addrB), "not-an-address", "", addrB[:38]} {
		transfer := &tx.DAOTx{Type: tx.DAOTxTypeTransfer, Tx: &tx.TransferTx{To: id, Amount: 10}}
		check, err := hdlrs[tx.DAOTxTypeTransfer].Check(ctx, st, transfer, owner)
		require.NoError(t, err)
		require.Equal(t, types.ErrInvalidAddress.Code, check.Code, id)

		res, err = hdlrs[tx.DAOTxTypeTransfer].Process(ctx, st, transfer, owner)
		require.NoError(t, err)
		require.Equal(t, types.ErrInvalidAddress.Code, res.Code, id)

		proposal := &tx.DAOTx{Type: tx.DAOTxTypeProposal, Tx: &tx.ProposalTx{Applicant: id, SharesRequested: 5}}
		res, err = hdlrs[tx.DAOTxTypeProposal].Process(ctx, st, proposal, owner)
		require.NoError(t, err)
		require.Equal(t, types.ErrInvalidAddress.Code, res.Code, id)
	}

	bal, _, err := st.Balance(owner)
	require.NoError(t, err)
	require.Equal(t, types.Balance{Free: 100}, bal)
}

func TestCheckDoesNotMutate(t *testing.T) {
	hdlrs, st := newTestHandlers(t)
	ctx := context.Background()

	res, err := hdlrs[tx.DAOTxTypeInit].Check(ctx, st, &tx.DAOTx{Type: tx.DAOTxTypeInit, Tx: &tx.InitTx{Amount: 100}}, owner)
	require.NoError(t, err)
	require.Equal(t, uint32(0), res.Code)

	init, err := st.Initialized()
	require.NoError(t, err)
	require.False(t, init)

	res, err = hdlrs[tx.DAOTxTypeProposal].Check(ctx, st, &tx.DAOTx{Type: tx.DAOTxTypeProposal, Tx: &tx.ProposalTx{Applicant: addrB, SharesRequested: 5}}, owner)
	require.NoError(t, err)
	require.Equal(t, types.ErrDepositTooSmall.Code, res.Code)
}
