package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/calehh/hac-dao/config"
	"github.com/calehh/hac-dao/crypto"
	"github.com/calehh/hac-dao/dao"
	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/tx"
	"github.com/calehh/hac-dao/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/require"
)

const chainId = "dao-test"

type testChain struct {
	t      *testing.T
	app    *DAOApp
	nonces map[string]uint64
}

func newTestChain(t *testing.T, owner *crypto.PV) *testChain {
	db, err := state.NewMemStateDB(cmtlog.NewNopLogger())
	require.NoError(t, err)
	app, err := newDAOApp(config.DefaultDAOAppConfig(t.TempDir()), db, cmtlog.NewNopLogger())
	require.NoError(t, err)

	cfg := dao.DefaultConfig()
	cfg.Owner = owner.Address()
	cfg.InitialSupply = 1000
	appState, err := NewAppState(cfg)
	require.NoError(t, err)

	res, err := app.InitChain(context.Background(), &abcitypes.RequestInitChain{
		ChainId:       chainId,
		InitialHeight: 1,
		AppStateBytes: appState,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.AppHash)
	return &testChain{t: t, app: app, nonces: make(map[string]uint64)}
}

func (c *testChain) signed(pv *crypto.PV, tp tx.DAOTxType, body any) []byte {
	btx := &tx.DAOTx{
		Version: tx.DAOTxVersion1,
		Type:    tp,
		Nonce:   c.nonces[pv.Address()],
		Tx:      body,
	}
	require.NoError(c.t, pv.SignTx(btx, chainId))
	dat, err := tx.MarshalDAOTx(btx)
	require.NoError(c.t, err)
	return dat
}

// block finalizes and commits txs at height. Nonces advance for every tx
// that reached its handler, accepted or not.
func (c *testChain) block(height int64, txs ...[]byte) []*abcitypes.ExecTxResult {
	ctx := context.Background()
	res, err := c.app.FinalizeBlock(ctx, &abcitypes.RequestFinalizeBlock{Height: height, Txs: txs})
	require.NoError(c.t, err)
	_, err = c.app.Commit(ctx, &abcitypes.RequestCommit{})
	require.NoError(c.t, err)
	for i, stx := range txs {
		if hostRejected(res.TxResults[i].Code) {
			continue
		}
		btx, err := tx.UnmarshalDAOTx(stx)
		require.NoError(c.t, err)
		sender, err := btx.Sender()
		require.NoError(c.t, err)
		c.nonces[sender]++
	}
	return res.TxResults
}

func (c *testChain) query(path string, v any) uint32 {
	res, err := c.app.Query(context.Background(), &abcitypes.RequestQuery{Path: path})
	require.NoError(c.t, err)
	if res.Code == 0 && v != nil {
		require.NoError(c.t, json.Unmarshal(res.Value, v))
	}
	return res.Code
}

func TestGovernanceOverABCI(t *testing.T) {
	owner, b, c := crypto.GenPV(), crypto.GenPV(), crypto.GenPV()
	chain := newTestChain(t, owner)

	res := chain.block(1, chain.signed(owner, tx.DAOTxTypeProposal, &tx.ProposalTx{Applicant: b.Address(), SharesRequested: 100}))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	ev := types.DecodeEventProposalSubmitted(res[0].Events[0])
	require.Equal(t, uint64(6), ev.StartingPeriod)

	var info DAOInfo
	require.Equal(t, uint32(0), chain.query("/dao/", &info))
	require.Equal(t, uint64(1000), info.TotalShares)
	require.Equal(t, uint64(100), info.TotalSharesRequested)

	// voting opens after the starting period
	res = chain.block(6, chain.signed(owner, tx.DAOTxTypeVote, &tx.VoteTx{Proposal: 0, Ballot: 0}))
	require.Equal(t, types.ErrVotingNotStarted.Code, res[0].Code)
	require.Equal(t, "dao", res[0].Codespace)

	res = chain.block(7, chain.signed(owner, tx.DAOTxTypeVote, &tx.VoteTx{Proposal: 0, Ballot: 0}))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)

	res = chain.block(17, chain.signed(c, tx.DAOTxTypeProcess, &tx.ProcessTx{Proposal: 0}))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	require.Len(t, res[0].Events, 2)
	processed := types.DecodeEventProposalProcessed(res[0].Events[1])
	require.True(t, processed.DidPass)

	var acnt AccountInfo
	require.Equal(t, uint32(0), chain.query(fmt.Sprintf("/accounts/%s", b.Address()), &acnt))
	require.Equal(t, uint64(100), acnt.Free)
	require.Equal(t, uint32(0), chain.query(fmt.Sprintf("/accounts/%s", c.Address()), &acnt))
	require.Equal(t, uint64(1), acnt.Free)
	require.Equal(t, uint32(0), chain.query(fmt.Sprintf("/accounts/%s", owner.Address()), &acnt))
	require.Equal(t, types.Balance{Free: 998, Locked: 1}, acnt.Balance)
	// proposal, vote rejected at height 6, vote
	require.Equal(t, uint64(3), acnt.Nonce)

	var m types.Member
	require.Equal(t, uint32(0), chain.query(fmt.Sprintf("/members/%s", b.Address()), &m))
	require.True(t, m.Exists)
	require.Equal(t, CodeTypeQueryNotFound, chain.query(fmt.Sprintf("/members/%s", c.Address()), nil))

	var p ProposalInfo
	require.Equal(t, uint32(0), chain.query("/proposals/0", &p))
	require.True(t, p.Processed)
	require.Equal(t, types.Deposit{Proposer: owner.Address(), Amount: 10, Refunded: true}, p.Deposit)
	require.Equal(t, types.ErrProposalNotFound.Code, chain.query("/proposals/1", nil))
	require.Equal(t, uint32(0), chain.query(fmt.Sprintf("/ballots/%s/0", owner.Address()), nil))
	require.Equal(t, CodeTypeQueryNotFound, chain.query("/unknown", nil))

	require.Equal(t, uint32(0), chain.query("/dao/", &info))
	require.Equal(t, uint64(1100), info.TotalShares)
	require.Equal(t, uint64(0), info.TotalSharesRequested)
	require.Equal(t, uint64(1), info.ProposalCount)
}

func TestTxAuthentication(t *testing.T) {
	owner, b := crypto.GenPV(), crypto.GenPV()
	chain := newTestChain(t, owner)
	ctx := context.Background()
	chain.block(1)

	good := chain.signed(owner, tx.DAOTxTypeTransfer, &tx.TransferTx{To: b.Address(), Amount: 5})
	check, err := chain.app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: good})
	require.NoError(t, err)
	require.Equal(t, uint32(0), check.Code, check.Log)

	check, err = chain.app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: []byte("garbage")})
	require.NoError(t, err)
	require.Equal(t, CodeTypeEncodingError, check.Code)

	pp, err := chain.app.ProcessProposal(ctx, &abcitypes.RequestProcessProposal{Height: 2, Txs: [][]byte{good, []byte("garbage")}})
	require.NoError(t, err)
	require.Equal(t, abcitypes.ResponseProcessProposal_REJECT, pp.Status)

	res := chain.block(2, good, good)
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	require.Equal(t, CodeTypeUnauthorized, res[1].Code)

	notOwner := chain.signed(b, tx.DAOTxTypeInit, &tx.InitTx{Amount: 1})
	check, err = chain.app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: notOwner})
	require.NoError(t, err)
	require.Equal(t, types.ErrNotOwner.Code, check.Code)
}

func TestPrepareProposalDropsFailingTxs(t *testing.T) {
	owner, b := crypto.GenPV(), crypto.GenPV()
	chain := newTestChain(t, owner)

	ok := chain.signed(owner, tx.DAOTxTypeTransfer, &tx.TransferTx{To: b.Address(), Amount: 5})
	broke := chain.signed(b, tx.DAOTxTypeTransfer, &tx.TransferTx{To: owner.Address(), Amount: 50})
	res, err := chain.app.PrepareProposal(context.Background(), &abcitypes.RequestPrepareProposal{
		Height:     1,
		MaxTxBytes: 1 << 20,
		Txs:        [][]byte{ok, broke},
	})
	require.NoError(t, err)
	require.Equal(t, [][]byte{ok}, res.Txs)

	var info DAOInfo
	require.Equal(t, uint32(0), chain.query("/dao/", &info))
	var acnt AccountInfo
	require.Equal(t, uint32(0), chain.query(fmt.Sprintf("/accounts/%s", b.Address()), &acnt))
	require.Equal(t, uint64(0), acnt.Free)
}

func TestRestartRestoresEngine(t *testing.T) {
	owner := crypto.GenPV()
	chain := newTestChain(t, owner)
	chain.block(1)

	restarted, err := newDAOApp(chain.app.cfg, chain.app.db, cmtlog.NewNopLogger())
	require.NoError(t, err)
	require.NotNil(t, restarted.engine)
	require.Equal(t, owner.Address(), restarted.engine.Config().Owner)

	info, err := restarted.Info(context.Background(), &abcitypes.RequestInfo{})
	require.NoError(t, err)
	require.Equal(t, int64(1), info.LastBlockHeight)
	require.Equal(t, chain.app.db.Hash().Bytes(), info.LastBlockAppHash)
}

func TestRejectedTxSpendsNonce(t *testing.T) {
	owner, c := crypto.GenPV(), crypto.GenPV()
	chain := newTestChain(t, owner)

	notReady := chain.signed(c, tx.DAOTxTypeProcess, &tx.ProcessTx{Proposal: 0})
	res := chain.block(1, notReady)
	require.Equal(t, types.ErrProposalNotFound.Code, res[0].Code)

	res = chain.block(2, notReady)
	require.Equal(t, CodeTypeUnauthorized, res[0].Code)

	var acnt AccountInfo
	require.Equal(t, uint32(0), chain.query(fmt.Sprintf("/accounts/%s", c.Address()), &acnt))
	require.Equal(t, uint64(1), acnt.Nonce)
}

func TestUnresolvableAccountIdsRejected(t *testing.T) {
	owner, b := crypto.GenPV(), crypto.GenPV()
	chain := newTestChain(t, owner)

	res := chain.block(1,
		chain.signed(owner, tx.DAOTxTypeTransfer, &tx.TransferTx{To: strings.ToLower(b.Address()), Amount: 100}),
	)
	require.Equal(t, types.ErrInvalidAddress.Code, res[0].Code)
	res = chain.block(2,
		chain.signed(owner, tx.DAOTxTypeProposal, &tx.ProposalTx{Applicant: "not-an-address", SharesRequested: 5}),
	)
	require.Equal(t, types.ErrInvalidAddress.Code, res[0].Code)

	var acnt AccountInfo
	require.Equal(t, uint32(0), chain.query(fmt.Sprintf("/accounts/%s", owner.Address()), &acnt))
	require.Equal(t, types.Balance{Free: 1000}, acnt.Balance)
	var info DAOInfo
	require.Equal(t, uint32(0), chain.query("/dao/", &info))
	require.Equal(t, uint64(0), info.ProposalCount)
}
