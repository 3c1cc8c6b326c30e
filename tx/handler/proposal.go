package handler

import (
	"github.com/calehh/hac-dao/dao"
	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/tx"
	"github.com/calehh/hac-dao/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

func NewInitTxHandler(engine *dao.Engine, logger cmtlog.Logger) TxHandler {
	return newTxHandler(engine, logger, tx.DAOTxTypeInit, func(eng *dao.Engine, st *state.State, btx *tx.DAOTx, sender string) error {
		itx, ok := btx.Tx.(*tx.InitTx)
		if !ok {
			return types.ErrMalformedTx
		}
		return eng.Initialize(st, sender, itx.Amount)
	})
}

func NewProposalTxHandler(engine *dao.Engine, logger cmtlog.Logger) TxHandler {
	return newTxHandler(engine, logger, tx.DAOTxTypeProposal, func(eng *dao.Engine, st *state.State, btx *tx.DAOTx, sender string) error {
		ptx, ok := btx.Tx.(*tx.ProposalTx)
		if !ok {
			return types.ErrMalformedTx
		}
		if err := tx.ValidateAddress(ptx.Applicant); err != nil {
			return err
		}
		_, err := eng.SubmitProposal(st, sender, ptx.Applicant, ptx.SharesRequested)
		return err
	})
}

func NewVoteTxHandler(engine *dao.Engine, logger cmtlog.Logger) TxHandler {
	return newTxHandler(engine, logger, tx.DAOTxTypeVote, func(eng *dao.Engine, st *state.State, btx *tx.DAOTx, sender string) error {
		vtx, ok := btx.Tx.(*tx.VoteTx)
		if !ok {
			return types.ErrMalformedTx
		}
		return eng.SubmitVote(st, sender, vtx.Proposal, types.Ballot(vtx.Ballot))
	})
}

func NewProcessTxHandler(engine *dao.Engine, logger cmtlog.Logger) TxHandler {
	return newTxHandler(engine, logger, tx.DAOTxTypeProcess, func(eng *dao.Engine, st *state.State, btx *tx.DAOTx, sender string) error {
		ptx, ok := btx.Tx.(*tx.ProcessTx)
		if !ok {
			return types.ErrMalformedTx
		}
		_, err := eng.ProcessProposal(st, sender, ptx.Proposal)
		return err
	})
}

func NewTransferTxHandler(engine *dao.Engine, logger cmtlog.Logger) TxHandler {
	return newTxHandler(engine, logger, tx.DAOTxTypeTransfer, func(eng *dao.Engine, st *state.State, btx *tx.DAOTx, sender string) error {
		ttx, ok := btx.Tx.(*tx.TransferTx)
		if !ok {
			return types.ErrMalformedTx
		}
		if err := tx.ValidateAddress(ttx.To); err != nil {
			return err
		}
		return eng.Transfer(st, sender, ttx.To, ttx.Amount)
	})
}
