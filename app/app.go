package app

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/calehh/hac-dao/config"
	"github.com/calehh/hac-dao/dao"
	"github.com/calehh/hac-dao/state"
	"github.com/calehh/hac-dao/tx"
	"github.com/calehh/hac-dao/tx/handler"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cometbft/cometbft/store"
)

var (
	ErrNotInitialized      = errors.New("dao parameters not loaded, chain not initialized")
	ErrUnexpectedBlockHash = errors.New("unexpected BlockStore")
)

// blockClock is the logical time seen by the governance engine: the height of
// the block being executed.
type blockClock struct {
	height atomic.Uint64
}

func (c *blockClock) Now() uint64 {
	return c.height.Load()
}

func (c *blockClock) Set(height uint64) {
	c.height.Store(height)
}

var _ abcitypes.Application = &DAOApp{}

type DAOApp struct {
	cfg    *config.DAOAppConfig
	logger cmtlog.Logger

	db       *state.StateDB
	clock    *blockClock
	engine   *dao.Engine
	txHdlrs  map[tx.DAOTxType]handler.TxHandler
	queriers map[string]Querier
}

func NewDAOApp(cfg *config.DAOAppConfig, logger cmtlog.Logger) (app *DAOApp, err error) {
	logger = logger.With("module", "app")

	db, err := state.NewStateDB(cfg.DataDir(), logger)
	if err != nil {
		return nil, err
	}
	return newDAOApp(cfg, db, logger)
}

func newDAOApp(cfg *config.DAOAppConfig, db *state.StateDB, logger cmtlog.Logger) (app *DAOApp, err error) {
	app = &DAOApp{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		clock:    new(blockClock),
		txHdlrs:  make(map[tx.DAOTxType]handler.TxHandler),
		queriers: make(map[string]Querier),
	}
	app.clock.Set(db.Header().Height + 1)

	st, _ := db.QueryState()
	raw, err := st.Params()
	if err != nil {
		return nil, err
	}
	if raw != nil {
		daoCfg, err := dao.ParseConfig(raw)
		if err != nil {
			return nil, err
		}
		if err = app.setEngine(daoCfg); err != nil {
			return nil, err
		}
	}
	app.registerQuerier()
	return
}

func (app *DAOApp) setEngine(cfg dao.Config) (err error) {
	app.engine, err = dao.New(cfg, app.clock, dao.NopSink, app.logger)
	if err != nil {
		return
	}
	app.registerTxHandler()
	app.logger.Info("dao parameters loaded", "params", cfg.String())
	return
}

// Start checks the restored state against the block store.
func (app *DAOApp) Start(bs *store.BlockStore) {
	height := app.db.Header().Height
	if height > 0 && bs.LoadBlockMeta(int64(height)) == nil {
		panic(ErrUnexpectedBlockHash)
	}
	app.logger.Info("DAO app started", "height", height, "hash", app.db.Hash())
}

func (app *DAOApp) Stop() {
	err := app.db.Close()
	if err != nil {
		app.logger.Error("close db fail", "err", err)
	}
	app.logger.Info("DAO app stopped")
}

func (app *DAOApp) registerTxHandler() {
	app.txHdlrs = handler.Handlers(app.engine, app.logger)
}

func (app *DAOApp) registerQuerier() {
	app.queriers["accounts"] = NewAccountQuerier(app)
	app.queriers["proposals"] = NewProposalQuerier(app)
	app.queriers["members"] = NewMemberQuerier(app)
	app.queriers["ballots"] = NewBallotQuerier(app)
	app.queriers["dao"] = NewDAOQuerier(app)
}

func (app *DAOApp) InitChain(_ context.Context, chain *abcitypes.RequestInitChain) (res *abcitypes.ResponseInitChain, err error) {
	daoCfg, err := ParseAppState(chain.AppStateBytes)
	if err != nil {
		app.logger.Error("InitChain parse app state fail", "err", err)
		return nil, err
	}
	if err = app.setEngine(daoCfg); err != nil {
		app.logger.Error("InitChain invalid dao parameters", "err", err)
		return nil, err
	}
	app.db.SetChainId(chain.ChainId)
	app.clock.Set(uint64(chain.InitialHeight))

	st := app.db.NewState()
	raw, err := daoCfg.Marshal()
	if err != nil {
		return nil, err
	}
	if err = st.SetParams(raw); err != nil {
		return nil, err
	}
	if daoCfg.InitialSupply > 0 {
		if err = app.engine.Initialize(st, daoCfg.Owner, daoCfg.InitialSupply); err != nil {
			app.logger.Error("InitChain initialize token fail", "err", err)
			return nil, err
		}
	}
	h, err := app.db.Update(st, 0)
	if err != nil {
		app.logger.Error("InitChain update state fail", "err", err)
		return nil, err
	}
	return &abcitypes.ResponseInitChain{
		AppHash: h.Bytes(),
	}, nil
}

func (app *DAOApp) Info(ctx context.Context, info *abcitypes.RequestInfo) (*abcitypes.ResponseInfo, error) {
	header := app.db.Header()
	res := &abcitypes.ResponseInfo{
		LastBlockHeight: int64(header.Height),
	}
	if header.Height > 0 {
		res.LastBlockAppHash = app.db.Hash().Bytes()
	}
	return res, nil
}

func (app *DAOApp) ExtendVote(_ context.Context, extend *abcitypes.RequestExtendVote) (*abcitypes.ResponseExtendVote, error) {
	return &abcitypes.ResponseExtendVote{}, nil
}

func (app *DAOApp) VerifyVoteExtension(_ context.Context, verify *abcitypes.RequestVerifyVoteExtension) (*abcitypes.ResponseVerifyVoteExtension, error) {
	return &abcitypes.ResponseVerifyVoteExtension{Status: abcitypes.ResponseVerifyVoteExtension_ACCEPT}, nil
}

func (app *DAOApp) ApplySnapshotChunk(context.Context, *abcitypes.RequestApplySnapshotChunk) (*abcitypes.ResponseApplySnapshotChunk, error) {
	return &abcitypes.ResponseApplySnapshotChunk{}, nil
}

func (app *DAOApp) ListSnapshots(context.Context, *abcitypes.RequestListSnapshots) (*abcitypes.ResponseListSnapshots, error) {
	return &abcitypes.ResponseListSnapshots{}, nil
}

func (app *DAOApp) LoadSnapshotChunk(context.Context, *abcitypes.RequestLoadSnapshotChunk) (*abcitypes.ResponseLoadSnapshotChunk, error) {
	return &abcitypes.ResponseLoadSnapshotChunk{}, nil
}

func (app *DAOApp) OfferSnapshot(context.Context, *abcitypes.RequestOfferSnapshot) (*abcitypes.ResponseOfferSnapshot, error) {
	return &abcitypes.ResponseOfferSnapshot{}, nil
}
