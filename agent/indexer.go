package agent

import (
	"context"
	"errors"
	"time"

	daotypes "github.com/calehh/hac-dao/types"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
	ctypes "github.com/cometbft/cometbft/rpc/core/types"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// BlockSource is the part of the node RPC the indexer reads from.
type BlockSource interface {
	Status(ctx context.Context) (*ctypes.ResultStatus, error)
	BlockResults(ctx context.Context, height *int64) (*ctypes.ResultBlockResults, error)
}

// ChainIndexer copies governance events from finalized blocks into sqlite.
type ChainIndexer struct {
	logger        cmtlog.Logger
	Url           string
	Height        int64
	db            *gorm.DB
	src           BlockSource
	eventHandlers map[string]eventHandler
	pollInterval  time.Duration
}

func OpenDB(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer
	db.DB().SetMaxOpenConns(1)
	if err := db.AutoMigrate(&Height{}, &Proposal{}, &ProposalVote{}, &Member{}, &Transfer{}).Error; err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func NewChainIndexer(logger cmtlog.Logger, dbPath string, chainUrl string, pollInterval time.Duration) (*ChainIndexer, error) {
	logger.Info("NewChainIndexer", "dbPath", dbPath, "url", chainUrl)
	cli, err := comethttp.New(chainUrl, "/websocket")
	if err != nil {
		return nil, err
	}
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, err
	}
	c, err := newChainIndexer(logger, db, cli, pollInterval)
	if err != nil {
		return nil, err
	}
	c.Url = chainUrl
	return c, nil
}

func newChainIndexer(logger cmtlog.Logger, db *gorm.DB, src BlockSource, pollInterval time.Duration) (*ChainIndexer, error) {
	h := Height{Id: 1}
	if err := db.First(&h).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	c := &ChainIndexer{
		logger:       logger.With("module", "indexer"),
		Height:       int64(h.Height + 1),
		db:           db,
		src:          src,
		pollInterval: pollInterval,
	}
	c.eventHandlers = map[string]eventHandler{
		daotypes.EventInitializedType:       c.handleEventInitialized,
		daotypes.EventProposalSubmittedType: c.handleEventProposalSubmitted,
		daotypes.EventVoteSubmittedType:     c.handleEventVoteSubmitted,
		daotypes.EventProposalProcessedType: c.handleEventProposalProcessed,
		daotypes.EventTransferredType:       c.handleEventTransferred,
	}
	return c, nil
}

func (c *ChainIndexer) Close() error {
	return c.db.Close()
}

type eventHandler func(tx *gorm.DB, event abci.Event, height int64) error

var ErrDecodeEvent = errors.New("decode event fail")

func (c *ChainIndexer) handleEvent(tx *gorm.DB, event abci.Event, height int64) error {
	if h, ok := c.eventHandlers[event.Type]; ok {
		return h(tx, event, height)
	}
	return nil
}

func (c *ChainIndexer) handleEventInitialized(tx *gorm.DB, event abci.Event, height int64) error {
	ev := daotypes.DecodeEventInitialized(event)
	if ev == nil {
		return ErrDecodeEvent
	}
	return tx.Save(&Member{Address: ev.Owner, SharesGranted: ev.Amount, JoinHeight: uint64(height)}).Error
}

func (c *ChainIndexer) handleEventProposalSubmitted(tx *gorm.DB, event abci.Event, height int64) error {
	ev := daotypes.DecodeEventProposalSubmitted(event)
	if ev == nil {
		return ErrDecodeEvent
	}
	proposal := Proposal{
		ProposalIndex:   ev.ProposalIndex,
		Proposer:        ev.Proposer,
		Applicant:       ev.Applicant,
		SharesRequested: ev.SharesRequested,
		StartingPeriod:  ev.StartingPeriod,
		Status:          ProposalStatusVoting,
		NewHeight:       uint64(height),
	}
	return tx.Create(&proposal).Error
}

func (c *ChainIndexer) handleEventVoteSubmitted(tx *gorm.DB, event abci.Event, height int64) error {
	ev := daotypes.DecodeEventVoteSubmitted(event)
	if ev == nil {
		return ErrDecodeEvent
	}
	vote := ProposalVote{
		Proposal: ev.ProposalIndex,
		Voter:    ev.Voter,
		Ballot:   uint8(ev.Ballot),
		Height:   uint64(height),
	}
	if err := tx.Create(&vote).Error; err != nil {
		return err
	}
	column := "no_votes"
	if ev.Ballot == daotypes.BallotYes {
		column = "yes_votes"
	}
	return tx.Model(&Proposal{}).Where("proposal_index = ?", ev.ProposalIndex).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error
}

func (c *ChainIndexer) handleEventProposalProcessed(tx *gorm.DB, event abci.Event, height int64) error {
	ev := daotypes.DecodeEventProposalProcessed(event)
	if ev == nil {
		return ErrDecodeEvent
	}
	status := ProposalStatusFailed
	if ev.DidPass {
		status = ProposalStatusPassed
	}
	err := tx.Model(&Proposal{}).Where("proposal_index = ?", ev.ProposalIndex).
		Updates(map[string]interface{}{"status": status, "process_height": uint64(height)}).Error
	if err != nil || !ev.DidPass {
		return err
	}
	var member Member
	err = tx.Where(Member{Address: ev.Applicant}).Attrs(Member{JoinHeight: uint64(height)}).FirstOrInit(&member).Error
	if err != nil {
		return err
	}
	member.SharesGranted += ev.SharesRequested
	return tx.Save(&member).Error
}

func (c *ChainIndexer) handleEventTransferred(tx *gorm.DB, event abci.Event, height int64) error {
	ev := daotypes.DecodeEventTransferred(event)
	if ev == nil {
		return ErrDecodeEvent
	}
	return tx.Create(&Transfer{
		Sender:    ev.From,
		Recipient: ev.To,
		Amount:    ev.Amount,
		Height:    uint64(height),
	}).Error
}

// IndexBlock stores the events of one block together with the new height.
func (c *ChainIndexer) IndexBlock(ctx context.Context, res *ctypes.ResultBlockResults) (err error) {
	tx := c.db.Begin()
	if err = tx.Error; err != nil {
		return
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	for _, txRes := range res.TxsResults {
		if txRes.Code != abci.CodeTypeOK {
			continue
		}
		for _, event := range txRes.Events {
			if err = c.handleEvent(tx, event, res.Height); err != nil {
				c.logger.Error("handle event fail", "height", res.Height, "type", event.Type, "err", err)
				return
			}
		}
	}
	if err = tx.Save(&Height{Id: 1, Height: uint64(res.Height)}).Error; err != nil {
		return
	}
	if err = tx.Commit().Error; err != nil {
		return
	}
	c.Height = res.Height + 1
	return
}

// Sync indexes every block up to the latest height reported by the node.
func (c *ChainIndexer) Sync(ctx context.Context) error {
	status, err := c.src.Status(ctx)
	if err != nil {
		return err
	}
	for status.SyncInfo.LatestBlockHeight >= c.Height {
		if err = ctx.Err(); err != nil {
			return err
		}
		height := c.Height
		res, err := c.src.BlockResults(ctx, &height)
		if err != nil {
			return err
		}
		if err = c.IndexBlock(ctx, res); err != nil {
			return err
		}
		c.logger.Debug("indexed block", "height", height)
	}
	return nil
}

func (c *ChainIndexer) Start(ctx context.Context) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Sync(ctx); err != nil && !errors.Is(err, context.Canceled) {
				c.logger.Error("indexer sync fail", "height", c.Height, "err", err)
			}
		}
	}
}

func (c *ChainIndexer) getProposals(proposer, applicant string, page int, pageSize int) ([]Proposal, uint64, error) {
	var proposals []Proposal
	query := c.db.Model(&Proposal{})
	if proposer != "" {
		query = query.Where("proposer = ?", proposer)
	}
	if applicant != "" {
		query = query.Where("applicant = ?", applicant)
	}
	var total uint64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("proposal_index desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *ChainIndexer) getProposalByIndex(index uint64) (Proposal, error) {
	var proposal Proposal
	err := c.db.Where("proposal_index = ?", index).First(&proposal).Error
	if err != nil {
		return Proposal{}, err
	}
	return proposal, nil
}

func (c *ChainIndexer) getVotesByProposal(proposal uint64, page int, pageSize int) ([]ProposalVote, error) {
	var votes []ProposalVote
	err := c.db.Where("proposal = ?", proposal).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

func (c *ChainIndexer) getVotesByVoter(voter string, page int, pageSize int) ([]ProposalVote, error) {
	var votes []ProposalVote
	err := c.db.Where("voter = ?", voter).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

func (c *ChainIndexer) getTransfers(address string, page int, pageSize int) ([]Transfer, uint64, error) {
	var transfers []Transfer
	query := c.db.Model(&Transfer{})
	if address != "" {
		query = query.Where("sender = ? OR recipient = ?", address, address)
	}
	var total uint64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&transfers).Error
	if err != nil {
		return nil, 0, err
	}
	return transfers, total, nil
}

func (c *ChainIndexer) getMembers(page int, pageSize int) ([]Member, error) {
	var members []Member
	err := c.db.Order("join_height asc").Offset(page * pageSize).Limit(pageSize).Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
