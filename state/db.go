package state

import (
	"errors"
	"sync"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	dbm "github.com/cosmos/iavl/db"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

var ErrReadOnly = errors.New("read only state")

type StateHeader struct {
	Height  uint64
	ChainId string
}

// StateDB owns the versioned IAVL tree. Blocks are applied to a State
// obtained from NewState, flushed with Update and persisted with Commit.
type StateDB struct {
	mtx sync.RWMutex

	dir    string
	logger cmtlog.Logger
	db     *iavl.MutableTree

	header    StateHeader
	hash      common.Hash
	committed *iavl.ImmutableTree
}

func NewStateDB(dir string, logger cmtlog.Logger) (db *StateDB, err error) {
	ldb, err := dbm.NewDB("dao", "goleveldb", dir)
	if err != nil {
		return nil, err
	}
	return newStateDB(ldb, dir, logger)
}

// NewMemStateDB keeps the tree in memory; used by tests and tooling.
func NewMemStateDB(logger cmtlog.Logger) (*StateDB, error) {
	return newStateDB(dbm.NewMemDB(), "", logger)
}

func newStateDB(ldb dbm.DB, dir string, logger cmtlog.Logger) (db *StateDB, err error) {
	logger = logger.With("module", "daodb")
	tdb := iavl.NewMutableTree(ldb, 128, true, Cometbft2CosmosLogger(logger))
	version, err := tdb.Load()
	if err != nil {
		return nil, err
	}
	logger.Info("load db success", "version", version)
	db = &StateDB{
		dir:    dir,
		logger: logger,
		db:     tdb,
	}
	if err = db.load(version); err != nil {
		logger.Error("from daodb load fail", "err", err)
		return nil, err
	}
	return
}

func (db *StateDB) load(version int64) (err error) {
	val, err := db.db.Get([]byte(KeyState))
	if err != nil {
		return err
	}
	if val != nil {
		if err = rlp.DecodeBytes(val, &db.header); err != nil {
			return err
		}
	}
	if version > 0 {
		db.hash = calcHash(db.db.Hash())
		db.committed, err = db.db.GetImmutable(version)
	}
	return
}

func calcHash(rootHash []byte) common.Hash {
	return crypto.Keccak256Hash(rootHash)
}

func (db *StateDB) Close() (err error) {
	err = db.db.Close()
	return
}

func (db *StateDB) Header() StateHeader {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.header
}

// Hash is the application hash of the last committed version.
func (db *StateDB) Hash() common.Hash {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.hash
}

func (db *StateDB) SetChainId(chainId string) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	db.header.ChainId = chainId
}

// NewState opens a block-level state on the working tree.
func (db *StateDB) NewState() *State {
	return NewState(treeStore{tree: db.db}, db.logger)
}

// Update flushes st into the working tree and returns the resulting hash.
// Nothing is persisted until Commit.
func (db *StateDB) Update(st *State, height uint64) (h common.Hash, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	if err = st.Write(); err != nil {
		db.db.Rollback()
		return
	}
	header := db.header
	header.Height = height
	val, err := rlp.EncodeToBytes(&header)
	if err != nil {
		db.db.Rollback()
		return
	}
	if _, err = db.db.Set([]byte(KeyState), val); err != nil {
		db.db.Rollback()
		return
	}
	db.header = header
	h = calcHash(db.db.WorkingHash())
	return
}

func (db *StateDB) Commit() (h common.Hash, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	hash, ver, err := db.db.SaveVersion()
	if err != nil {
		return h, err
	}
	h = calcHash(hash)
	db.hash = h
	db.committed, err = db.db.GetImmutable(ver)
	if err != nil {
		return h, err
	}
	db.logger.Debug("state committed", "version", ver, "hash", h)
	return
}

// Rollback drops every uncommitted write on the working tree.
func (db *StateDB) Rollback() {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	db.db.Rollback()
	if val, err := db.db.Get([]byte(KeyState)); err == nil && val != nil {
		_ = rlp.DecodeBytes(val, &db.header)
	}
}

// QueryState is a read-only view of the last committed version.
func (db *StateDB) QueryState() (st *State, height uint64) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return NewState(readOnlyStore{tree: db.committed}, db.logger), db.header.Height
}

type readOnlyStore struct {
	tree *iavl.ImmutableTree
}

func (r readOnlyStore) Get(key []byte) ([]byte, error) {
	if r.tree == nil {
		return nil, nil
	}
	return r.tree.Get(key)
}

func (r readOnlyStore) Set(key, value []byte) error {
	return ErrReadOnly
}
