package registry

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var ErrNotFound = errors.New("deployment not registered")

const keySep = "/"

// Entry indexes one deployment record file.
type Entry struct {
	Network     string         `json:"network"`
	Kind        string         `json:"type"`
	Address     common.Address `json:"address"`
	TxHash      common.Hash    `json:"tx_hash"`
	BlockNumber uint64         `json:"block_number"`
	File        string         `json:"file"`
}

// Registry is a LevelDB index of deployments, keyed network/type/address.
type Registry struct {
	db *leveldb.DB
}

// Open opens the registry at path, or an in-memory one when path is empty.
func Open(path string) (*Registry, error) {
	var (
		db  *leveldb.DB
		err error
	)

	if path == "" {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, err
	}

	return &Registry{db: db}, nil
}

func (r *Registry) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func key(network, kind string, address common.Address) []byte {
	return []byte(network + keySep + kind + keySep + strings.ToLower(address.Hex()))
}

// Put stores e, replacing any entry for the same deployment.
func (r *Registry) Put(e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.db.Put(key(e.Network, e.Kind, e.Address), data, nil)
}

func (r *Registry) Get(network, kind string, address common.Address) (*Entry, error) {
	data, err := r.db.Get(key(network, kind, address), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}

	return &e, nil
}

func (r *Registry) Delete(network, kind string, address common.Address) error {
	return r.db.Delete(key(network, kind, address), nil)
}

// List returns entries in key order. An empty network lists every network;
// an empty kind lists every type within network.
func (r *Registry) List(network, kind string) ([]*Entry, error) {
	var prefix []byte
	switch {
	case network == "":
	case kind == "":
		prefix = []byte(network + keySep)
	default:
		prefix = []byte(network + keySep + kind + keySep)
	}

	iter := r.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var out []*Entry
	for iter.Next() {
		var e Entry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}

	return out, iter.Error()
}
