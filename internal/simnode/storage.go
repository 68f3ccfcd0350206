package simnode

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	dbm "github.com/cosmos/cosmos-db"

	"github.com/b-harvest/node-harness/internal/fixtures"
	"github.com/b-harvest/node-harness/internal/helpers"
	"github.com/b-harvest/node-harness/internal/lifecycle"
)

var blockPrefix = []byte("block/")

// blockKey orders blocks by height under lexicographic key order.
func blockKey(height int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", blockPrefix, height))
}

// prefixEnd returns the first key after every key with prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	end[len(end)-1]++
	return end
}

// Storage is a chain database on cosmos-db.
type Storage struct {
	db dbm.DB
}

// StorageFactory opens Storage for a server's db options.
type StorageFactory struct {
	// Dir is the data directory for persistent backends. Defaults to a
	// temporary directory.
	Dir string
}

var _ lifecycle.StorageFactory = (*StorageFactory)(nil)

// Create opens the database. Backends are memdb (default) and goleveldb.
func (f *StorageFactory) Create(ctx context.Context, opts fixtures.StorageOptions) (lifecycle.Storage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return OpenStorage(opts, f.Dir)
}

// OpenStorage opens a database from storage options.
func OpenStorage(opts fixtures.StorageOptions, defaultDir string) (*Storage, error) {
	backend := dbm.BackendType(strings.ToLower(opts.Backend))
	if backend == "" {
		backend = dbm.MemDBBackend
	}

	name := opts.Name
	if name == "" {
		name = "chain"
	}

	dir := opts.Dir
	if dir == "" {
		dir = defaultDir
	}
	if backend != dbm.MemDBBackend {
		var err error
		if dir == "" {
			dir, err = os.MkdirTemp("", "node-harness-")
		} else {
			err = helpers.EnsureDir(dir, 0o755)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	db, err := dbm.NewDB(name, backend, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database %q: %w", backend, name, err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveBlock stores b under its height.
func (s *Storage) SaveBlock(b *Block) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode block %d: %w", b.Height, err)
	}
	return s.db.SetSync(blockKey(b.Height), data)
}

// Block returns the block at height, nil when absent.
func (s *Storage) Block(height int64) (*Block, error) {
	data, err := s.db.Get(blockKey(height))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var b Block
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode block %d: %w", height, err)
	}
	return &b, nil
}

// LastBlock returns the highest stored block, nil when the chain is empty.
func (s *Storage) LastBlock() (*Block, error) {
	it, err := s.db.ReverseIterator(blockPrefix, prefixEnd(blockPrefix))
	if err != nil {
		return nil, err
	}
	defer it.Close()

	if !it.Valid() {
		return nil, it.Error()
	}
	var b Block
	if err := json.Unmarshal(it.Value(), &b); err != nil {
		return nil, fmt.Errorf("failed to decode last block: %w", err)
	}
	return &b, nil
}
