package git

import (
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// newStorage builds the throwaway storage for a single mirror operation:
// git object storage backed by an in-memory billy filesystem with an LRU
// object cache. Nothing touches the host filesystem.
func newStorage() *filesystem.Storage {
	return filesystem.NewStorage(memfs.New(), cache.NewObjectLRUDefault())
}
