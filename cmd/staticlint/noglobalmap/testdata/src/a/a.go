package a

import "sync"

var users = map[string]string{} // want `package-level map users is shared mutable state`

var (
	counts map[int]int // want `package-level map counts`
	names  []string
)

type table map[string]int

var byType table // want `package-level map byType`

var _ = map[string]bool{}

var mu sync.Mutex

type directory struct {
	mu    sync.Mutex
	users map[string]string
}

func newDirectory() *directory {
	local := map[string]string{}
	return &directory{users: local}
}
