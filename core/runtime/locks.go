package runtime

import (
	"sync"

	"creatorfund/crypto"
)

// lockTable serializes transactions that touch the same accounts. Writable
// accounts are held exclusively, read-only accounts are shared. A transaction
// takes all of its locks at once or none, so there is no lock-order deadlock.
type lockTable struct {
	mu      sync.Mutex
	cond    *sync.Cond
	writers map[crypto.Address]struct{}
	readers map[crypto.Address]int
}

func newLockTable() *lockTable {
	l := &lockTable{
		writers: make(map[crypto.Address]struct{}),
		readers: make(map[crypto.Address]int),
	}
	l.cond = sync.NewCond(&l.mu)
	return l
}

func (l *lockTable) available(accounts map[crypto.Address]bool) bool {
	for addr, writable := range accounts {
		if _, held := l.writers[addr]; held {
			return false
		}
		if writable && l.readers[addr] > 0 {
			return false
		}
	}
	return true
}

// acquire blocks until every account can be locked and returns the release
// function.
func (l *lockTable) acquire(accounts map[crypto.Address]bool) func() {
	l.mu.Lock()
	for !l.available(accounts) {
		l.cond.Wait()
	}
	for addr, writable := range accounts {
		if writable {
			l.writers[addr] = struct{}{}
		} else {
			l.readers[addr]++
		}
	}
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			for addr, writable := range accounts {
				if writable {
					delete(l.writers, addr)
					continue
				}
				if l.readers[addr] <= 1 {
					delete(l.readers, addr)
				} else {
					l.readers[addr]--
				}
			}
			l.mu.Unlock()
			l.cond.Broadcast()
		})
	}
}
