package evaluator

import (
	"database/sql"
	"sync"
)

// connectionPool shares one *sql.DB between every db_connect call with the
// same driver and DSN. The handle is closed when its last user releases it.
type connectionPool struct {
	mu    sync.Mutex
	conns map[string]*pooledConn
}

type pooledConn struct {
	db   *sql.DB
	refs int
}

func newConnectionPool() *connectionPool {
	return &connectionPool{conns: make(map[string]*pooledConn)}
}

// acquire returns the pooled handle for key, calling open when there is none
func (p *connectionPool) acquire(key string, open func() (*sql.DB, error)) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pc, ok := p.conns[key]; ok {
		pc.refs++
		return pc.db, nil
	}

	db, err := open()
	if err != nil {
		return nil, err
	}
	p.conns[key] = &pooledConn{db: db, refs: 1}
	return db, nil
}

// release drops one reference to key and closes the handle on the last one
func (p *connectionPool) release(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pc, ok := p.conns[key]
	if !ok {
		return nil
	}
	pc.refs--
	if pc.refs > 0 {
		return nil
	}
	delete(p.conns, key)
	return pc.db.Close()
}

// size returns the number of open pooled handles
func (p *connectionPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns)
}

var dbPool = newConnectionPool()
