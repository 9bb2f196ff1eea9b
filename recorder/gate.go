package recorder

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// gate authenticates and fetches the spreadsheet metadata once per process. Concurrent
// callers share the in-flight attempt, failures are not cached.
type gate struct {
	backend     Backend
	credentials Credentials
	group       singleflight.Group

	sync.RWMutex
	spreadsheet *Spreadsheet
}

func (g *gate) ready(ctx context.Context) (*Spreadsheet, error) {
	if s := g.cached(); s != nil {
		return s, nil
	}

	v, err, _ := g.group.Do("authenticate", func() (any, error) {
		if s := g.cached(); s != nil {
			return s, nil
		}

		if err := g.backend.Authenticate(ctx, g.credentials); err != nil {
			return nil, err
		}

		s, err := g.backend.Spreadsheet(ctx)
		if err != nil {
			return nil, err
		} else if s == nil {
			return &Spreadsheet{}, nil
		}

		g.Lock()
		g.spreadsheet = s
		g.Unlock()

		return s, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*Spreadsheet), nil
}

func (g *gate) cached() *Spreadsheet {
	g.RLock()
	defer g.RUnlock()

	return g.spreadsheet
}
