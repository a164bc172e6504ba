package expiry

import (
	"expvar"
	"sync"
	"time"

	"github.com/instanttempmail/tempmail/pkg/metric"
)

var (
	sweepCompleted   = time.Now()
	sweepCompletedMu sync.RWMutex

	// History counters
	expExpiredTotal    = new(expvar.Int)
	expSweptTotal      = new(expvar.Int)
	expSweepInterval   = new(expvar.Int)
	expRetainedCurrent = new(expvar.Int)
	expPendingCurrent  = new(expvar.Int)

	// History of certain stats
	expiredHist  = metric.NewHistory()
	retainedHist = metric.NewHistory()

	// History rendered as comma delimited string
	expExpiredHist  = new(expvar.String)
	expRetainedHist = new(expvar.String)
)

func init() {
	m := expvar.NewMap("expiry")
	m.Set("SecondsSinceSweepCompleted", expvar.Func(secondsSinceSweepCompleted))
	m.Set("ExpiredHist", expExpiredHist)
	m.Set("ExpiredTotal", expExpiredTotal)
	m.Set("SweptTotal", expSweptTotal)
	m.Set("SweepInterval", expSweepInterval)
	m.Set("PendingCurrent", expPendingCurrent)
	m.Set("RetainedHist", expRetainedHist)
	m.Set("RetainedCurrent", expRetainedCurrent)

	metric.AddTickerFunc(func() {
		expExpiredHist.Set(expiredHist.Push(expExpiredTotal))
		expRetainedHist.Set(retainedHist.Push(expRetainedCurrent))
	})
}

func setSweepCompleted(t time.Time) {
	sweepCompletedMu.Lock()
	defer sweepCompletedMu.Unlock()
	sweepCompleted = t
}

func getSweepCompleted() time.Time {
	sweepCompletedMu.RLock()
	defer sweepCompletedMu.RUnlock()
	return sweepCompleted
}

func secondsSinceSweepCompleted() any {
	return time.Since(getSweepCompleted()) / time.Second
}
