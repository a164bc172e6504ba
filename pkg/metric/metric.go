// Package metric keeps rolling histories of expvar values for the /debug/vars page.
package metric

import (
	"container/list"
	"expvar"
	"strings"
	"sync"
	"time"
)

// HistoryLen is the number of samples kept by a History, one hour of minutes plus one: consumers
// chart deltas and have nothing to compare the first value against.
const HistoryLen = 61

// TickerFunc is the function signature accepted by AddTickerFunc, will be called once per minute.
type TickerFunc func()

var tickerFuncChan = make(chan TickerFunc)

func init() {
	go metricsTicker()
}

// AddTickerFunc adds a new function callback to the list of metrics TickerFuncs that get
// called each minute.
func AddTickerFunc(f TickerFunc) {
	tickerFuncChan <- f
}

// History is a bounded list of samples of one expvar.
type History struct {
	mu      sync.Mutex
	samples *list.List
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{samples: list.New()}
}

// Push adds the current value of ev to the end of the history and returns a comma separated string
// of the retained entries.
func (h *History) Push(ev expvar.Var) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples.PushBack(ev.String())
	if h.samples.Len() > HistoryLen {
		h.samples.Remove(h.samples.Front())
	}
	return joinStringList(h.samples)
}

// metricsTicker calls the current list of TickerFuncs once per minute.
func metricsTicker() {
	funcs := make([]TickerFunc, 0)
	ticker := time.NewTicker(time.Minute)

	for {
		select {
		case <-ticker.C:
			for _, f := range funcs {
				f()
			}
		case f := <-tickerFuncChan:
			funcs = append(funcs, f)
		}
	}
}

// joinStringList joins a List containing strings by commas.
func joinStringList(listOfStrings *list.List) string {
	if listOfStrings.Len() == 0 {
		return ""
	}
	s := make([]string, 0, listOfStrings.Len())
	for e := listOfStrings.Front(); e != nil; e = e.Next() {
		s = append(s, e.Value.(string))
	}
	return strings.Join(s, ",")
}
