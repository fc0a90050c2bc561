package connection

import "github.com/kilianp07/commutewatch/core/model"

// Result holds every viable pairing and the designated optimal one.
type Result struct {
	Candidates []model.Connection
	Optimal    model.Connection
}

// Found reports whether at least one viable connection exists.
func (r Result) Found() bool { return len(r.Candidates) > 0 }

// IsOptimal reports whether c is the designated optimal connection.
func (r Result) IsOptimal(c model.Connection) bool { return r.Found() && c == r.Optimal }

// Match pairs each train with its best bus given the transfer time in minutes.
// Trains without a reachable bus are dropped.
func Match(trainTimes, busTimes []int, transfer int) Result {
	var res Result
	for _, train := range trainTimes {
		best, ok := bestBus(train, busTimes, transfer)
		if !ok {
			continue
		}
		res.Candidates = append(res.Candidates, best)
	}
	if len(res.Candidates) == 0 {
		return res
	}
	res.Optimal = res.Candidates[0]
	for _, c := range res.Candidates[1:] {
		// strict comparison keeps the earliest train on ties
		if c.TotalJourney < res.Optimal.TotalJourney {
			res.Optimal = c
		}
	}
	return res
}

func bestBus(train int, busTimes []int, transfer int) (model.Connection, bool) {
	var best model.Connection
	found := false
	for _, bus := range busTimes {
		c := model.NewConnection(train, bus, transfer)
		if !c.Valid() {
			continue
		}
		if !found || c.Wait < best.Wait {
			best = c
			found = true
		}
	}
	return best, found
}
