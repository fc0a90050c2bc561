package model

// Connection pairs a train lead time with a connecting bus lead time.
// All values are whole minutes from now.
type Connection struct {
	TrainTime    int `json:"train_time" yaml:"train_time"`
	BusTime      int `json:"bus_time" yaml:"bus_time"`
	Wait         int `json:"wait" yaml:"wait"`
	TotalJourney int `json:"total_journey" yaml:"total_journey"`
}

// NewConnection derives wait and journey time for the pair.
func NewConnection(train, bus, transfer int) Connection {
	return Connection{
		TrainTime:    train,
		BusTime:      bus,
		Wait:         bus - (train + transfer),
		TotalJourney: bus - train,
	}
}

// Valid reports whether the bus can still be caught after the transfer.
func (c Connection) Valid() bool { return c.Wait >= 0 }
