package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/kilianp07/commutewatch/core/model"
	"github.com/kilianp07/commutewatch/core/monitor"
)

var validate = validator.New()

// FeedConfig selects one prediction feed and how it is presented.
type FeedConfig struct {
	Route        string `json:"route" validate:"required"`
	Stop         string `json:"stop" validate:"required"`
	Direction    int    `json:"direction" validate:"oneof=0 1"`
	RoutePattern string `json:"route_pattern"`
	Title        string `json:"title"`
	AlertTitle   string `json:"alert_title"`
	Noun         string `json:"noun"`
	Verb         string `json:"verb"`
	Heading      string `json:"heading"`
}

// DefaultBusFeed is MBTA route 226 leaving Braintree.
func DefaultBusFeed() FeedConfig {
	return FeedConfig{
		Route:        "226",
		Stop:         "place-brntn",
		Direction:    0,
		RoutePattern: "226-_-0",
		Title:        "BUS 226 MONITOR",
		AlertTitle:   "Bus 226 Alert",
		Noun:         "Bus",
		Verb:         "Departing",
		Heading:      "UPCOMING BUS 226 DEPARTURES FROM BRAINTREE:",
	}
}

// DefaultRailFeed is the Red Line Braintree branch.
func DefaultRailFeed() FeedConfig {
	return FeedConfig{
		Route:        "Red",
		Stop:         "70079",
		Direction:    0,
		RoutePattern: "Red-3-0",
		Title:        "RED LINE MONITOR",
		AlertTitle:   "Red Line Alert",
		Noun:         "Train",
		Verb:         "Departing",
		Heading:      "UPCOMING RED LINE TRAINS:",
	}
}

// SetDefaults fills empty fields from d.
func (c *FeedConfig) SetDefaults(d FeedConfig) {
	setString(&c.Route, d.Route)
	setString(&c.Stop, d.Stop)
	setString(&c.RoutePattern, d.RoutePattern)
	setString(&c.Title, d.Title)
	setString(&c.AlertTitle, d.AlertTitle)
	setString(&c.Noun, d.Noun)
	setString(&c.Verb, d.Verb)
	setString(&c.Heading, d.Heading)
}

// Validate checks the feed selection.
func (c FeedConfig) Validate(section string) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%s: %w", section, err)
	}
	return nil
}

// Feed converts the section to a monitor.Feed named name.
func (c FeedConfig) Feed(name string) monitor.Feed {
	return monitor.Feed{
		Name:    name,
		Noun:    c.Noun,
		Verb:    c.Verb,
		Heading: c.Heading,
		Query: model.FeedQuery{
			Route:        c.Route,
			Stop:         c.Stop,
			Direction:    c.Direction,
			RoutePattern: c.RoutePattern,
		},
	}
}

// BridgeConfig pairs a train feed with a connecting bus feed.
type BridgeConfig struct {
	Train             FeedConfig `json:"train"`
	Bus               FeedConfig `json:"bus"`
	TransferTime      int        `json:"transfer_time" validate:"gte=0"`
	TransferPoint     string     `json:"transfer_point"`
	RetryNoConnection int        `json:"retry_no_connection" validate:"gte=1"`
	Title             string     `json:"title"`
	AlertTitle        string     `json:"alert_title"`
}

// SetDefaults fills unset values, treating zero as unset.
func (c *BridgeConfig) SetDefaults() {
	train := DefaultRailFeed()
	train.Heading = "UPCOMING RED LINE TRAINS TO BRAINTREE:"
	c.Train.SetDefaults(train)
	c.Bus.SetDefaults(DefaultBusFeed())
	setInt(&c.TransferTime, 30)
	setInt(&c.RetryNoConnection, 5)
	setString(&c.TransferPoint, "Braintree")
	setString(&c.Title, "COMMUTE BRIDGE MONITOR")
	setString(&c.AlertTitle, "Commute Bridge Alert")
}

// Validate checks both feeds and the transfer settings.
func (c BridgeConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("bridge: %w", err)
	}
	return nil
}

// Loop merges the shared retry policy with the bridge settings.
func (c BridgeConfig) Loop(m MonitorConfig) monitor.Config {
	l := m.Loop()
	l.RetryNoConnection = c.RetryNoConnection
	l.TransferTime = c.TransferTime
	l.TransferPoint = c.TransferPoint
	return l
}

func setString(v *string, d string) {
	if *v == "" {
		*v = d
	}
}
