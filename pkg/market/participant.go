// Package market coordinates the per-step protocol across the spot book and
// the full strike ladder of option books: purge, solicit, route, refresh,
// hedge. Everything is single-threaded and step-driven; no call in this
// package blocks or suspends.
package market

import (
	"github.com/erain9/marketsim/pkg/book"
)

// State is the market snapshot handed to a participant when it is asked to
// act. Spot-only participants read Spot and News; option participants
// additionally receive the pricing parameters, the strike ladder and the
// current mid-price caches.
type State struct {
	Spot float64
	News float64

	Vol  float64
	Rate float64
	Div  float64
	Tau  float64

	Strikes  []float64
	MidCalls map[float64]float64
	MidPuts  map[float64]float64
}

// Participant is the contract between the market and a trading strategy: a
// pure function from observed state to desired orders. Returning an empty
// slice means no action this step.
type Participant interface {
	ID() string
	Act(state State) []book.Order
}

// Params is the pricing parameter set shared by every option instrument.
// Step takes an immutable copy at entry, so a volatility update can never be
// observed mid-step.
type Params struct {
	Vol  float64
	Rate float64
	Div  float64
	Tau  float64
}
