package messaging

import (
	"github.com/nikolaydubina/fpdecimal"
)

// MessageSender defines an interface for publishing per-step telemetry.
// This decouples the simulation loop from the concrete transport.
type MessageSender interface {
	SendStepMessage(msg *StepMessage) error
	Close() error
}

// StepMessage is the wire record published after each simulation step.
// Prices are formatted as fixed-point decimal strings.
type StepMessage struct {
	RunID      string  `json:"run_id"`
	Step       int64   `json:"step"`
	SpotMid    string  `json:"spot_mid"`
	News       string  `json:"news"`
	Volatility string  `json:"volatility"`
	NumTrades  int64   `json:"num_trades"`
	Trades     []Trade `json:"trades,omitempty"`
}

// Trade represents a single trade execution within a step.
type Trade struct {
	Instrument string `json:"instrument"`
	Price      string `json:"price"`
	Quantity   string `json:"quantity"`
	Buyer      string `json:"buyer"`
	Seller     string `json:"seller"`
}

// FormatDecimal renders a float as a fixed-point decimal string with
// three fractional digits, matching the wire format of StepMessage.
// fpdecimal renders its zero value as "0", so zero is padded here to keep
// the width uniform.
func FormatDecimal(v float64) string {
	d := fpdecimal.FromFloat(v)
	if d.Equal(fpdecimal.Zero) {
		return "0.000"
	}
	return d.String()
}
