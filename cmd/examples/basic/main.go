package main

import (
	"fmt"

	"github.com/erain9/marketsim/pkg/book"
)

func main() {
	// A spot book starting at mid-price 100
	b := book.NewSpotBook(100.0)

	// A resting ask from one trader
	_, err := b.Submit(book.Order{
		Owner:      "alice",
		Side:       book.Sell,
		Price:      99.0,
		Quantity:   3,
		Instrument: book.Spot,
	})
	if err != nil {
		panic(err)
	}
	fmt.Println("alice posted: sell 3 @ 99.00")

	// A crossing bid from another trader
	trades, err := b.Submit(book.Order{
		Owner:      "bob",
		Side:       book.Buy,
		Price:      100.0,
		Quantity:   5,
		Instrument: book.Spot,
	})
	if err != nil {
		panic(err)
	}
	fmt.Println("bob posted:   buy 5 @ 100.00")

	// Crossing orders execute at the midpoint of the two limit prices
	for _, tr := range trades {
		fmt.Printf("trade: %s buys %.0f from %s @ %.2f\n", tr.Buyer, tr.Quantity, tr.Seller, tr.Price)
	}

	if bid, ok := b.BestBid(); ok {
		fmt.Printf("resting bid: %.0f @ %.2f\n", bid.Quantity, bid.Price)
	}
	fmt.Printf("last price: %.2f\n", b.LastPrice())
}
