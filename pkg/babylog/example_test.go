package babylog_test

import (
	"fmt"
	"log"

	"github.com/crimson-sun/babylog/pkg/babylog"
)

func Example() {
	b, err := babylog.New(babylog.WithBirth("2024-05-01"))
	if err != nil {
		log.Fatal(err)
	}

	events, err := b.Process([]babylog.Row{
		{Type: "Feed", StartLocation: "Bottle", Start: "2024-05-03 06:00", StartCondition: "Formula", EndCondition: "120ml"},
		{Type: "Feed", StartLocation: "Bottle", Start: "2024-05-03 10:30", StartCondition: "Breast Milk", EndCondition: "90 ml"},
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, e := range events {
		amount, _ := e.Properties.Get("Amount")
		gap, _ := e.Properties.Get("Time Since Last")
		night, _ := e.Properties.Get("Is Night Bottle")
		fmt.Printf("%s: %vml, %vh since last, night=%v\n", e.Name, amount, gap, night)
	}
	// Output:
	// Bottle Feed: 120ml, 0h since last, night=true
	// Bottle Feed: 90ml, 4.5h since last, night=false
}
