// Package babylog turns a baby tracker export into analytics events:
// bottle feeds, pumping sessions, diaper changes and merged sleep sessions,
// each with its day of life and the gap since the previous event.
//
// Quick start:
//
//	b, err := babylog.New(babylog.WithBirth("2024-05-01"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	f, _ := os.Open("export.csv")
//	events, _ := b.ProcessCSV(ctx, f)
//	for _, e := range events {
//	    fmt.Println(e.Name, e.Timestamp)
//	}
//
// Nothing is sent anywhere; deliver the events yourself or use the babylog
// command. A Babylog instance is safe for concurrent use.
package babylog
