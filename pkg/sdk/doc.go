// Package gor provides a Go client for the gor offer discovery API.
//
// Offers are searched with a hybrid ranking that blends semantic relevance,
// geographic proximity and time-to-expiry:
//
//	client, _ := gor.New("http://localhost:3001", gor.WithAPIKey("secret"))
//
//	lat, lng := 43.07, -70.76
//	resp, _ := client.Search(ctx, gor.Query{
//	    Text:    "wood fired pizza",
//	    Lat:     &lat,
//	    Lng:     &lng,
//	    RadiusM: 10_000,
//	    Labels:  []string{"dinner"},
//	})
//	for _, o := range resp.Results.Offers {
//	    fmt.Println(o.OfferID, o.Title)
//	}
package gor
