// Package sdk provides a Go client for the fashion-search HTTP API.
//
//	client := sdk.New("http://localhost:8080")
//	res, err := client.Search(ctx, "leather boots under $100")
//	if err != nil { ... }
//	for _, item := range res.Response {
//	    fmt.Println(item.Title, item.Score)
//	}
//
// Search responses carry a nil Response slice when the query was judged to
// be outside the fashion domain; check Warnings for the reason.
package sdk
