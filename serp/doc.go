// Package serp fetches organic search results for a query.
//
// The Client talks to the Google Custom Search JSON API and pages through
// results ten at a time. A ResultSet exposes the titles and snippets of the
// ranked results as corpora for the ngram analyzer:
//
//	client, err := serp.NewClient(apiKey, engineID, serp.WithLanguage("en"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	results, err := client.Search(ctx, "seo tools")
//	records, err := analyzer.Analyze(results.Titles())
package serp
