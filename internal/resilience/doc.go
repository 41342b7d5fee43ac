// Package resilience groups the fault tolerance patterns used by the network
// sources and notifiers: circuit breakers in circuitbreaker and exponential
// backoff in retry.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.FeedFetchConfig())
//	err := retry.WithBackoff(ctx, retry.FeedFetchConfig(), func() error {
//	    feed, err := circuitbreaker.Do(cb, func() (*gofeed.Feed, error) {
//	        return parser.ParseURLWithContext(url, ctx)
//	    })
//	    ...
//	})
package resilience
