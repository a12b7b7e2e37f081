package feed

import (
	"context"
	"log"

	"bankroll-lab/internal/domain"
)

// QuoteSource provides odds quotes from an external feed.
type QuoteSource interface {
	// Subscribe returns a channel of quotes. The channel is closed when the
	// context is cancelled or the source shuts down.
	Subscribe(ctx context.Context) (<-chan *domain.Quote, error)
}

// WSQuoteSource provides real-time quotes via WebSocket subscription.
type WSQuoteSource struct {
	client  *Client
	markets []string
}

// NewWSQuoteSource creates a new WebSocket-based quote source.
// An empty markets list subscribes to every market the feed publishes.
func NewWSQuoteSource(client *Client, markets []string) *WSQuoteSource {
	return &WSQuoteSource{
		client:  client,
		markets: markets,
	}
}

// Subscribe returns a channel of quotes from live WebSocket subscription.
func (s *WSQuoteSource) Subscribe(ctx context.Context) (<-chan *domain.Quote, error) {
	quotesCh, err := s.client.SubscribeQuotes(ctx, QuoteFilter{
		Markets: s.markets,
	})
	if err != nil {
		return nil, err
	}

	if len(s.markets) > 0 {
		log.Printf("[ws-quotes] Subscribed to markets: %v", s.markets)
	} else {
		log.Println("[ws-quotes] Subscribed to all markets")
	}

	out := make(chan *domain.Quote, 100)

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case q, ok := <-quotesCh:
				if !ok {
					log.Println("[ws-quotes] quote channel closed")
					return
				}

				quote := q
				select {
				case out <- &quote:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

var _ QuoteSource = (*WSQuoteSource)(nil)
