package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"solmentions/internal/models"
	"solmentions/internal/store"

	"github.com/gorilla/websocket"
)

// StreamConsumer subscribes to a scraper's websocket feed of observed posts
// and inserts each one into the post store. Duplicate sightings are no-ops.
type StreamConsumer struct {
	feedURL string
	posts   *store.PostStore
	dialer  *websocket.Dialer
}

// NewStreamConsumer creates a stream consumer for the given feed URL
func NewStreamConsumer(feedURL string, posts *store.PostStore) *StreamConsumer {
	return &StreamConsumer{
		feedURL: feedURL,
		posts:   posts,
		dialer:  websocket.DefaultDialer,
	}
}

// FeedEvent is one observed post as the scraper reports it. Content may be
// raw HTML; it is normalized before storage.
type FeedEvent struct {
	ID              string    `json:"id"`
	Author          string    `json:"author"`
	Content         string    `json:"content"`
	Link            string    `json:"link"`
	IsReply         bool      `json:"is_reply"`
	IsDirectMention bool      `json:"is_direct_mention"`
	ObservedAt      time.Time `json:"observed_at"`
}

// StartConsuming connects to the feed and keeps consuming until the context
// is cancelled, reconnecting on failures.
func (sc *StreamConsumer) StartConsuming(ctx context.Context) error {
	log.Printf("Connecting to scraper feed: %s", sc.feedURL)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := sc.connectAndConsume(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("Feed connection error: %v. Reconnecting in 10 seconds...", err)
				select {
				case <-time.After(10 * time.Second):
					continue
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

// connectAndConsume handles a single connection to the feed
func (sc *StreamConsumer) connectAndConsume(ctx context.Context) error {
	conn, _, err := sc.dialer.DialContext(ctx, sc.feedURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to feed: %w", err)
	}
	defer conn.Close()

	log.Println("Successfully connected to scraper feed")

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					log.Printf("Failed to send ping: %v", err)
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))

			_, message, err := conn.ReadMessage()
			if err != nil {
				return fmt.Errorf("failed to read message: %w", err)
			}

			if err := sc.processMessage(message); err != nil {
				log.Printf("Error processing feed message: %v", err)
				// Keep consuming even if one message fails
			}
		}
	}
}

// processMessage stores a single feed event
func (sc *StreamConsumer) processMessage(data []byte) error {
	var event FeedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal feed event: %w", err)
	}
	if event.ID == "" {
		return fmt.Errorf("feed event carried no post ID")
	}

	return sc.posts.Insert(EventToPost(&event))
}

// EventToPost converts a feed event into a storable post, normalizing any
// markup in its content.
func EventToPost(event *FeedEvent) *models.Post {
	content := Normalize(event.Content)

	text := content.Text
	for _, u := range content.MediaURLs {
		text += " " + u
	}

	return &models.Post{
		ID:              event.ID,
		Author:          event.Author,
		Content:         text,
		Link:            event.Link,
		IsReply:         event.IsReply,
		IsDirectMention: event.IsDirectMention,
	}
}
