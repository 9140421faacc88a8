package redisboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dyluth/simpleboard/pkg/substrate"
)

// Client provides instance-scoped Redis storage for scoreboards and implements
// substrate.Manager. All keys and channels are namespaced with the instance
// name. The client is safe for concurrent use; mutations of one scoreboard
// from several processes are not serialised against each other.
type Client struct {
	rdb          *redis.Client
	instanceName string
}

var _ substrate.Manager = (*Client)(nil)

// NewClient creates a client for the specified instance.
// Returns an error if instanceName is empty.
func NewClient(redisOpts *redis.Options, instanceName string) (*Client, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Client{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// InstanceName returns the namespace the client writes to.
func (c *Client) InstanceName() string {
	return c.instanceName
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// NewScoreboard allocates an empty scoreboard with a fresh id.
func (c *Client) NewScoreboard(ctx context.Context) (substrate.Scoreboard, error) {
	id := uuid.New().String()
	if err := c.rdb.SAdd(ctx, ScoreboardsKey(c.instanceName), id).Err(); err != nil {
		return nil, fmt.Errorf("failed to allocate scoreboard: %w", err)
	}
	return &Scoreboard{client: c, id: id}, nil
}

// Scoreboards lists the ids of every allocated scoreboard.
func (c *Client) Scoreboards(ctx context.Context) ([]string, error) {
	ids, err := c.rdb.SMembers(ctx, ScoreboardsKey(c.instanceName)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list scoreboards: %w", err)
	}
	return ids, nil
}

// Scoreboard returns a handle for an allocated scoreboard, or ErrNotFound.
func (c *Client) Scoreboard(ctx context.Context, id string) (*Scoreboard, error) {
	exists, err := c.rdb.SIsMember(ctx, ScoreboardsKey(c.instanceName), id).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check scoreboard existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("scoreboard %s: %w", id, substrate.ErrNotFound)
	}
	return &Scoreboard{client: c, id: id}, nil
}

// Bind records that viewer sees sb. sb must come from this client.
func (c *Client) Bind(ctx context.Context, viewer substrate.Viewer, sb substrate.Scoreboard) error {
	board, ok := sb.(*Scoreboard)
	if !ok || board.client != c {
		return fmt.Errorf("%w: scoreboard %s does not belong to this redis client", substrate.ErrInvalidArgument, sb.ID())
	}

	if err := c.rdb.HSet(ctx, BindingsKey(c.instanceName), viewer.ID().String(), board.id).Err(); err != nil {
		return fmt.Errorf("failed to bind viewer: %w", err)
	}
	return c.publish(ctx, Event{Scoreboard: board.id, Kind: EventBind, Name: viewer.ID().String(), Entry: viewer.Name()})
}

// ScoreboardOf returns the scoreboard bound to viewer, or ErrNotFound.
func (c *Client) ScoreboardOf(ctx context.Context, viewer substrate.Viewer) (substrate.Scoreboard, error) {
	id, err := c.rdb.HGet(ctx, BindingsKey(c.instanceName), viewer.ID().String()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("scoreboard for viewer %s: %w", viewer.ID(), substrate.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read viewer binding: %w", err)
	}
	return &Scoreboard{client: c, id: id}, nil
}

// publish sends ev on the instance events channel.
func (c *Client) publish(ctx context.Context, ev Event) error {
	ev.TimestampMs = time.Now().UnixMilli()
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := c.rdb.Publish(ctx, EventsChannel(c.instanceName), data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", ev.Kind, err)
	}
	return nil
}

// Subscription represents an active Pub/Sub subscription to mutation events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *Event
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of mutation events.
// The channel is closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *Event {
	return s.events
}

// Errors returns the channel of subscription errors. Malformed messages are
// reported here and skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// Subscribe subscribes to the mutation events of this instance.
// Context cancellation also stops the subscription.
//
// Events are delivered on a buffered channel (size 64). Redis Pub/Sub is
// at-most-once: a slow subscriber may miss events.
func (c *Client) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, EventsChannel(c.instanceName))

	// Wait for the subscription to be confirmed so no event published after
	// Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to events: %w", err)
	}

	eventsChan := make(chan *Event, 64)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &ev:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}
