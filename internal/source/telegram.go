package source

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramStream reads the messages of a single chat through the Bot API.
type TelegramStream struct {
	api          *tgbotapi.BotAPI
	lastUpdateID int
}

func NewTelegramStream(botToken string) (*TelegramStream, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	log.Printf("connected to telegram as @%s", api.Self.UserName)
	return &TelegramStream{api: api}, nil
}

// FetchRecent drains the pending update backlog for the chat. The Bot API
// queues updates while the agent is offline; that queue is the recent
// history available to a bot account. Items are returned newest first.
func (s *TelegramStream) FetchRecent(ctx context.Context, streamID string, limit int) ([]RawItem, error) {
	chatID, err := parseStreamID(streamID)
	if err != nil {
		return nil, err
	}

	var items []RawItem
	offset := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		cfg := tgbotapi.NewUpdate(offset)
		cfg.Limit = 100
		updates, err := s.api.GetUpdates(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch updates: %w", err)
		}
		if len(updates) == 0 {
			break
		}
		for _, u := range updates {
			if u.UpdateID >= s.lastUpdateID {
				s.lastUpdateID = u.UpdateID
			}
			offset = u.UpdateID + 1
			if item, ok := toRawItem(u, chatID, streamID); ok {
				items = append(items, item)
			}
		}
	}

	// Updates arrive oldest first; the stream contract is newest first.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Subscribe starts a long-poll loop after the backlog consumed by
// FetchRecent, so no update is delivered through both paths.
func (s *TelegramStream) Subscribe(ctx context.Context, streamID string) (<-chan RawItem, error) {
	chatID, err := parseStreamID(streamID)
	if err != nil {
		return nil, err
	}

	cfg := tgbotapi.NewUpdate(s.lastUpdateID + 1)
	cfg.Timeout = 60
	updates := s.api.GetUpdatesChan(cfg)

	out := make(chan RawItem)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				s.api.StopReceivingUpdates()
				return
			case u, ok := <-updates:
				if !ok {
					return
				}
				item, ok := toRawItem(u, chatID, streamID)
				if !ok {
					continue
				}
				select {
				case out <- item:
				case <-ctx.Done():
					s.api.StopReceivingUpdates()
					return
				}
			}
		}
	}()
	return out, nil
}

func toRawItem(u tgbotapi.Update, chatID int64, streamID string) (RawItem, bool) {
	msg := u.Message
	if msg == nil {
		msg = u.ChannelPost
	}
	if msg == nil || msg.Chat == nil || msg.Chat.ID != chatID {
		return RawItem{}, false
	}
	sender := "Unknown"
	if msg.From != nil && msg.From.FirstName != "" {
		sender = msg.From.FirstName
	}
	return RawItem{
		ID:       msg.MessageID,
		Sender:   sender,
		Text:     msg.Text,
		Date:     time.Unix(int64(msg.Date), 0).UTC(),
		StreamID: streamID,
	}, true
}

func parseStreamID(streamID string) (int64, error) {
	id, err := strconv.ParseInt(streamID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid stream id %q: %w", streamID, err)
	}
	return id, nil
}
