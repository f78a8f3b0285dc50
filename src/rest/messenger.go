package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

// Requester is the REST capability the messenger needs.
type Requester interface {
	Request(ctx context.Context, path, method string, body []byte) ([]byte, error)
}

// ImageDimensions sizes an embedded image.
type ImageDimensions struct {
	Height int `json:"height"`
	Width  int `json:"width"`
}

// DefaultImageDimensions is used when no dimensions are given.
var DefaultImageDimensions = ImageDimensions{Height: 500, Width: 500}

// Messenger wraps the message-related API calls modules use.
type Messenger struct {
	api     Requester
	limiter *rate.Limiter
}

// NewMessenger creates a messenger. Calls through one messenger are spaced
// at least 100ms apart.
func NewMessenger(api Requester) *Messenger {
	return &Messenger{api: api, limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1)}
}

type outgoingMessage struct {
	Content string `json:"content,omitempty"`
	Embed   *embed `json:"embed,omitempty"`
	TTS     bool   `json:"tts"`
}

type embed struct {
	Image embedImage `json:"image"`
}

type embedImage struct {
	ImageDimensions
	URL string `json:"url"`
}

// SendMessage posts content to a channel.
func (m *Messenger) SendMessage(ctx context.Context, channelID, content string) error {
	return m.post(ctx, channelID, outgoingMessage{Content: content})
}

// SendMultipleMessages posts each message in order.
func (m *Messenger) SendMultipleMessages(ctx context.Context, channelID string, messages []string) error {
	for _, content := range messages {
		if err := m.SendMessage(ctx, channelID, content); err != nil {
			return err
		}
	}
	return nil
}

// SendEmbeddedImage posts an image embed. A nil dims uses DefaultImageDimensions.
func (m *Messenger) SendEmbeddedImage(ctx context.Context, channelID, imageURL string, dims *ImageDimensions) error {
	d := DefaultImageDimensions
	if dims != nil {
		d = *dims
	}
	return m.post(ctx, channelID, outgoingMessage{
		Embed: &embed{Image: embedImage{ImageDimensions: d, URL: imageURL}},
	})
}

// AddReaction reacts to a message as the bot.
func (m *Messenger) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	path := fmt.Sprintf("channels/%s/messages/%s/reactions/%s/@me", channelID, messageID, url.PathEscape(emoji))
	return m.request(ctx, path, fasthttp.MethodPut, []byte("{}"))
}

// AddMultipleReactions adds each emoji in order.
func (m *Messenger) AddMultipleReactions(ctx context.Context, channelID, messageID string, emojis []string) error {
	for _, emoji := range emojis {
		if err := m.AddReaction(ctx, channelID, messageID, emoji); err != nil {
			return err
		}
	}
	return nil
}

func (m *Messenger) post(ctx context.Context, channelID string, msg outgoingMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return m.request(ctx, "channels/"+channelID+"/messages", fasthttp.MethodPost, body)
}

// request waits for the limiter before calling the API.
func (m *Messenger) request(ctx context.Context, path, method string, body []byte) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := m.api.Request(ctx, path, method, body)
	return err
}
