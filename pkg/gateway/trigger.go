package gateway

import (
	"context"
	"log/slog"
	"strings"

	"github.com/animahq/anima/pkg/chat"
	"github.com/animahq/anima/pkg/hub"
	"github.com/animahq/anima/pkg/social"
)

// PlaybackDuration is the fixed playback broadcast duration in milliseconds.
const PlaybackDuration = 10000

// Social media targets recognized by the trigger. Any other value is
// accepted and results in no social action.
const (
	SocialTwitter  = "twitter"
	SocialTelegram = "telegram"
	SocialNone     = "none"
)

// ActionPayload is the flag bundle produced by the reasoning layer. All
// fields are optional; the trigger runs every step whose gating field is
// present.
type ActionPayload struct {
	Text        string `json:"text,omitempty"`
	Reprocess   bool   `json:"reprocess,omitempty"`
	SocialMedia string `json:"socialMedia,omitempty"`
	Playback    bool   `json:"playback,omitempty"`
	Animation   string `json:"animation,omitempty"`
}

// TriggerOptions bundles the collaborators a Trigger drives.
type TriggerOptions struct {
	Chat         *chat.Mux
	ChatBackend  string
	SystemPrompt string
	Poster       social.Poster
	Hub          *hub.Hub
}

// Trigger sequences the effects of one ActionPayload: optional chat
// reprocessing, social posting or a normal broadcast, a playback broadcast,
// and an animation broadcast, in that fixed order. Steps are independent; a
// failing step is recorded in the result and the remaining steps still run.
type Trigger struct {
	chat         *chat.Mux
	chatBackend  string
	systemPrompt string
	poster       social.Poster
	hub          *hub.Hub
}

// NewTrigger creates a Trigger from opts. Hub must be non-nil.
func NewTrigger(opts TriggerOptions) *Trigger {
	return &Trigger{
		chat:         opts.Chat,
		chatBackend:  opts.ChatBackend,
		systemPrompt: opts.SystemPrompt,
		poster:       opts.Poster,
		hub:          opts.Hub,
	}
}

// Run executes the payload's steps and returns a free-form description of
// what was done. Callers log the result; nothing parses it.
func (t *Trigger) Run(ctx context.Context, p ActionPayload) string {
	var actions []string

	if p.Text != "" {
		message := p.Text
		if p.Reprocess {
			if t.chat == nil {
				actions = append(actions, "reprocess skipped: chat not configured")
			} else if out, err := t.chat.Process(ctx, t.chatBackend, t.systemPrompt, p.Text); err != nil {
				slog.Error("trigger reprocess failed", "err", err)
				actions = append(actions, "reprocess failed, used original text")
			} else {
				message = out
				actions = append(actions, "reprocessed text")
			}
		}

		switch p.SocialMedia {
		case SocialTwitter:
			if t.poster == nil {
				actions = append(actions, "twitter post skipped: poster not configured")
				break
			}
			result, err := t.poster.Post(ctx, message)
			if err != nil {
				slog.Error("trigger social post failed", "err", err)
				actions = append(actions, "twitter post failed")
			} else {
				actions = append(actions, "posted to twitter: "+result)
			}
		case SocialTelegram:
			// Reserved target; no collaborator is wired yet.
			actions = append(actions, "telegram post not supported yet")
		case SocialNone, "":
			t.broadcast(hub.Message{Type: hub.TypeNormal, Data: message}, &actions, "broadcast normal message")
		default:
			actions = append(actions, "no social action for "+p.SocialMedia)
		}
	}

	if p.Playback {
		t.broadcast(hub.Message{Type: hub.TypePlayback, Data: PlaybackDuration}, &actions, "broadcast playback")
	}

	if p.Animation != "" {
		t.broadcast(hub.Message{Type: hub.TypeAnimation, Data: p.Animation}, &actions, "broadcast animation "+p.Animation)
	}

	if len(actions) == 0 {
		return "no actions triggered"
	}
	return strings.Join(actions, "; ")
}

func (t *Trigger) broadcast(msg hub.Message, actions *[]string, done string) {
	if err := t.hub.Broadcast(msg); err != nil {
		slog.Error("trigger broadcast failed", "type", msg.Type, "err", err)
		*actions = append(*actions, "broadcast "+msg.Type+" failed")
		return
	}
	*actions = append(*actions, done)
}
