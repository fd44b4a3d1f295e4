package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/animahq/anima/pkg/chat"
	"github.com/animahq/anima/pkg/gateway"
	"github.com/animahq/anima/pkg/hub"
	"github.com/animahq/anima/pkg/social"
)

type triggerFixture struct {
	trigger   *gateway.Trigger
	sub       *hub.Subscriber
	chatCalls int
	posts     []string
	postErr   error
}

func newTriggerFixture(t *testing.T) *triggerFixture {
	t.Helper()

	f := &triggerFixture{}
	h := hub.New()
	f.sub = h.Subscribe()
	t.Cleanup(func() { h.Unsubscribe(f.sub) })

	chatMux := chat.NewMux()
	chatMux.HandleFunc("echo", func(_ context.Context, _, message string) (string, error) {
		f.chatCalls++
		return "reworded: " + message, nil
	})

	f.trigger = gateway.NewTrigger(gateway.TriggerOptions{
		Chat:        chatMux,
		ChatBackend: "echo",
		Poster: social.PostFunc(func(_ context.Context, message string) (string, error) {
			if f.postErr != nil {
				return "", f.postErr
			}
			f.posts = append(f.posts, message)
			return "post-1", nil
		}),
		Hub: h,
	})
	return f
}

// frames drains the pending broadcast frames into decoded messages.
func (f *triggerFixture) frames(t *testing.T) []hub.Message {
	t.Helper()
	var msgs []hub.Message
	for {
		select {
		case frame := <-f.sub.Frames():
			var msg hub.Message
			if err := json.Unmarshal(frame, &msg); err != nil {
				t.Fatalf("decode frame %q: %v", frame, err)
			}
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func TestTriggerTextBroadcast(t *testing.T) {
	f := newTriggerFixture(t)

	f.trigger.Run(context.Background(), gateway.ActionPayload{Text: "hi", SocialMedia: "none"})

	msgs := f.frames(t)
	if len(msgs) != 1 {
		t.Fatalf("got %d broadcasts, want 1", len(msgs))
	}
	if msgs[0].Type != hub.TypeNormal || msgs[0].Data != "hi" {
		t.Fatalf("broadcast = %+v, want {normal hi}", msgs[0])
	}
	if f.chatCalls != 0 {
		t.Fatalf("chat called %d times, want 0 without reprocess", f.chatCalls)
	}
	if len(f.posts) != 0 {
		t.Fatalf("unexpected social posts: %v", f.posts)
	}
}

func TestTriggerPlaybackAndAnimation(t *testing.T) {
	f := newTriggerFixture(t)

	f.trigger.Run(context.Background(), gateway.ActionPayload{Playback: true, Animation: "wave"})

	msgs := f.frames(t)
	if len(msgs) != 2 {
		t.Fatalf("got %d broadcasts, want 2", len(msgs))
	}
	if msgs[0].Type != hub.TypePlayback || msgs[0].Data != float64(gateway.PlaybackDuration) {
		t.Fatalf("first broadcast = %+v, want {playback 10000}", msgs[0])
	}
	if msgs[1].Type != hub.TypeAnimation || msgs[1].Data != "wave" {
		t.Fatalf("second broadcast = %+v, want {animation wave}", msgs[1])
	}
	if f.chatCalls != 0 || len(f.posts) != 0 {
		t.Fatal("collaborators called for a broadcast-only payload")
	}
}

func TestTriggerReprocessedTwitterPost(t *testing.T) {
	f := newTriggerFixture(t)

	result := f.trigger.Run(context.Background(), gateway.ActionPayload{
		Text:        "hi",
		Reprocess:   true,
		SocialMedia: "twitter",
	})

	if f.chatCalls != 1 {
		t.Fatalf("chat called %d times, want 1", f.chatCalls)
	}
	if len(f.posts) != 1 || f.posts[0] != "reworded: hi" {
		t.Fatalf("posts = %v, want the reprocessed text", f.posts)
	}
	if len(f.frames(t)) != 0 {
		t.Fatal("twitter routing must not broadcast")
	}
	if !strings.Contains(result, "post-1") {
		t.Fatalf("result = %q, want the post id", result)
	}
}

func TestTriggerTelegramReserved(t *testing.T) {
	f := newTriggerFixture(t)

	result := f.trigger.Run(context.Background(), gateway.ActionPayload{
		Text:        "hi",
		SocialMedia: "telegram",
	})

	if !strings.Contains(result, "telegram") {
		t.Fatalf("result = %q, want a telegram placeholder", result)
	}
	if len(f.posts) != 0 || len(f.frames(t)) != 0 {
		t.Fatal("telegram branch must not post or broadcast")
	}
}

func TestTriggerUnknownSocialTarget(t *testing.T) {
	f := newTriggerFixture(t)

	result := f.trigger.Run(context.Background(), gateway.ActionPayload{
		Text:        "hi",
		SocialMedia: "mastodon",
	})

	if len(f.posts) != 0 || len(f.frames(t)) != 0 {
		t.Fatal("unknown target must take no external action")
	}
	if !strings.Contains(result, "mastodon") {
		t.Fatalf("result = %q, want a record of the skipped target", result)
	}
}

func TestTriggerStepsIndependent(t *testing.T) {
	f := newTriggerFixture(t)
	f.postErr = errors.New("rate limited")

	f.trigger.Run(context.Background(), gateway.ActionPayload{
		Text:        "hi",
		SocialMedia: "twitter",
		Playback:    true,
		Animation:   "nod",
	})

	msgs := f.frames(t)
	if len(msgs) != 2 {
		t.Fatalf("got %d broadcasts, want playback and animation despite the post failure", len(msgs))
	}
	if msgs[0].Type != hub.TypePlayback || msgs[1].Type != hub.TypeAnimation {
		t.Fatalf("broadcast order = [%s %s]", msgs[0].Type, msgs[1].Type)
	}
}

func TestTriggerEmptyPayload(t *testing.T) {
	f := newTriggerFixture(t)

	result := f.trigger.Run(context.Background(), gateway.ActionPayload{})

	if len(f.frames(t)) != 0 || f.chatCalls != 0 || len(f.posts) != 0 {
		t.Fatal("empty payload must trigger nothing")
	}
	if result == "" {
		t.Fatal("result must describe that nothing ran")
	}
}
