package gateway_test

import (
	"encoding/json"
	"testing"

	"github.com/animahq/anima/pkg/gateway"
)

func TestDecodeActionPayload(t *testing.T) {
	p, err := gateway.DecodeActionPayload(json.RawMessage(
		`{"text":"hi","reprocess":true,"socialMedia":"twitter","playback":true,"animation":"wave"}`))
	if err != nil {
		t.Fatalf("DecodeActionPayload: %v", err)
	}
	want := gateway.ActionPayload{
		Text: "hi", Reprocess: true, SocialMedia: "twitter", Playback: true, Animation: "wave",
	}
	if p != want {
		t.Fatalf("payload = %+v, want %+v", p, want)
	}
}

func TestDecodeActionPayloadStringWrapped(t *testing.T) {
	raw, err := json.Marshal(`{"text":"hi","playback":true}`)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	p, err := gateway.DecodeActionPayload(raw)
	if err != nil {
		t.Fatalf("DecodeActionPayload: %v", err)
	}
	if p.Text != "hi" || !p.Playback {
		t.Fatalf("payload = %+v", p)
	}
}

func TestDecodeActionPayloadRepairsSyntax(t *testing.T) {
	// Unquoted keys and a trailing comma, as models tend to produce.
	p, err := gateway.DecodeActionPayload(json.RawMessage(`{text: "hi", animation: "wave",}`))
	if err != nil {
		t.Fatalf("DecodeActionPayload: %v", err)
	}
	if p.Text != "hi" || p.Animation != "wave" {
		t.Fatalf("payload = %+v", p)
	}
}

func TestDecodeActionPayloadRejectsWrongTypes(t *testing.T) {
	if _, err := gateway.DecodeActionPayload(json.RawMessage(`{"text":5}`)); err == nil {
		t.Fatal("expected a validation error for a numeric text field")
	}
}
