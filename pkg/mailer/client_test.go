package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSend_PostsSignedMessage(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer key")
		}
		if !Verify(body, r.Header.Get(SignatureHeader), "sig") {
			t.Errorf("bad signature")
		}
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := Client{FunctionURL: srv.URL, APIKey: "key", SigningSecret: "sig"}
	err := c.Send(context.Background(), Message{To: "parent@example.com", Subject: "hi", HTML: "<p>hi</p>"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.To != "parent@example.com" || got.Subject != "hi" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestSend_SurfacesErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"smtp down"}`))
	}))
	defer srv.Close()

	err := Client{FunctionURL: srv.URL}.Send(context.Background(), Message{To: "p@example.com"})
	if err == nil || !strings.Contains(err.Error(), "smtp down") {
		t.Fatalf("expected smtp down error, got %v", err)
	}
}

func TestSend_Disabled(t *testing.T) {
	err := Client{}.Send(context.Background(), Message{To: "p@example.com"})
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
