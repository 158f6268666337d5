package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestTelegramNotifier_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = srv.URL

	if err := n.Send(context.Background(), "<b>hi</b>"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got["chat_id"] != "42" || got["text"] != "<b>hi</b>" || got["parse_mode"] != "HTML" {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestTelegramNotifier_SendErrorStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = srv.URL

	if err := n.SendWithRetry(context.Background(), "x", 0); err == nil {
		t.Fatal("expected error on non-200 status")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected 1 attempt with zero retries, got %d", calls)
	}
}
