package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/reissbruno/monitoramento-processual-tjsp/models"
)

func TestDeliver_SignsBody(t *testing.T) {
	var gotSig string
	var gotEvent Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotSig = r.Header.Get(SignatureHeader)
		if want := "sha256=" + Sign("s3cret", body); gotSig != want {
			t.Errorf("signature = %q, want %q", gotSig, want)
		}
		json.Unmarshal(body, &gotEvent)
	}))
	defer srv.Close()

	result := models.NewSuccessResult(time.Now(), []models.Movement{{DateTime: "01/01/2024"}})
	ev := NewConsultaEvent("123", result)
	if err := Deliver(context.Background(), srv.URL, "s3cret", ev); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if gotEvent.Type != EventConsulta || gotEvent.Processo != "123" {
		t.Errorf("event = %+v", gotEvent)
	}
	if gotEvent.Data == nil || len(gotEvent.Data.Results) != 1 {
		t.Errorf("event data = %+v", gotEvent.Data)
	}
}

func TestDeliver_NoSecretNoSignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sig := r.Header.Get(SignatureHeader); sig != "" {
			t.Errorf("unexpected signature %q", sig)
		}
	}))
	defer srv.Close()

	ev := NewConsultaEvent("1", models.NewErrorResult(models.CodeInternal, models.MsgInternal, nil))
	if err := Deliver(context.Background(), srv.URL, "", ev); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ev := NewConsultaEvent("1", models.NewSuccessResult(time.Now(), nil))
	if err := Deliver(context.Background(), srv.URL, "", ev); err == nil {
		t.Error("expected error for 503 response")
	}
}

func TestDeliverAsync_Retries(t *testing.T) {
	old := retryDelays
	retryDelays = []time.Duration{0, time.Millisecond, time.Millisecond}
	defer func() { retryDelays = old }()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	done := DeliverAsync(srv.URL, "", NewConsultaEvent("1", models.NewSuccessResult(time.Now(), nil)))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("delivery did not finish")
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}
