package main

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

func apiEvent(method, path, body string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath: path,
		Body:    body,
		Headers: map[string]string{"content-type": "application/json"},
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			RequestID: "req-123",
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:   method,
				Path:     path,
				SourceIP: "203.0.113.7",
			},
		},
	}
}

func TestHandleForwardsToRouter(t *testing.T) {
	var gotBody, gotPath, gotReqID string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotPath = r.URL.Path
		gotReqID = r.Header.Get("X-Request-Id")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"answer":"hola"}`))
	})

	resp := handle(context.Background(), h, apiEvent(http.MethodPost, "/chat", `{"question":"hola"}`))

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	if resp.Body != `{"answer":"hola"}` {
		t.Fatalf("unexpected body %q", resp.Body)
	}
	if resp.Headers["content-type"] != "application/json" {
		t.Fatalf("expected content-type header, got %v", resp.Headers)
	}
	if gotBody != `{"question":"hola"}` || gotPath != "/chat" {
		t.Fatalf("router saw body=%q path=%q", gotBody, gotPath)
	}
	if gotReqID != "req-123" {
		t.Fatalf("expected request id to be propagated, got %q", gotReqID)
	}
}

func TestHandleDecodesBase64Body(t *testing.T) {
	var gotBody string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	})

	evt := apiEvent(http.MethodPost, "/rate", base64.StdEncoding.EncodeToString([]byte(`{"from_zip":"06700"}`)))
	evt.IsBase64Encoded = true

	resp := handle(context.Background(), h, evt)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected default status 200, got %d", resp.StatusCode)
	}
	if gotBody != `{"from_zip":"06700"}` {
		t.Fatalf("unexpected decoded body %q", gotBody)
	}
}

func TestHandleRejectsInvalidBase64(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	})

	evt := apiEvent(http.MethodPost, "/chat", "%%%")
	evt.IsBase64Encoded = true

	resp := handle(context.Background(), h, evt)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestHandleEmptyNoContent(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	resp := handle(context.Background(), h, apiEvent(http.MethodOptions, "/chat", ""))
	if resp.StatusCode != http.StatusNoContent || resp.Body != "" {
		t.Fatalf("expected empty 204, got %d %q", resp.StatusCode, resp.Body)
	}
}
