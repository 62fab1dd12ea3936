package videodb

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestNewConnection_NilClient(t *testing.T) {
	t.Parallel()

	if _, err := NewConnection(nil); err == nil {
		t.Fatal("expected error for nil client")
	}
}

func TestConnection_GetCollectionDefault(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.reply("GET /collection/default", `{"id": "c-default", "name": "Default Collection", "description": "", "is_public": false}`)

	conn := api.connection()

	coll, err := conn.GetCollection(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if coll.ID != "c-default" || coll.Name != "Default Collection" {
		t.Errorf("unexpected collection %v", coll)
	}

	if conn.CollectionID() != "c-default" {
		t.Errorf("expected current collection c-default, got %s", conn.CollectionID())
	}

	if got := api.last().Header.Get(AccessTokenHeader); got != "test-key" {
		t.Errorf("expected authenticated request, got token %q", got)
	}
}

func TestConnection_GetCollections(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.reply("GET /collection", `{"collections": [{"id": "c-1", "name": "one"}, {"id": "c-2", "name": "two", "is_public": true}]}`)
	api.reply("DELETE /collection/c-2", `{}`)

	conn := api.connection()

	colls, err := conn.GetCollections(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(colls) != 2 {
		t.Fatalf("expected 2 collections, got %d", len(colls))
	}

	if !colls[1].IsPublic {
		t.Error("expected second collection to be public")
	}

	if err := colls[1].Delete(context.Background()); err != nil {
		t.Fatalf("listed collection should be usable: %v", err)
	}

	if last := api.last(); last.Method != http.MethodDelete || last.Path != "/collection/c-2" {
		t.Errorf("unexpected request %s %s", last.Method, last.Path)
	}
}

func TestConnection_CreateAndUpdateCollection(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.reply("POST /collection", `{"id": "c-new", "name": "clips", "description": "demo", "is_public": true}`)
	api.reply("PATCH /collection/c-new", `{"id": "c-new", "name": "renamed", "description": "updated"}`)

	conn := api.connection()
	ctx := context.Background()

	coll, err := conn.CreateCollection(ctx, "clips", "demo", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := api.last().Object(t)
	if body["name"] != "clips" || body["description"] != "demo" || body["is_public"] != true {
		t.Errorf("unexpected create body %v", body)
	}

	if conn.CollectionID() != coll.ID {
		t.Errorf("expected created collection to become current, got %s", conn.CollectionID())
	}

	updated, err := conn.UpdateCollection(ctx, "c-new", "renamed", "updated")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Name != "renamed" {
		t.Errorf("expected renamed collection, got %s", updated.Name)
	}

	body = api.last().Object(t)
	if body["name"] != "renamed" || body["description"] != "updated" {
		t.Errorf("unexpected update body %v", body)
	}
}

func TestConnection_Billing(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.reply("GET /billing/usage", `{"credit_balance": 12.5}`)
	api.reply("GET /billing/invoices", `[{"id": "inv-1"}, {"id": "inv-2"}]`)

	conn := api.connection()
	ctx := context.Background()

	usage, err := conn.CheckUsage(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usage["credit_balance"] != 12.5 {
		t.Errorf("unexpected usage %v", usage)
	}

	invoices, err := conn.GetInvoices(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(invoices) != 2 || invoices[0]["id"] != "inv-1" {
		t.Errorf("unexpected invoices %v", invoices)
	}
}

func TestConnection_Download(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.reply("POST /download", `{"download_url": "https://cdn/out.mp4", "status": "done"}`)

	conn := api.connection()

	result, err := conn.Download(context.Background(), "https://stream/1.m3u8", "out")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result["download_url"] != "https://cdn/out.mp4" {
		t.Errorf("unexpected result %v", result)
	}

	body := api.last().Object(t)
	if body["stream_link"] != "https://stream/1.m3u8" || body["name"] != "out" {
		t.Errorf("unexpected download body %v", body)
	}
}

func TestConnection_UploadUsesCurrentCollection(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.reply("GET /collection/c-9", `{"id": "c-9", "name": "nine"}`)
	api.reply("POST /collection/c-9/upload", `{"id": "m-1", "collection_id": "c-9", "stream_url": "https://s/m-1.m3u8", "length": "12.5"}`)

	conn := api.connection()
	ctx := context.Background()

	if _, err := conn.GetCollection(ctx, "c-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	media, err := conn.Upload(ctx, UploadRequest{URL: "https://example.com/a.mp4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	video, ok := media.(*Video)
	if !ok {
		t.Fatalf("expected *Video, got %T", media)
	}

	if video.Length != 12.5 {
		t.Errorf("expected length 12.5, got %v", video.Length)
	}
}

func TestConnection_UnexpectedPayload(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.reply("GET /collection/default", `["not", "a", "collection"]`)

	conn := api.connection()

	_, err := conn.GetCollection(context.Background(), "")

	var reqErr *InvalidRequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected InvalidRequestError, got %T: %v", err, err)
	}

	if conn.CollectionID() != "default" {
		t.Errorf("failed fetch must not change the current collection, got %s", conn.CollectionID())
	}
}

func TestConnection_Options(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "http://example.com")

	conn, err := NewConnection(client,
		WithPlayerURL("https://player.example.com"),
		WithStreaming(StreamingConfig{}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if conn.playerURL != "https://player.example.com" {
		t.Errorf("unexpected player URL %s", conn.playerURL)
	}

	if conn.streaming != nil {
		t.Error("streaming without an API URL should stay disabled")
	}

	if conn.Client() != client {
		t.Error("expected Client() to return the wrapped client")
	}
}
