package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(server.URL, "test-token")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestAllocationSuggestionsUnwrapsEnvelope(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/api/v1/orders/admin/42/allocation-suggestions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":{"order_id":42,"suggestions":[{"nursery_id":7,"internal_name":"Fern & Co","city":"Portland","match_tier":1,"available_items":[{"order_item_id":1,"product_id":11,"product_name":"Boston Fern","requested_qty":3,"available_qty":3}]}]}}`)
	})

	suggestions, err := c.AllocationSuggestions(context.Background(), 42)
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if len(suggestions) != 1 || suggestions[0].NurseryID != 7 {
		t.Fatalf("unexpected suggestions %+v", suggestions)
	}
	if suggestions[0].AvailableItems[0].AvailableQty != 3 {
		t.Fatalf("unexpected available qty %+v", suggestions[0].AvailableItems)
	}
}

func TestAllocateSendsSubmissionBody(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data":[{"id":100,"status":"proposed","items":[{"id":1,"order_item_id":1,"quantity":3}]}]}`)
	})

	created, err := c.Allocate(context.Background(), 42, Submission{
		Allocations: []AllocationEntry{
			{NurseryID: 7, Items: []AllocationItem{{OrderItemID: 1, Quantity: 3}}},
		},
	})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if len(created) != 1 || created[0].Status != "proposed" {
		t.Fatalf("unexpected fulfillments %+v", created)
	}

	allocations, ok := gotBody["allocations"].([]any)
	if !ok || len(allocations) != 1 {
		t.Fatalf("unexpected request body %+v", gotBody)
	}
}

func TestUnauthorizedSentinel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"code":"UNAUTHORIZED","message":"authentication required"}}`)
	})

	_, err := c.Order(context.Background(), 42)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAPIErrorMapping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"error":{"code":"STATE_CONFLICT","message":"order already confirmed"}}`)
	})

	_, err := c.ConfirmAllocation(context.Background(), 42)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != "STATE_CONFLICT" || apiErr.StatusCode != http.StatusConflict {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestSetDeliveryContactRejectsEmptyFieldsWithoutNetwork(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for invalid input")
	})

	if _, err := c.SetDeliveryContact(context.Background(), 5, "", "555-0100", nil); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := c.SetDeliveryContact(context.Background(), 5, "Ada", "   ", nil); err == nil {
		t.Fatal("expected error for empty phone")
	}
}

func TestSetDeliveryContactOmitsEmptyNotes(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		io.WriteString(w, `{"data":{"id":5,"status":"confirmed","delivery_name":"Ada","delivery_phone":"555-0100","items":[]}}`)
	})

	notes := "   "
	updated, err := c.SetDeliveryContact(context.Background(), 5, "Ada", "555-0100", &notes)
	if err != nil {
		t.Fatalf("set delivery contact: %v", err)
	}
	if updated.DeliveryName == nil || *updated.DeliveryName != "Ada" {
		t.Fatalf("unexpected fulfillment %+v", updated)
	}
	if _, present := gotBody["delivery_notes"]; present {
		t.Fatalf("blank notes should be omitted, body %+v", gotBody)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New("", "token"); err == nil {
		t.Fatal("expected error for empty base URL")
	}
	if _, err := New("http://localhost:8080", " "); err == nil {
		t.Fatal("expected error for empty token")
	}
}
