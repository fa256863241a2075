package integrationtests

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"gigstage/pkg/client"
	"gigstage/pkg/model"
)

// These tests run against a live service and expect the identity stub used
// in local compose to answer for the seeded test users. Set TEST_SERVER_URL
// to enable them.
var (
	owner    *client.GigsClient
	guitar   *client.GigsClient
	guitar2  *client.GigsClient
	drummer  *client.GigsClient
	stranger *client.GigsClient
)

func TestMain(m *testing.M) {
	serverURL := os.Getenv("TEST_SERVER_URL")
	if serverURL == "" {
		fmt.Println("TEST_SERVER_URL not set, skipping gigs integration tests")
		os.Exit(0)
	}

	if err := client.NewHttpClient(serverURL).WaitForHealthy(30 * time.Second); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	owner = client.NewGigsClient(serverURL, "it-owner")
	guitar = client.NewGigsClient(serverURL, "it-guitarist")
	guitar2 = client.NewGigsClient(serverURL, "it-guitarist-2")
	drummer = client.NewGigsClient(serverURL, "it-drummer")
	stranger = client.NewGigsClient(serverURL, "")

	os.Exit(m.Run())
}

func createBandGig(t *testing.T, roles ...map[string]any) *model.Gig {
	t.Helper()
	resp, err := owner.Create(context.Background(), map[string]any{
		"title":          "Integration band night",
		"is_client_band": true,
		"band_category":  roles,
	})
	if err != nil {
		t.Fatalf("create gig request failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create gig failed: %d %s", resp.StatusCode, resp.Body)
	}
	return decodeGig(t, resp)
}

func decodeGig(t *testing.T, resp *client.Response) *model.Gig {
	t.Helper()
	var result struct {
		Data model.Gig `json:"data"`
	}
	if err := resp.DecodeJSON(&result); err != nil {
		t.Fatalf("failed to decode gig: %v", err)
	}
	return &result.Data
}

func errorCode(t *testing.T, resp *client.Response) string {
	t.Helper()
	var result struct {
		Code string `json:"code"`
	}
	if err := resp.DecodeJSON(&result); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	return result.Code
}

func must(t *testing.T, resp *client.Response, err error) *client.Response {
	t.Helper()
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestBookingFlow(t *testing.T) {
	ctx := context.Background()
	gig := createBandGig(t,
		map[string]any{"role": "guitar", "max_slots": 1, "price": 200},
	)

	resp, err := guitar.ApplyToRole(ctx, gig.ID, "guitar")
	resp = must(t, resp, err)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("apply failed: %d %s", resp.StatusCode, resp.Body)
	}

	resp, err = guitar.BookRole(ctx, gig.ID, "guitar", 0)
	resp = must(t, resp, err)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("book failed: %d %s", resp.StatusCode, resp.Body)
	}
	if booked := decodeGig(t, resp); !booked.IsTaken {
		t.Error("gig not marked taken after last seat filled")
	}

	// Payment handshake: confirm both sides, then finalize.
	resp, err = owner.FinalizePayment(ctx, gig.ID, "settled in cash")
	resp = must(t, resp, err)
	if code := errorCode(t, resp); code != "INCOMPLETE_CONFIRMATION" {
		t.Fatalf("premature finalize code = %q, want INCOMPLETE_CONFIRMATION", code)
	}

	for _, c := range []*client.GigsClient{owner, guitar} {
		resp, err = c.ConfirmPayment(ctx, gig.ID, "TXN-INTEGRATION-1", "")
		resp = must(t, resp, err)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("confirm failed: %d %s", resp.StatusCode, resp.Body)
		}
	}

	resp, err = owner.FinalizePayment(ctx, gig.ID, "settled in cash")
	resp = must(t, resp, err)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("finalize failed: %d %s", resp.StatusCode, resp.Body)
	}
	if paid := decodeGig(t, resp); paid.PaymentStatus != model.PaymentPaid {
		t.Errorf("payment status = %q, want paid", paid.PaymentStatus)
	}

	// Repeat finalize is an idempotent success.
	resp, err = owner.FinalizePayment(ctx, gig.ID, "")
	resp = must(t, resp, err)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("repeat finalize = %d, want 200", resp.StatusCode)
	}

	resp, err = owner.History(ctx, gig.ID)
	resp = must(t, resp, err)
	var history struct {
		Data       []model.BookingHistoryEntry `json:"data"`
		TotalCount int                         `json:"total_count"`
	}
	if err := resp.DecodeJSON(&history); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if history.TotalCount < 3 {
		t.Errorf("history total = %d, want create + book + finalize entries", history.TotalCount)
	}
}

func TestConcurrentBookingOneSeat(t *testing.T) {
	ctx := context.Background()
	gig := createBandGig(t,
		map[string]any{"role": "guitar", "max_slots": 1},
		map[string]any{"role": "drums", "max_slots": 1},
	)

	clients := []*client.GigsClient{guitar, guitar2}
	codes := make([]int, len(clients))
	var wg sync.WaitGroup
	wg.Add(len(clients))
	for i, c := range clients {
		go func(i int, c *client.GigsClient) {
			defer wg.Done()
			resp, err := c.BookRole(ctx, gig.ID, "guitar", 0)
			if err != nil {
				return
			}
			codes[i] = resp.StatusCode
		}(i, c)
	}
	wg.Wait()

	var ok, conflict int
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			conflict++
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	if ok != 1 || conflict != 1 {
		t.Fatalf("ok = %d, conflict = %d, want exactly one winner", ok, conflict)
	}

	getResp, getErr := owner.GetByID(ctx, gig.ID)
	final := decodeGig(t, must(t, getResp, getErr))
	if final.BandCategory[0].FilledSlots != 1 {
		t.Errorf("filled slots = %d, seat was double-booked", final.BandCategory[0].FilledSlots)
	}
}

func TestQualificationGate(t *testing.T) {
	ctx := context.Background()
	gig := createBandGig(t,
		map[string]any{"role": "guitar", "max_slots": 1},
	)

	resp, err := drummer.BookRole(ctx, gig.ID, "guitar", 0)
	resp = must(t, resp, err)
	if code := errorCode(t, resp); code != "NOT_QUALIFIED" {
		t.Fatalf("code = %q, want NOT_QUALIFIED", code)
	}
}

func TestMusicianCancelFreesSeat(t *testing.T) {
	ctx := context.Background()
	gig := createBandGig(t,
		map[string]any{"role": "guitar", "max_slots": 1},
		map[string]any{"role": "drums", "max_slots": 1},
	)

	resp, err := guitar.BookRole(ctx, gig.ID, "guitar", 0)
	resp = must(t, resp, err)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("book failed: %d %s", resp.StatusCode, resp.Body)
	}

	resp, err = guitar.Cancel(ctx, gig.ID, model.CancelerMusician, "schedule conflict")
	resp = must(t, resp, err)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel failed: %d %s", resp.StatusCode, resp.Body)
	}

	// The freed seat can be booked again.
	resp, err = guitar2.BookRole(ctx, gig.ID, "guitar", 0)
	resp = must(t, resp, err)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rebook after cancel failed: %d %s", resp.StatusCode, resp.Body)
	}
}

func TestUnauthenticatedRejected(t *testing.T) {
	resp, err := stranger.Create(context.Background(), map[string]any{"title": "No identity"})
	resp = must(t, resp, err)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}
