package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/adapter/handler"
)

type options struct {
	transport string
	httpURL   string
	grpcAddr  string
	sessions  int
	itemIDs   []int64
	quantity  int
	userID    int64
	timeout   time.Duration
}

// runner drives one session from empty cart to placed order.
type runner interface {
	run(ctx context.Context, session string) error
}

func main() {
	var (
		opts  options
		items string
	)
	flag.StringVar(&opts.transport, "transport", "http", "http or grpc")
	flag.StringVar(&opts.httpURL, "http", "http://localhost:8080", "HTTP base URL")
	flag.StringVar(&opts.grpcAddr, "grpc", "localhost:50051", "gRPC address")
	flag.IntVar(&opts.sessions, "sessions", 50, "concurrent cart sessions")
	flag.StringVar(&items, "items", "1,2", "comma separated item ids added to every cart")
	flag.IntVar(&opts.quantity, "qty", 1, "quantity added per item")
	flag.Int64Var(&opts.userID, "user", 1, "user id sent as the authenticated caller")
	flag.DurationVar(&opts.timeout, "timeout", 10*time.Second, "per session timeout")
	flag.Parse()

	ids, err := parseIDs(items)
	if err != nil {
		log.Fatalf("invalid -items: %v", err)
	}
	opts.itemIDs = ids

	var r runner
	switch opts.transport {
	case "http":
		r = &httpRunner{opts: opts, client: &http.Client{Timeout: opts.timeout}}
	case "grpc":
		conn, err := grpc.NewClient(opts.grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			log.Fatalf("failed to dial grpc: %v", err)
		}
		defer conn.Close()
		r = &grpcRunner{opts: opts, client: handler.NewCartServiceClient(conn)}
	default:
		log.Fatalf("unknown transport %q", opts.transport)
	}

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32
	var firstErr atomic.Value

	// Spawn concurrent sessions
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < opts.sessions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
			defer cancel()

			if err := r.run(ctx, uuid.New().String()); err != nil {
				failCount.Add(1)
				firstErr.CompareAndSwap(nil, err.Error())
				return
			}
			successCount.Add(1)
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== CART LOAD RESULTS ==========")
	fmt.Printf("Transport:        %s\n", opts.transport)
	fmt.Printf("Sessions:         %d\n", opts.sessions)
	fmt.Printf("Orders Placed:    %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("Checkouts/sec:    %.1f\n", float64(success)/elapsed.Seconds())
	}
	if v := firstErr.Load(); v != nil {
		fmt.Printf("First Error:      %s\n", v)
	}
	fmt.Println("========================================")

	if success == int32(opts.sessions) {
		fmt.Printf("PASS: all %d sessions checked out\n", opts.sessions)
	} else {
		fmt.Printf("FAIL: expected %d orders, got %d\n", opts.sessions, success)
	}
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no item ids")
	}
	return ids, nil
}

type httpRunner struct {
	opts   options
	client *http.Client
}

func (h *httpRunner) run(ctx context.Context, session string) error {
	for _, id := range h.opts.itemIDs {
		qty := h.opts.quantity
		body := handler.AddItemHTTPRequest{ItemID: id, Quantity: &qty}
		if err := h.do(ctx, session, http.MethodPost, "/api/v1/cart/items", body, http.StatusCreated); err != nil {
			return fmt.Errorf("add item %d: %w", id, err)
		}
	}
	if err := h.do(ctx, session, http.MethodPost, "/api/v1/cart/checkout", nil, http.StatusCreated); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return nil
}

func (h *httpRunner) do(ctx context.Context, session, method, path string, payload any, want int) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.opts.httpURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(handler.SessionHeader, session)
	req.Header.Set(handler.UserIDHeader, strconv.FormatInt(h.opts.userID, 10))
	req.Header.Set(handler.IdempotencyKeyHeader, session)

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type grpcRunner struct {
	opts   options
	client *handler.CartServiceClient
}

func (g *grpcRunner) run(ctx context.Context, session string) error {
	ctx = metadata.AppendToOutgoingContext(ctx,
		handler.SessionMetadataKey, session,
		handler.UserIDMetadataKey, strconv.FormatInt(g.opts.userID, 10),
	)

	for _, id := range g.opts.itemIDs {
		if _, err := g.client.AddItem(ctx, &handler.AddItemRequest{ItemID: id, Quantity: g.opts.quantity}); err != nil {
			return fmt.Errorf("add item %d: %w", id, err)
		}
	}
	if _, err := g.client.Checkout(ctx, &handler.CheckoutRequest{IdempotencyKey: session}); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return nil
}
