package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	tracknumbersapi "github.com/BearBump/TrackMint/internal/api/tracknumbers_api"
	"github.com/BearBump/TrackMint/internal/models"
	"github.com/BearBump/TrackMint/internal/services/tracknumbers"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct{ n int64 }

func (c *fakeCounter) Allocate(ctx context.Context, key string) (int64, error) {
	c.n++
	return c.n, nil
}

type fakeRepo struct{}

func (r *fakeRepo) InsertTrackingNumber(ctx context.Context, rec *models.TrackingNumber) (*models.TrackingNumber, error) {
	rec.ID = 1
	return rec, nil
}

func (r *fakeRepo) GetByTrackingID(ctx context.Context, trackingID string) (*models.TrackingNumber, error) {
	return nil, nil
}

type fakeProducer struct{}

func (p *fakeProducer) Publish(ctx context.Context, topic string, key, value []byte) error {
	return nil
}

type fakeConsumer struct{}

func (fakeConsumer) Consume(ctx context.Context, handler func(key, value []byte) error) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRunTrackMintAPI_ServesSwaggerAndGenerates(t *testing.T) {
	dir := t.TempDir()
	sw := filepath.Join(dir, "swagger.json")
	require.NoError(t, os.WriteFile(sw, []byte(`{"swagger":"2.0"}`), 0o600))

	svc := tracknumbers.New(&fakeRepo{}, &fakeCounter{}, &fakeProducer{}, nil, tracknumbers.Config{
		CounterKey: "product-tracking-id",
		Topic:      "product-tracking-id",
	})
	api := tracknumbersapi.New(svc, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrCh := make(chan string, 1)
	opts := trackMintOpts{
		httpAddr:      "127.0.0.1:0",
		swaggerPath:   sw,
		topic:         "product-tracking-id",
		consumerGroup: "trackmint-api",
		onListen:      func(httpAddr string) { addrCh <- httpAddr },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- runTrackMintAPI(ctx, opts, api, svc, fakeConsumer{})
	}()

	httpAddr := <-addrCh

	resp, err := http.Get("http://" + httpAddr + "/swagger.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	require.Contains(t, string(body), "\"swagger\"")

	genURL := "http://" + httpAddr + "/products/next-tracking-number" +
		"?origin_country_id=LK&destination_country_id=US&weight=1.123" +
		"&created_at=2025-05-24T15%3A30%3A00Z" +
		"&customer_id=de618594-b59b-425e-9db4-943979e1bd49" +
		"&customer_name=anold+shodinger&customer_slug=anold-shodinger"
	genResp, err := http.Get(genURL)
	require.NoError(t, err)
	defer genResp.Body.Close()
	require.Equal(t, 200, genResp.StatusCode)
	genBody, _ := io.ReadAll(genResp.Body)
	require.Contains(t, string(genBody), `"tracking_id":"LK1"`)

	cancel()

	select {
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting server to stop")
	case err := <-errCh:
		require.Error(t, err)
	}
}

func TestRunTrackMintAPI_MissingSwagger(t *testing.T) {
	svc := tracknumbers.New(&fakeRepo{}, &fakeCounter{}, &fakeProducer{}, nil, tracknumbers.Config{
		CounterKey: "k", Topic: "t",
	})
	api := tracknumbersapi.New(svc, nil, 0)

	err := runTrackMintAPI(context.Background(), trackMintOpts{
		httpAddr:    "127.0.0.1:0",
		swaggerPath: "/nonexistent/swagger.json",
	}, api, svc, fakeConsumer{})
	require.Error(t, err)
}
