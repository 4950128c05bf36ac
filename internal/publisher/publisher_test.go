package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"CoinRadar/internal/model"
)

type fakeRedis struct {
	sets       map[string]string
	ttls       map[string]time.Duration
	published  map[string][]string
	publishErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{sets: map[string]string{}, ttls: map[string]time.Duration{}, published: map[string][]string{}}
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, exp time.Duration) *redis.StatusCmd {
	f.sets[key] = string(value.([]byte))
	f.ttls[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	if f.publishErr != nil {
		return redis.NewIntResult(0, f.publishErr)
	}
	f.published[channel] = append(f.published[channel], string(message.([]byte)))
	return redis.NewIntResult(1, nil)
}

func (f *fakeRedis) Close() error { return nil }

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func testMessage() *Message {
	return &Message{
		CycleID:     "cycle-1",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Ranking: model.RankedSelection{
			{Snapshot: model.AssetSnapshot{Symbol: "btc"}, Signal: model.Signal{Type: model.SignalBuy, ConfidencePercent: 72}},
		},
	}
}

func TestRedisPublisher(t *testing.T) {
	fake := newFakeRedis()
	p := newRedisPublisher(fake, "cr", time.Hour)

	if err := p.Publish(context.Background(), testMessage()); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	latest, ok := fake.sets["cr:ranking:latest"]
	if !ok {
		t.Fatalf("latest key not set, got %v", fake.sets)
	}
	if fake.ttls["cr:ranking:latest"] != time.Hour {
		t.Errorf("ttl: got %v", fake.ttls["cr:ranking:latest"])
	}
	var decoded struct {
		CycleID string `json:"cycle_id"`
		Ranking []struct {
			Signal struct {
				ConfidencePercent int `json:"confidence_percent"`
			} `json:"signal"`
		} `json:"ranking"`
	}
	if err := json.Unmarshal([]byte(latest), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.CycleID != "cycle-1" || len(decoded.Ranking) != 1 || decoded.Ranking[0].Signal.ConfidencePercent != 72 {
		t.Errorf("unexpected payload: %s", latest)
	}
	if got := fake.published["cr:ranking"]; len(got) != 1 || got[0] != latest {
		t.Errorf("channel payload: %v", got)
	}
}

func TestRedisPublisher_Error(t *testing.T) {
	fake := newFakeRedis()
	fake.publishErr = errors.New("connection reset")
	p := newRedisPublisher(fake, "cr", 0)

	err := p.Publish(context.Background(), testMessage())
	if err == nil || !strings.Contains(err.Error(), "redis publish") {
		t.Fatalf("expected wrapped publish error, got %v", err)
	}
}

func TestKafkaPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, topic: "rankings"}

	msg := testMessage()
	if err := p.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "cycle-1" {
		t.Errorf("key: got %q", w.msgs[0].Key)
	}
	if !w.msgs[0].Time.Equal(msg.GeneratedAt) {
		t.Errorf("time: got %v", w.msgs[0].Time)
	}
	if !strings.Contains(string(w.msgs[0].Value), `"cycle_id":"cycle-1"`) {
		t.Errorf("value: %s", w.msgs[0].Value)
	}
}

func TestNewKafkaPublisher_RequiresBrokers(t *testing.T) {
	if _, err := NewKafkaPublisher(nil, "t"); err == nil {
		t.Fatal("expected error without brokers")
	}
}

func TestMulti(t *testing.T) {
	okWriter := &fakeWriter{}
	failing := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}, topic: "t"}
	good := &KafkaPublisher{writer: okWriter, topic: "t"}

	var failed []string
	m := NewMulti(failing, good)
	m.OnError = func(sink string, _ error) { failed = append(failed, sink) }

	err := m.Publish(context.Background(), testMessage())
	if err == nil {
		t.Fatal("expected joined error")
	}
	if len(okWriter.msgs) != 1 {
		t.Error("a failing sink must not stop the others")
	}
	if len(failed) != 1 || failed[0] != "kafka" {
		t.Errorf("OnError calls: %v", failed)
	}
	if m.Len() != 2 {
		t.Errorf("Len: got %d", m.Len())
	}
	if err := NewMulti().Publish(context.Background(), testMessage()); err != nil {
		t.Errorf("empty multi should succeed, got %v", err)
	}
}
