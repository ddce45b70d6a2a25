package s3

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vantagehq/vantage/adapter"
)

type fakeS3 struct {
	inputs []*awss3.PutObjectInput
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, params *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &awss3.PutObjectOutput{}, nil
}

func testEvent() *adapter.RunCompletedEvent {
	return &adapter.RunCompletedEvent{
		ContractVersion: "0.3.0",
		EventType:       "run_completed",
		RunID:           "run-001",
		Topic:           "AI hardware market",
		Outcome:         "succeeded",
		Timestamp:       "2026-08-25T12:00:00Z",
		EventCount:      42,
		DurationMs:      1500,
	}
}

func TestPublish_WritesDayPartitionedObject(t *testing.T) {
	fake := &fakeS3{}
	a, err := NewWithClient(Config{Bucket: "intel-reports"}, fake)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = a.Close() }()

	if err := a.Publish(context.Background(), testEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(fake.inputs) != 1 {
		t.Fatalf("got %d puts, want 1", len(fake.inputs))
	}

	input := fake.inputs[0]
	if *input.Bucket != "intel-reports" {
		t.Errorf("bucket = %s", *input.Bucket)
	}
	if *input.Key != "runs/day=2026-08-25/run-001.json" {
		t.Errorf("key = %s", *input.Key)
	}
	if *input.ContentType != "application/json" {
		t.Errorf("content type = %s", *input.ContentType)
	}

	body, err := io.ReadAll(input.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var received adapter.RunCompletedEvent
	if err := json.Unmarshal(body, &received); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if received.RunID != "run-001" || received.Outcome != "succeeded" {
		t.Errorf("received = %+v", received)
	}
}

func TestPublish_CustomPrefix(t *testing.T) {
	fake := &fakeS3{}
	a, err := NewWithClient(Config{Bucket: "b", Prefix: "exports/intel"}, fake)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := a.Publish(context.Background(), testEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if *fake.inputs[0].Key != "exports/intel/day=2026-08-25/run-001.json" {
		t.Errorf("key = %s", *fake.inputs[0].Key)
	}
}

func TestPublish_BadTimestampFallsBackToToday(t *testing.T) {
	fake := &fakeS3{}
	a, err := NewWithClient(Config{Bucket: "b"}, fake)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	event := testEvent()
	event.Timestamp = "garbage"
	if err := a.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}
	key := *fake.inputs[0].Key
	if len(key) == 0 || key == "runs/day=/run-001.json" {
		t.Errorf("key = %s, want a dated partition", key)
	}
}

func TestPublish_PutFailure(t *testing.T) {
	fake := &fakeS3{err: errors.New("access denied")}
	a, err := NewWithClient(Config{Bucket: "b"}, fake)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.Publish(context.Background(), testEvent()); err == nil {
		t.Fatal("expected error when put fails")
	}
}

func TestNewWithClient_RequiresBucket(t *testing.T) {
	if _, err := NewWithClient(Config{}, &fakeS3{}); err == nil {
		t.Error("empty bucket accepted")
	}
}
