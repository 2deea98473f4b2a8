package logging

import (
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const sampleTraceparent = "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-01"

func TestParseTraceparent(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		ok      bool
		sampled bool
	}{
		{"sampled", sampleTraceparent, true, true},
		{"not sampled", "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-00", true, false},
		{"empty", "", false, false},
		{"legacy cloud trace", "105445aa7843bc8bf206b12000100000/1;o=1", false, false},
		{"short trace id", "00-3d23-08f067aa0ba902b7-01", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc, ok := parseTraceparent(tt.header)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && tc.sampled != tt.sampled {
				t.Fatalf("expected sampled=%v, got %v", tt.sampled, tc.sampled)
			}
		})
	}
}

func TestTraceResource(t *testing.T) {
	if got := traceResource(sampleTraceparent, ""); got != "" {
		t.Fatalf("expected empty resource without project, got %q", got)
	}
	if got := traceResource("garbage", "p"); got != "" {
		t.Fatalf("expected empty resource for invalid header, got %q", got)
	}
	want := "projects/p/traces/3d23d071b5bfd6579171efce907685cb"
	if got := traceResource(sampleTraceparent, "p"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestLoggerWithTraceAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	loggerWithTrace(zap.New(core), sampleTraceparent, "p", "req-1").Info("x")

	fields := logs.All()[0].ContextMap()
	if fields["logging.googleapis.com/trace"] != "projects/p/traces/3d23d071b5bfd6579171efce907685cb" {
		t.Errorf("unexpected trace field %v", fields["logging.googleapis.com/trace"])
	}
	if fields["logging.googleapis.com/spanId"] != "08f067aa0ba902b7" {
		t.Errorf("unexpected span field %v", fields["logging.googleapis.com/spanId"])
	}
	if fields["logging.googleapis.com/trace_sampled"] != true {
		t.Errorf("expected sampled trace")
	}
	if fields["requestId"] != "req-1" {
		t.Errorf("expected requestId, got %v", fields["requestId"])
	}
}

func TestLoggerWithTraceWithoutFieldsReturnsBase(t *testing.T) {
	base := zap.NewNop()
	if loggerWithTrace(base, "", "", "") != base {
		t.Fatal("expected base logger when no fields apply")
	}
	if loggerWithTrace(nil, "", "", "") == nil {
		t.Fatal("expected non-nil logger for nil base")
	}
}

func TestResolveProjectIDPriority(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("GCP_PROJECT", "second")
	t.Setenv("PROJECT_ID", "last")
	withProjectID(t, "")
	projectIDOnce = sync.Once{}

	if got := resolveProjectID(); got != "second" {
		t.Fatalf("expected second, got %q", got)
	}
}
