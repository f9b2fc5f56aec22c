package tracing

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(Config{})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if p.Enabled() {
		t.Error("disabled provider reports enabled")
	}

	_, span := p.Tracer().Start(context.Background(), "noop")
	if span.SpanContext().IsValid() {
		t.Error("disabled tracer should produce invalid span contexts")
	}
	span.End()

	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewProvider_Stdout(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewProvider(Config{Enabled: true, Exporter: "stdout", Writer: &buf})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	_, span := p.Tracer().Start(context.Background(), "registration.create")
	span.End()

	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"registration.create", DefaultServiceName} {
		if !strings.Contains(out, want) {
			t.Errorf("exported spans missing %q", want)
		}
	}
}

func TestNewProvider_UnknownExporter(t *testing.T) {
	if _, err := NewProvider(Config{Enabled: true, Exporter: "jaeger"}); err == nil {
		t.Error("expected error for unknown exporter")
	}
}
