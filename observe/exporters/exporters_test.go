package exporters

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func envMap(m map[string]string) Option {
	return WithGetenv(func(k string) string { return m[k] })
}

func TestNewTracingExporter(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantNil bool
		wantErr error
	}{
		{name: "stdout"},
		{name: "none", wantNil: true},
		{name: "", wantNil: true},
		{name: "invalid", wantErr: ErrUnknownExporter},
		{name: "otlp", wantErr: ErrEndpointNotConfigured},
		{name: "jaeger", wantErr: ErrEndpointNotConfigured},
		{name: "otlp", env: map[string]string{"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT": "localhost:4317"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := NewTracingExporter(context.Background(), tt.name, envMap(tt.env), WithWriter(&bytes.Buffer{}))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewTracingExporter(%q) error = %v, want %v", tt.name, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTracingExporter(%q) error = %v", tt.name, err)
			}
			if (exp == nil) != tt.wantNil {
				t.Fatalf("NewTracingExporter(%q) exporter nil = %v, want %v", tt.name, exp == nil, tt.wantNil)
			}
			if exp != nil {
				_ = exp.Shutdown(context.Background())
			}
		})
	}
}

func TestNewMetricsReader(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantNil bool
		wantErr error
	}{
		{name: "stdout"},
		{name: "none", wantNil: true},
		{name: "bogus", wantErr: ErrUnknownExporter},
		{name: "otlp", wantErr: ErrEndpointNotConfigured},
		{name: "otlp", env: map[string]string{"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4317"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewMetricsReader(context.Background(), tt.name, envMap(tt.env), WithWriter(&bytes.Buffer{}))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewMetricsReader(%q) error = %v, want %v", tt.name, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMetricsReader(%q) error = %v", tt.name, err)
			}
			if (reader == nil) != tt.wantNil {
				t.Fatalf("NewMetricsReader(%q) reader nil = %v, want %v", tt.name, reader == nil, tt.wantNil)
			}
			if reader != nil {
				_ = reader.Shutdown(context.Background())
			}
		})
	}
}

func TestNewMetricsReader_Prometheus(t *testing.T) {
	reader, err := NewMetricsReader(context.Background(), "prometheus")
	if err != nil {
		t.Fatalf("NewMetricsReader(prometheus) error = %v", err)
	}
	if reader == nil {
		t.Fatal("expected non-nil reader")
	}
}
