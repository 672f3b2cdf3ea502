package observe

import (
	"context"
	"errors"
	"testing"
)

func validConfig() Config {
	return Config{
		ServiceName: "textopsd",
		Version:     "test",
		Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.0},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "none"},
		Logging:     LoggingConfig{Enabled: true, Level: "info"},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"missing service name", func(c *Config) { c.ServiceName = "" }, ErrMissingServiceName},
		{"unknown tracing exporter", func(c *Config) { c.Tracing.Exporter = "zipkin" }, ErrInvalidTracingExporter},
		{"unknown metrics exporter", func(c *Config) { c.Metrics.Exporter = "statsd" }, ErrInvalidMetricsExporter},
		{"sample above range", func(c *Config) { c.Tracing.SamplePct = 1.5 }, ErrInvalidSamplePct},
		{"sample below range", func(c *Config) { c.Tracing.SamplePct = -0.1 }, ErrInvalidSamplePct},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, ErrInvalidLogLevel},
		{"disabled sections skip checks", func(c *Config) {
			c.Tracing = TracingConfig{Exporter: "zipkin"}
			c.Metrics = MetricsConfig{Exporter: "statsd"}
			c.Logging = LoggingConfig{Level: "verbose"}
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewObserver_Disabled(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "textopsd"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer obs.Shutdown(context.Background())

	if obs.Tracer() == nil || obs.Meter() == nil || obs.Logger() == nil {
		t.Fatal("disabled observer must still return no-op primitives")
	}

	_, span := obs.Tracer().Start(context.Background(), "x")
	if span.SpanContext().IsValid() {
		t.Error("disabled tracing should produce non-recording spans")
	}
	span.End()
}

func TestNewObserver_Enabled(t *testing.T) {
	obs, err := NewObserver(context.Background(), validConfig())
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}

	mw, err := MiddlewareFromObserver(obs)
	if err != nil {
		t.Fatalf("MiddlewareFromObserver() error = %v", err)
	}
	_ = mw.Run(context.Background(), OpMeta{Component: "diff", Op: "diff"}, func(context.Context, OpMeta) error {
		return nil
	})

	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewObserver_InvalidConfig(t *testing.T) {
	_, err := NewObserver(context.Background(), Config{})
	if !errors.Is(err, ErrMissingServiceName) {
		t.Fatalf("NewObserver() error = %v, want ErrMissingServiceName", err)
	}
}

func TestObserver_ShutdownIdempotentWhenDisabled(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "textopsd"})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := obs.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown() #%d error = %v", i+1, err)
		}
	}
}
