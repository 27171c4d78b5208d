package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Short: 3 * time.Second, Upload: time.Minute})

	got := Current()
	want := Config{Ping: DefaultPing, Short: 3 * time.Second, Medium: DefaultMedium, Upload: time.Minute}
	if got != want {
		t.Errorf("Current() = %+v, want %+v", got, want)
	}

	Reset()
	if Short() != DefaultShort || Upload() != DefaultUpload {
		t.Errorf("Reset() left Short=%v Upload=%v", Short(), Upload())
	}
}

func TestConfigure_IgnoresNonPositive(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Medium: -time.Second})
	if Medium() != DefaultMedium {
		t.Errorf("Medium() = %v, want %v", Medium(), DefaultMedium)
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	<-ctx.Done()
	cancel()

	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
}
