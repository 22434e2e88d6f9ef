package persist

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-persist/pkg/storage"
)

func TestZerologLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := ZerologLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	logger.LogPersistence(LogEvent{Op: OpPersist, Slice: "counter", Key: storage.Key("counter"), Version: 4, Bytes: 13, Duration: time.Millisecond})
	logger.LogPersistence(LogEvent{Op: OpHydrate, Slice: "counter", Err: &storage.Error{Op: storage.OpRead, Slice: "counter", Err: errDiskFull}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}

	var ok, failed map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &ok); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &failed); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if ok["level"] != "debug" || ok["slice"] != "counter" || ok["version"] != float64(4) || ok["key"] != "persisted-storage-counter" {
		t.Fatalf("unexpected success entry %v", ok)
	}
	if failed["level"] != "warn" || failed["found"] != false || !strings.Contains(failed["error"].(string), "disk full") {
		t.Fatalf("unexpected failure entry %v", failed)
	}
}

func TestWithLoggerNilFallsBackToNoop(t *testing.T) {
	pc := NewContext(WithLogger(nil))
	pc.log(LogEvent{Op: OpClear, Slice: "counter"})
}
