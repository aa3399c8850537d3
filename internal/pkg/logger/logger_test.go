package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestConfigureJSONWithService(t *testing.T) {
	var buf bytes.Buffer
	cfg := ParseConfig("WARN", "json")
	cfg.Output = &buf
	cfg.Service = "resultsportal"
	lgr := Configure(cfg)
	t.Cleanup(func() { Configure(Config{Level: InfoLevel}) })

	lgr.Info().Msg("dropped")
	lgr.Warn().Str("key", "value").Msg("kept")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %s", len(lines), buf.String())
	}
	var entry map[string]interface{}
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["message"] != "kept" || entry["service"] != "resultsportal" || entry["key"] != "value" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestParseConfig(t *testing.T) {
	if c := ParseConfig("debug", "text"); !c.Pretty || c.Level != DebugLevel {
		t.Fatalf("unexpected config: %+v", c)
	}
	if c := ParseConfig("info", "json"); c.Pretty {
		t.Fatalf("json format should not be pretty")
	}
}
