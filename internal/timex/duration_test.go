package timex

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "duration string", input: `"15m"`, want: 15 * time.Minute},
		{name: "compound string", input: `"1h30m"`, want: 90 * time.Minute},
		{name: "integer nanoseconds", input: `60000000000`, want: time.Minute},
		{name: "bad string", input: `"fifteen minutes"`, wantErr: true},
		{name: "wrong type", input: `{"d":1}`, wantErr: true},
		{name: "not json", input: `15m`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal error: %v", err)
			}
			if d.Duration != tt.want {
				t.Fatalf("got %v, want %v", d.Duration, tt.want)
			}
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{90 * time.Minute})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(b) != `"1h30m0s"` {
		t.Fatalf("got %s", b)
	}
}

func TestDuration_RoundTrip(t *testing.T) {
	orig := Duration{42 * time.Second}

	b, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var back Duration
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if back.Duration != orig.Duration {
		t.Fatalf("round trip changed value: %v != %v", back.Duration, orig.Duration)
	}
}
