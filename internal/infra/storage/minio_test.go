package storage

import "testing"

func TestObjectURL(t *testing.T) {
	tests := []struct {
		secure bool
		want   string
	}{
		{false, "http://minio:9000/reports/acme/exports/a.json"},
		{true, "https://minio:9000/reports/acme/exports/a.json"},
	}
	for _, tt := range tests {
		if got := objectURL(tt.secure, "minio:9000", "reports", "acme/exports/a.json"); got != tt.want {
			t.Errorf("objectURL(secure=%v) = %q, want %q", tt.secure, got, tt.want)
		}
	}
}
