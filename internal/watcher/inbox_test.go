package watcher

import "testing"

func TestParseInboxName(t *testing.T) {
	tests := []struct {
		path     string
		wantDate string
		wantMime string
		wantOK   bool
	}{
		{"/inbox/2026-02-16.jpg", "2026-02-16", "image/jpeg", true},
		{"/inbox/2026-02-16.jpeg", "2026-02-16", "image/jpeg", true},
		{"/inbox/2026-02-16.PNG", "2026-02-16", "image/png", true},
		{"/inbox/2026-02-16.webp", "2026-02-16", "image/webp", true},
		{"/inbox/2026-02-16.txt", "", "", false},
		{"/inbox/screenshot.jpg", "", "", false},
		{"/inbox/2026-13-40.jpg", "", "", false},
	}

	for _, tt := range tests {
		date, mime, ok := parseInboxName(tt.path)
		if ok != tt.wantOK || date != tt.wantDate || mime != tt.wantMime {
			t.Errorf("parseInboxName(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.path, date, mime, ok, tt.wantDate, tt.wantMime, tt.wantOK)
		}
	}
}
