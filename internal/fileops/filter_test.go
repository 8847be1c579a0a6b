package fileops

import "testing"

func TestMatchesFilter(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		filter string
		want   bool
	}{
		{"star accepts all", "/tmp/a.bin", "*", true},
		{"empty accepts all", "a.bin", "", true},
		{"whitespace accepts all", "a.bin", "  ", true},
		{"bare extension with dot", "shot.png", ".png", true},
		{"bare extension without dot", "shot.png", "png", true},
		{"extension case insensitive", "SHOT.PNG", ".png", true},
		{"extension mismatch", "shot.png", ".jpg", false},
		{"glob on base name", "/src/report-03.csv", "report-*.csv", true},
		{"glob mismatch", "summary.csv", "report-*.csv", false},
		{"semicolon list first match", "a.jpg", ".jpg;.png", true},
		{"semicolon list second match", "a.png", ".jpg;.png", true},
		{"semicolon list no match", "a.gif", ".jpg;.png", false},
		{"semicolon list with spaces", "a.png", " .jpg ; .png ", true},
		{"star inside list", "a.gif", ".jpg;*", true},
		{"question mark glob", "img1.raw", "img?.raw", true},
		{"no extension vs ext filter", "README", ".txt", false},
		{"empty entries ignored", "a.txt", ";;.txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesFilter(tt.path, tt.filter); got != tt.want {
				t.Errorf("MatchesFilter(%q, %q) = %v, want %v", tt.path, tt.filter, got, tt.want)
			}
		})
	}
}
