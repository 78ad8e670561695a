package outline

import (
	"strings"
	"testing"
)

func TestFallback_FindsMarkersInDocumentOrder(t *testing.T) {
	// Markers appear out of search order and mid-line.
	text := "xx PHẦN THỨ HAI Nội dung\nyy phần I Mở đầu\nzz Phần   III Kết luận"
	got := Fallback(text)
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d: %+v", len(got), got)
	}
	wantTitles := []string{"phần I Mở đầu", "Phần   III Kết luận", "PHẦN THỨ HAI Nội dung"}
	wantOffsets := []int{
		strings.Index(text, "phần I"),
		strings.Index(text, "Phần   III"),
		strings.Index(text, "PHẦN THỨ HAI"),
	}
	sortedOffsets := append([]int(nil), wantOffsets...)
	for i := 1; i < len(sortedOffsets); i++ {
		for j := i; j > 0 && sortedOffsets[j] < sortedOffsets[j-1]; j-- {
			sortedOffsets[j], sortedOffsets[j-1] = sortedOffsets[j-1], sortedOffsets[j]
		}
	}
	byOffset := make(map[int]string)
	for i, off := range wantOffsets {
		byOffset[off] = wantTitles[i]
	}
	for i, c := range got {
		if c.Offset != sortedOffsets[i] {
			t.Errorf("candidate %d: expected offset %d, got %d", i, sortedOffsets[i], c.Offset)
		}
		if c.RawTitle != byOffset[c.Offset] {
			t.Errorf("candidate %d: expected title %q, got %q", i, byOffset[c.Offset], c.RawTitle)
		}
		if c.Level != 1 {
			t.Errorf("candidate %d: expected level 1, got %d", i, c.Level)
		}
	}
}

func TestFallback_MarkerBoundary(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"prefix of longer numeral", "phần iv tổng kết", 1},
		{"followed by letter", "phần information", 0},
		{"at end of text", "cuối cùng là phần ii", 1},
		{"no markers", "không có gì", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fallback(tt.text); len(got) != tt.want {
				t.Errorf("expected %d candidates, got %d: %+v", tt.want, len(got), got)
			}
		})
	}
}

func TestFallback_FirstOccurrenceOnly(t *testing.T) {
	text := "phần i a\nphần i b"
	got := Fallback(text)
	if len(got) != 1 || got[0].Offset != 0 {
		t.Errorf("expected one candidate at offset 0, got %+v", got)
	}
}

func TestFallback_TitleCappedWithoutNewline(t *testing.T) {
	text := "phần i " + strings.Repeat("x", 300)
	got := Fallback(text)
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if n := len([]rune(got[0].RawTitle)); n != fallbackMaxTitle {
		t.Errorf("expected title of %d runes, got %d", fallbackMaxTitle, n)
	}
}
