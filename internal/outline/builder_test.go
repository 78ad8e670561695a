package outline

import (
	"strings"
	"testing"
)

const sampleReport = `Mục lục
PHẦN I. MỞ ĐẦU
1. Lý do chọn đề tài
Nội dung lý do.
2. Mục đích nghiên cứu
Nội dung mục đích.
PHẦN II. NỘI DUNG
1. Cơ sở lý luận
1.1. Khái niệm chung
Đoạn văn thứ nhất.
Giải pháp 1: Tổ chức trò chơi học tập
a) Chuẩn bị đồ dùng học tập
Đoạn văn thứ hai.
PHẦN III. KẾT LUẬN
Kết luận chung.
`

func assertPartition(t *testing.T, text string, nodes []SectionNode) {
	t.Helper()
	var b strings.Builder
	prev := 0
	for i, n := range nodes {
		if n.Start != prev {
			t.Fatalf("node %d: expected start %d, got %d", i, prev, n.Start)
		}
		b.WriteString(text[n.Start:n.End])
		prev = n.End
	}
	if b.String() != text {
		t.Fatalf("expected spans to reconstruct the text\nwant %q\ngot  %q", text, b.String())
	}
}

func assertAncestry(t *testing.T, nodes []SectionNode) {
	t.Helper()
	levels := make(map[string]int)
	for i, n := range nodes {
		if n.ParentID != "" {
			lvl, ok := levels[n.ParentID]
			if !ok {
				t.Fatalf("node %d (%s): parent %q does not precede it", i, n.ID, n.ParentID)
			}
			if lvl >= n.Level {
				t.Fatalf("node %d (%s): parent level %d not below %d", i, n.ID, lvl, n.Level)
			}
		}
		levels[n.ID] = n.Level
	}
}

func TestBuildTree_ScenarioA(t *testing.T) {
	text := "PHẦN I. Mở đầu\nAAA\nPHẦN II. Nội dung\nBBB"
	nodes := ExtractLocalStructure(text)

	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d: %+v", len(nodes), nodes)
	}
	want := []struct{ title, content string }{
		{"PHẦN I. Mở đầu", "AAA"},
		{"PHẦN II. Nội dung", "BBB"},
	}
	for i, w := range want {
		if nodes[i].Level != 1 {
			t.Errorf("node %d: expected level 1, got %d", i, nodes[i].Level)
		}
		if nodes[i].Title != w.title {
			t.Errorf("node %d: expected title %q, got %q", i, w.title, nodes[i].Title)
		}
		if nodes[i].Content != w.content {
			t.Errorf("node %d: expected content %q, got %q", i, w.content, nodes[i].Content)
		}
		if !nodes[i].IsRoot() {
			t.Errorf("node %d: expected root, got parent %q", i, nodes[i].ParentID)
		}
	}
	assertPartition(t, text, nodes)
}

func TestBuildTree_SampleReport(t *testing.T) {
	nodes := ExtractLocalStructure(sampleReport)

	want := []struct {
		id, title, parent string
		level             int
	}{
		{"named-1", "Mục lục", "", 1},
		{"part-2", "PHẦN I. MỞ ĐẦU", "", 1},
		{"sec-3", "1. Lý do chọn đề tài", "part-2", 2},
		{"sec-4", "2. Mục đích nghiên cứu", "part-2", 2},
		{"part-5", "PHẦN II. NỘI DUNG", "", 1},
		{"sec-6", "1. Cơ sở lý luận", "part-5", 2},
		{"sub-7", "1.1. Khái niệm chung", "sec-6", 3},
		{"solution-8", "Giải pháp 1: Tổ chức trò chơi học tập", "sec-6", 3},
		{"item-9", "a) Chuẩn bị đồ dùng học tập", "sec-6", 3},
		{"part-10", "PHẦN III. KẾT LUẬN", "", 1},
	}
	if len(nodes) != len(want) {
		t.Fatalf("expected %d nodes, got %d: %+v", len(want), len(nodes), nodes)
	}
	for i, w := range want {
		n := nodes[i]
		if n.ID != w.id || n.Title != w.title || n.ParentID != w.parent || n.Level != w.level {
			t.Errorf("node %d: expected {%s %q parent=%q L%d}, got {%s %q parent=%q L%d}",
				i, w.id, w.title, w.parent, w.level, n.ID, n.Title, n.ParentID, n.Level)
		}
	}
	if nodes[2].Content != "Nội dung lý do." {
		t.Errorf("expected body of sec-3, got %q", nodes[2].Content)
	}
	if nodes[0].Content != "" {
		t.Errorf("expected empty body for heading with no text, got %q", nodes[0].Content)
	}
	assertPartition(t, sampleReport, nodes)
	assertAncestry(t, nodes)
}

func TestBuildTree_LevelJump(t *testing.T) {
	text := "PHẦN I. MỞ ĐẦU\n1.1. Khái niệm\nx"
	nodes := BuildTree(text, []Candidate{
		{Offset: 0, Level: 1, Tag: "part"},
		{Offset: strings.Index(text, "1.1."), Level: 3, Tag: "sub"},
	})
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	if nodes[1].ParentID != nodes[0].ID {
		t.Errorf("expected level-3 node parented to level-1 node, got %q", nodes[1].ParentID)
	}
	if nodes[1].Level != 3 {
		t.Errorf("expected level kept at 3, got %d", nodes[1].Level)
	}
}

func TestBuildTree_PopsEqualLevels(t *testing.T) {
	text := "a\nb\nc\nd"
	nodes := BuildTree(text, []Candidate{
		{Offset: 0, Level: 1, Tag: "p"},
		{Offset: 2, Level: 2, Tag: "s"},
		{Offset: 4, Level: 2, Tag: "s"},
		{Offset: 6, Level: 1, Tag: "p"},
	})
	wantParents := []string{"", "p-1", "p-1", ""}
	for i, w := range wantParents {
		if nodes[i].ParentID != w {
			t.Errorf("node %d: expected parent %q, got %q", i, w, nodes[i].ParentID)
		}
	}
	assertPartition(t, text, nodes)
}

func TestBuildTree_Preamble(t *testing.T) {
	text := "Trường tiểu học Hoà Bình\nNăm học 2024\nPHẦN I. MỞ ĐẦU\nAAA"
	nodes := ExtractLocalStructure(text)
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	if nodes[0].ID != "preamble-1" {
		t.Errorf("expected preamble node first, got %q", nodes[0].ID)
	}
	if nodes[0].Title != "Trường tiểu học Hoà Bình" || nodes[0].Content != "Năm học 2024" {
		t.Errorf("unexpected preamble title/content %q / %q", nodes[0].Title, nodes[0].Content)
	}
	assertPartition(t, text, nodes)
}

func TestBuildTree_BlankPreambleFolded(t *testing.T) {
	text := "\n\n  PHẦN I. MỞ ĐẦU\nAAA"
	nodes := ExtractLocalStructure(text)
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
	if nodes[0].Title != "PHẦN I. MỞ ĐẦU" {
		t.Errorf("expected title %q, got %q", "PHẦN I. MỞ ĐẦU", nodes[0].Title)
	}
	assertPartition(t, text, nodes)
}

func TestBuildTree_TitleFallsBackToRawTitle(t *testing.T) {
	nodes := BuildTree("   ", []Candidate{{Offset: 0, Level: 1, Tag: "x", RawTitle: "Phần I"}})
	if nodes[0].Title != "Phần I" {
		t.Errorf("expected raw title, got %q", nodes[0].Title)
	}
}

func TestBuildTree_ScenarioD(t *testing.T) {
	if got := Detect(""); len(got) != 0 {
		t.Errorf("expected no detected candidates, got %d", len(got))
	}
	if got := Fallback(""); len(got) != 0 {
		t.Errorf("expected no fallback candidates, got %d", len(got))
	}
	if got := BuildTree("", nil); len(got) != 0 {
		t.Errorf("expected empty tree, got %d nodes", len(got))
	}
	if got := ExtractLocalStructure(""); len(got) != 0 {
		t.Errorf("expected empty local structure, got %d nodes", len(got))
	}
}
