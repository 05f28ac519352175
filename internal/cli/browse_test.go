package cli

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/qiongwang-oai/powertree/pkg/design"
)

func browseFixture(t *testing.T) browseModel {
	t.Helper()
	d := chainDesign()
	computer := testCLI().newComputer(false)
	res, cached, err := computer.ComputeWithCacheInfo(d, design.ScenarioTypical)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	return newBrowseModel(d, computer, design.ScenarioTypical, res, cached)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func update(t *testing.T, m browseModel, msg tea.Msg) (browseModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	bm, ok := next.(browseModel)
	if !ok {
		t.Fatalf("Update returned %T, want browseModel", next)
	}
	return bm, cmd
}

func TestBrowseQuitKeys(t *testing.T) {
	for _, key := range []string{"q", "esc", "ctrl+c"} {
		m := browseFixture(t)
		_, cmd := update(t, m, keyMsg(key))
		if cmd == nil {
			t.Fatalf("key %q should quit", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("key %q returned %T, want tea.QuitMsg", key, cmd())
		}
	}
}

func TestBrowseCursorBounds(t *testing.T) {
	m := browseFixture(t)

	m, _ = update(t, m, keyMsg("up"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0 at top", m.cursor)
	}

	m, _ = update(t, m, keyMsg("down"))
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}

	m, _ = update(t, m, keyMsg("down"))
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1 at bottom", m.cursor)
	}

	m, _ = update(t, m, keyMsg("k"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0 after k", m.cursor)
	}
}

// busChain builds src -> bus0 -> ... -> bus(n-1) -> load.
func busChain(n int) *design.Design {
	d := design.New("chain")
	d.AddNode(design.Node{ID: "src", Params: &design.Source{Vout: 12}})
	prev := "src"
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("bus%d", i)
		d.AddNode(design.Node{ID: id, Params: &design.Bus{VBus: 12}})
		d.AddEdge(design.Edge{ID: "e" + id, From: prev, To: id})
		prev = id
	}
	d.AddNode(design.Node{ID: "load", Params: &design.Load{Vreq: 12, ITyp: 1, IMax: 2}})
	d.AddEdge(design.Edge{ID: "elast", From: prev, To: "load"})
	return d
}

func TestBrowsePaging(t *testing.T) {
	d := busChain(6)
	computer := testCLI().newComputer(false)
	res, cached, err := computer.ComputeWithCacheInfo(d, design.ScenarioTypical)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	m := newBrowseModel(d, computer, design.ScenarioTypical, res, cached)
	m.height = 3

	for i := 0; i < 5; i++ {
		m, _ = update(t, m, keyMsg("down"))
	}
	if m.cursor != 5 {
		t.Fatalf("cursor = %d, want 5", m.cursor)
	}
	if m.offset != 3 {
		t.Errorf("offset = %d, want 3", m.offset)
	}

	for i := 0; i < 5; i++ {
		m, _ = update(t, m, keyMsg("up"))
	}
	if m.cursor != 0 || m.offset != 0 {
		t.Errorf("cursor/offset = %d/%d, want 0/0", m.cursor, m.offset)
	}
}

func TestBrowseScenarioCycle(t *testing.T) {
	m := browseFixture(t)

	m, _ = update(t, m, keyMsg("right"))
	if m.scenario != design.ScenarioMax {
		t.Fatalf("scenario = %q, want max", m.scenario)
	}
	if got := m.result.Totals.LoadPower; got != 24 {
		t.Errorf("LoadPower = %v, want 24", got)
	}

	m, _ = update(t, m, keyMsg("right"))
	if m.scenario != design.ScenarioIdle {
		t.Fatalf("scenario = %q, want idle", m.scenario)
	}

	m, _ = update(t, m, keyMsg("right"))
	if m.scenario != design.ScenarioTypical {
		t.Fatalf("scenario = %q, want typical after a full cycle", m.scenario)
	}
	if !m.cached {
		t.Error("returning to a computed scenario should hit the memo")
	}
	if got := m.result.Totals.LoadPower; got != 12 {
		t.Errorf("LoadPower = %v, want 12", got)
	}

	m, _ = update(t, m, keyMsg("left"))
	if m.scenario != design.ScenarioIdle {
		t.Errorf("scenario = %q, want idle after left", m.scenario)
	}
}

func TestBrowseWindowResize(t *testing.T) {
	m := browseFixture(t)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})
	if m.height != 30 {
		t.Errorf("height = %d, want 30", m.height)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 8})
	if m.height != 5 {
		t.Errorf("height = %d, want 5 (floor)", m.height)
	}
}

func TestBrowseViewShowsNodes(t *testing.T) {
	m := browseFixture(t)

	view := m.View()
	if !strings.Contains(view, "src") || !strings.Contains(view, "load") {
		t.Error("view should list the design's nodes")
	}
	if !strings.Contains(view, "typical") {
		t.Error("view should name the active scenario")
	}
}
