package compose_test

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nudge/internal/compose"
)

type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

func TestNewPoolRejectsEmpty(t *testing.T) {
	if _, err := compose.NewPool("morning"); err == nil {
		t.Fatal("expected error for pool without variants")
	}
	if _, err := compose.NewPool("morning", "", "   "); err == nil {
		t.Fatal("expected error for pool of blank variants")
	}
}

func TestPickUsesInjectedSource(t *testing.T) {
	pool, err := compose.NewPool("p", "a", "b", "c")
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	if got := compose.Pick(pool, fixedRand(1)); got != "b" {
		t.Fatalf("Pick = %q, want b", got)
	}
	if got := compose.Pick(pool, fixedRand(5)); got != "c" {
		t.Fatalf("Pick = %q, want c", got)
	}
}

func TestPickIsDeterministicForSeed(t *testing.T) {
	pool, _ := compose.NewPool("p", "a", "b", "c", "d", "e")
	first := make([]string, 0, 10)
	r1 := rand.New(rand.NewPCG(7, 9))
	for range 10 {
		first = append(first, compose.Pick(pool, r1))
	}
	r2 := rand.New(rand.NewPCG(7, 9))
	for i := range 10 {
		if got := compose.Pick(pool, r2); got != first[i] {
			t.Fatalf("pick %d = %q, want %q", i, got, first[i])
		}
	}
}

func TestPickCoversEveryVariant(t *testing.T) {
	pool, _ := compose.NewPool("p", "a", "b", "c")
	seen := map[string]int{}
	r := rand.New(rand.NewPCG(1, 2))
	for range 300 {
		seen[compose.Pick(pool, r)]++
	}
	for _, v := range []string{"a", "b", "c"} {
		if seen[v] == 0 {
			t.Fatalf("variant %q never picked: %v", v, seen)
		}
	}
}

func TestComposeSubstitutesProject(t *testing.T) {
	pool, _ := compose.NewPool("morning", "Work on {{.Project}} ({{.Description}}) today, {{.Date}}.")
	date := time.Date(2026, time.March, 4, 8, 0, 0, 0, time.UTC)
	msg, err := compose.Compose(pool, compose.LayoutMorning, compose.Context{
		Project:     "tesphase",
		Description: "solar startup",
		Date:        date,
		FocusAreas:  []string{"Market analysis"},
	}, fixedRand(0))
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !strings.Contains(msg.HTML, "Work on tesphase (solar startup) today, March 04, 2026.") {
		t.Fatalf("variant not rendered into html: %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "<li>Market analysis</li>") {
		t.Fatalf("focus areas missing: %s", msg.HTML)
	}
	if !strings.Contains(msg.Subject, "Tesphase") {
		t.Fatalf("expected title-cased project in subject, got %q", msg.Subject)
	}
	if strings.Contains(msg.Text, "<p") || !strings.Contains(msg.Text, "Market analysis") {
		t.Fatalf("unexpected plain text body: %q", msg.Text)
	}
}

func TestComposeEscapesHTML(t *testing.T) {
	pool, _ := compose.NewPool("p", "Hello {{.Project}}")
	msg, err := compose.Compose(pool, compose.LayoutTest, compose.Context{Project: "<b>x</b>"}, fixedRand(0))
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if strings.Contains(msg.HTML, "<b>x</b>") {
		t.Fatalf("expected project to be escaped: %s", msg.HTML)
	}
}

func TestComposerEveningMentionsVideoState(t *testing.T) {
	c := compose.NewComposer(compose.DefaultCatalog(), 42)
	base := compose.Context{Project: "Tesphase", Date: time.Now()}

	attached := base
	attached.VideoAttached = true
	msg, err := c.Evening(attached)
	if err != nil {
		t.Fatalf("Evening: %v", err)
	}
	if !strings.Contains(msg.HTML, "Check the attachment") {
		t.Fatalf("expected attachment wording: %s", msg.HTML)
	}

	degraded := attached
	degraded.VideoDegraded = true
	msg, err = c.Evening(degraded)
	if err != nil {
		t.Fatalf("Evening: %v", err)
	}
	if !strings.Contains(msg.HTML, "without sound") {
		t.Fatalf("expected degraded wording: %s", msg.HTML)
	}

	msg, err = c.Evening(base)
	if err != nil {
		t.Fatalf("Evening: %v", err)
	}
	if !strings.Contains(msg.HTML, "No video today") {
		t.Fatalf("expected no-video wording: %s", msg.HTML)
	}
}

func TestComposerSeedIsReproducible(t *testing.T) {
	data := compose.Context{Project: "Tesphase", Date: time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)}
	a, _ := compose.NewComposer(compose.DefaultCatalog(), 11).Morning(data)
	b, _ := compose.NewComposer(compose.DefaultCatalog(), 11).Morning(data)
	if a.HTML != b.HTML {
		t.Fatal("expected identical output for identical seeds")
	}
}

func TestLoadCatalogOverridesPools(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.yaml")
	body := "pools:\n  morning:\n    - \"Custom hello for {{.Project}}\"\nfocus_areas:\n  - Ship the landing page\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write pools: %v", err)
	}
	catalog, err := compose.LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if got := catalog.Pools[compose.PoolMorning].Variants(); len(got) != 1 || got[0] != "Custom hello for {{.Project}}" {
		t.Fatalf("unexpected morning pool: %v", got)
	}
	if catalog.Pools[compose.PoolReminder].Len() != 5 {
		t.Fatalf("expected built-in reminder pool to remain")
	}
	if len(catalog.FocusAreas) != 1 || catalog.FocusAreas[0] != "Ship the landing page" {
		t.Fatalf("unexpected focus areas: %v", catalog.FocusAreas)
	}
}

func TestLoadCatalogRejectsEmptyPool(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.yaml")
	if err := os.WriteFile(path, []byte("pools:\n  morning: []\n"), 0o644); err != nil {
		t.Fatalf("write pools: %v", err)
	}
	if _, err := compose.LoadCatalog(path); err == nil {
		t.Fatal("expected error for empty pool")
	}
}

func TestDefaultPoolsHaveFiveVariants(t *testing.T) {
	pools := compose.DefaultPools()
	for _, name := range []string{compose.PoolMorning, compose.PoolReminder} {
		if pools[name].Len() != 5 {
			t.Fatalf("pool %s has %d variants", name, pools[name].Len())
		}
	}
}

func TestVideoScript(t *testing.T) {
	date := time.Date(2026, time.January, 2, 18, 0, 0, 0, time.UTC)
	script := compose.VideoScript("tesphase", date, nil)
	if script.Title != "Tesphase Daily Reminder - January 02, 2026" {
		t.Fatalf("unexpected title %q", script.Title)
	}
	if len(script.Lines) != 10 {
		t.Fatalf("expected 10 on-screen lines, got %d: %v", len(script.Lines), script.Lines)
	}
	if !strings.Contains(script.Narration, "January 02, 2026") {
		t.Fatalf("narration missing date: %q", script.Narration)
	}
}
