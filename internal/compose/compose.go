package compose

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	texttemplate "text/template"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Layout selects the HTML frame a message is rendered into.
type Layout string

const (
	LayoutMorning Layout = "morning"
	LayoutEvening Layout = "evening"
	LayoutTest    Layout = "test"
)

// Context carries the values substituted into variants and layouts.
type Context struct {
	Project     string
	Description string
	Date        time.Time
	FocusAreas  []string

	// Evening layout only.
	VideoAttached bool
	VideoDegraded bool
}

// Message is a rendered reminder ready for dispatch.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// Compose picks a variant from pool, substitutes data into it and renders the
// layout. The plain-text body is derived from the rendered HTML.
func Compose(pool Pool, layout Layout, data Context, r Rand) (Message, error) {
	variant := Pick(pool, r)
	body, err := renderVariant(variant, data)
	if err != nil {
		return Message{}, fmt.Errorf("render %s variant: %w", pool.Name(), err)
	}
	return render(layout, body, data)
}

// Composer binds a catalog and a random source for repeated composition.
type Composer struct {
	catalog Catalog

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewComposer returns a Composer over catalog. A zero seed selects a random one.
func NewComposer(catalog Catalog, seed int64) *Composer {
	if catalog.Pools == nil {
		catalog = DefaultCatalog()
	}
	s1, s2 := uint64(seed), uint64(seed)>>1|1
	if seed == 0 {
		s1, s2 = rand.Uint64(), rand.Uint64()
	}
	return &Composer{catalog: catalog, rnd: rand.New(rand.NewPCG(s1, s2))}
}

// Catalog returns the pools and focus areas the composer draws from.
func (c *Composer) Catalog() Catalog {
	return c.catalog
}

func (c *Composer) compose(poolName string, layout Layout, data Context) (Message, error) {
	pool, ok := c.catalog.Pools[poolName]
	if !ok {
		return Message{}, fmt.Errorf("message pool %q not defined", poolName)
	}
	if len(data.FocusAreas) == 0 {
		data.FocusAreas = c.catalog.FocusAreas
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Compose(pool, layout, data, c.rnd)
}

// Morning renders the morning (and midday) reminder.
func (c *Composer) Morning(data Context) (Message, error) {
	return c.compose(PoolMorning, LayoutMorning, data)
}

// Evening renders the evening summary. data.VideoAttached and
// data.VideoDegraded select the wording about the video.
func (c *Composer) Evening(data Context) (Message, error) {
	return c.compose(PoolReminder, LayoutEvening, data)
}

// Test renders the delivery verification message. It uses no pool.
func (c *Composer) Test(data Context) (Message, error) {
	body := fmt.Sprintf("This is a test email from your %s reminder bot. If you're reading this, delivery works.", titleCase(data.Project))
	return render(LayoutTest, body, data)
}

func renderVariant(variant string, data Context) (string, error) {
	tmpl, err := texttemplate.New("variant").Option("missingkey=error").Parse(variant)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, variantData{Project: data.Project, Description: data.Description, Date: formatDate(data.Date)}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type variantData struct {
	Project     string
	Description string
	Date        string
}

type layoutData struct {
	Heading       string
	Project       string
	Body          string
	Date          string
	FocusAreas    []string
	VideoAttached bool
	VideoDegraded bool
}

func render(layout Layout, body string, data Context) (Message, error) {
	tmpl, ok := layouts[layout]
	if !ok {
		return Message{}, fmt.Errorf("unknown layout %q", layout)
	}
	project := titleCase(data.Project)
	view := layoutData{
		Project:       project,
		Body:          body,
		Date:          formatDate(data.Date),
		FocusAreas:    data.FocusAreas,
		VideoAttached: data.VideoAttached,
		VideoDegraded: data.VideoDegraded,
	}
	var subject string
	switch layout {
	case LayoutMorning:
		view.Heading = "Good Morning!"
		subject = fmt.Sprintf("🌞 Morning Motivation: Time to Make %s Shine! ☀️", project)
	case LayoutEvening:
		view.Heading = fmt.Sprintf("Evening Check-in: %s Update", project)
		subject = fmt.Sprintf("🌅 Evening Update: Your %s Journey Continues! 💚", project)
	case LayoutTest:
		view.Heading = fmt.Sprintf("%s Reminder Bot Test", project)
		subject = fmt.Sprintf("🧪 Test Email: %s Reminder Bot is Working! 💚", project)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return Message{}, fmt.Errorf("render %s layout: %w", layout, err)
	}
	html := buf.String()
	text, err := plainText(html)
	if err != nil {
		return Message{}, err
	}
	return Message{Subject: subject, HTML: html, Text: text}, nil
}

var (
	converterOnce sync.Once
	converter     *md.Converter
)

func plainText(html string) (string, error) {
	converterOnce.Do(func() {
		converter = md.NewConverter("", true, nil)
		converter.Use(plugin.GitHubFlavored())
	})
	text, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert html to text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func titleCase(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return cases.Title(language.Und, cases.NoLower).String(value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("January 02, 2006")
}
