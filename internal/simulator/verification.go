package simulator

import "fmt"

// sessionCheck accumulates ledger violations observed by one client.
type sessionCheck struct {
	client     int
	known      map[string]struct{}
	sessionID  string
	expected   map[string]int
	uploads    int
	violations []string
}

func newSessionCheck(client int, known map[string]struct{}) *sessionCheck {
	return &sessionCheck{client: client, known: known, expected: make(map[string]int)}
}

func (c *sessionCheck) violate(format string, args ...any) {
	c.violations = append(c.violations, fmt.Sprintf("client %d: ", c.client)+fmt.Sprintf(format, args...))
}

// upload checks one upload response against the locally tracked ledger.
// Each accepted upload must add exactly one to its own category and leave
// every other count alone.
func (c *sessionCheck) upload(resp *UploadResponse) {
	c.uploads++

	if c.sessionID == "" {
		c.sessionID = resp.SessionID
	} else if resp.SessionID != c.sessionID {
		c.violate("session changed from %s to %s", c.sessionID, resp.SessionID)
	}

	if _, ok := c.known[resp.Category]; !ok {
		c.violate("upload %d classified as %q, which is not in the catalog", c.uploads, resp.Category)
	}
	if len(resp.Items) == 0 {
		c.violate("upload %d returned no items for %q", c.uploads, resp.Category)
	}
	c.expected[resp.Category]++

	c.compare(fmt.Sprintf("upload %d", c.uploads), resp.Trends)
}

// final checks the ledger returned by GET /api/trends after all uploads.
func (c *sessionCheck) final(trends []TrendEntry, uploads int) {
	if total := sum(trends); total != uploads {
		c.violate("final ledger totals %d, want %d", total, uploads)
	}
	c.compare("final ledger", trends)
}

// cleared checks the ledger after a reset.
func (c *sessionCheck) cleared(trends []TrendEntry) {
	if len(trends) != 0 {
		c.violate("ledger has %d entries after reset", len(trends))
	}
}

func (c *sessionCheck) compare(where string, trends []TrendEntry) {
	got := make(map[string]int, len(trends))
	for _, e := range trends {
		if _, dup := got[e.Category]; dup {
			c.violate("%s: category %q listed twice", where, e.Category)
		}
		if e.Count <= 0 {
			c.violate("%s: category %q has non-positive count %d", where, e.Category, e.Count)
		}
		got[e.Category] = e.Count
	}
	if len(got) != len(c.expected) {
		c.violate("%s: %d categories, want %d", where, len(got), len(c.expected))
	}
	for cat, want := range c.expected {
		if got[cat] != want {
			c.violate("%s: %q count %d, want %d", where, cat, got[cat], want)
		}
	}
}

func sum(trends []TrendEntry) int {
	total := 0
	for _, e := range trends {
		total += e.Count
	}
	return total
}
