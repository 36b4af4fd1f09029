package services

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// checklistGarbagePrefix is a truncated gzip header that the site exporter
// writes in front of otherwise plain HTML.
var checklistGarbagePrefix = []byte("\x1f\x8b\x08\x00\x00\x00\x00\x00\x00\xff\x00\x00\x80\xff\x7f")

var gzipMagic = []byte{0x1f, 0x8b}

var (
	seasonIDPattern   = regexp.MustCompile(`^\d{4}-\d{2,4}$`)
	seasonTextPattern = regexp.MustCompile(`^(\d{4}-\d{2,4})`)
)

// ChecklistScraper extracts card rows from the exported checklist page. Each
// season is an <h2> followed by a <table> whose first row is a header and whose
// other rows are year, brand, card number and limited cells.
type ChecklistScraper struct {
	logger zerolog.Logger
}

func NewChecklistScraper(logger zerolog.Logger) *ChecklistScraper {
	return &ChecklistScraper{logger: logger}
}

// Parse reads the whole page from r. Skipped rows and season mismatches are
// recorded in log; only unreadable input is an error.
func (s *ChecklistScraper) Parse(r io.Reader, log *IssueLog) ([]RawCardRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read checklist: %w", err)
	}

	data, err = cleanChecklistBytes(data)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse checklist html: %w", err)
	}

	headers := findAll(doc, atom.H2)
	s.logger.Debug().Int("h2_count", len(headers)).Msg("Scanning checklist headers")

	var rows []RawCardRow
	for _, header := range headers {
		season, ok := headerSeason(header)
		if !ok {
			continue
		}

		table := nextSiblingElement(header, atom.Table)
		if table == nil {
			log.Warn("Warning: Season %s: no table found following its header.", season)
			continue
		}

		trs := findAll(table, atom.Tr)
		if len(trs) == 0 {
			log.Warn("Warning: Season %s: no rows found in the table.", season)
			continue
		}

		count := 0
		for i, tr := range trs[1:] {
			cells := findAll(tr, atom.Td)
			if len(cells) != 4 {
				log.Warn("Warning: Season %s, Row %d: Found %d cells, expected 4. Skipping row: %s", season, i+2, len(cells), nodeText(tr))
				continue
			}

			year := nodeText(cells[0])
			if year != season {
				log.Warn("Warning: Mismatch in season year for row. Header: %s, Cell: %s. Using header season: %s", season, year, season)
			}

			rows = append(rows, RawCardRow{
				Season:        season,
				RawBrand:      nodeText(cells[1]),
				CardNumber:    nodeText(cells[2]),
				LimitedString: nodeText(cells[3]),
			})
			count++
		}

		s.logger.Debug().Str("season", season).Int("rows", count).Msg("Processed season")
	}

	s.logger.Info().Int("rows", len(rows)).Msg("Parsed checklist")
	return rows, nil
}

// cleanChecklistBytes drops the garbage prefix, or inflates a real gzip stream.
func cleanChecklistBytes(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, checklistGarbagePrefix) {
		return data[len(checklistGarbagePrefix):], nil
	}
	if !bytes.HasPrefix(data, gzipMagic) {
		return data, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip checklist: %w", err)
	}
	defer zr.Close()

	inflated, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflate gzip checklist: %w", err)
	}
	return inflated, nil
}

// headerSeason prefers the id attribute and falls back to the leading text,
// e.g. "1996-97 [42]".
func headerSeason(h2 *html.Node) (string, bool) {
	for _, attr := range h2.Attr {
		if attr.Key == "id" && seasonIDPattern.MatchString(attr.Val) {
			return attr.Val, true
		}
	}
	if m := seasonTextPattern.FindStringSubmatch(nodeText(h2)); m != nil {
		return m[1], true
	}
	return "", false
}

func nextSiblingElement(n *html.Node, a atom.Atom) *html.Node {
	for sib := n.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type == html.ElementNode && sib.DataAtom == a {
			return sib
		}
	}
	return nil
}

// findAll returns every descendant element of n with the given tag, in document order.
func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == a {
				found = append(found, c)
			}
			walk(c)
		}
	}
	walk(n)
	return found
}

// nodeText is the trimmed text content of n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
