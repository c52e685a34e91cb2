package catalog

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/skillgap/internal/types"
)

// termDocument is the mode=summary response for a term
type termDocument struct {
	Label    string        `xml:"label"`
	Subjects []subjectNode `xml:"subjects>subject"`
}

type subjectNode struct {
	ID   string `xml:"id,attr"`
	Code string `xml:"code,attr"`
	Name string `xml:",chardata"`
}

// subjectDocument is the mode=cascade (or summary) response for one subject
type subjectDocument struct {
	ID        string       `xml:"id,attr"`
	Cascading []courseNode `xml:"cascadingCourses>cascadingCourse"`
	Courses   []courseNode `xml:"courses>course"`
}

// courseNode is a course entry, or the root of a mode=detail response
type courseNode struct {
	ID          string `xml:"id,attr"`
	Href        string `xml:"href,attr"`
	Label       string `xml:"label"`
	Title       string `xml:"title"`
	Text        string `xml:",chardata"`
	Description string `xml:"description"`
	CreditHours string `xml:"creditHours"`
}

var creditPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

func parseSubjects(data []byte) ([]types.Subject, error) {
	var doc termDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse subject list: %w", err)
	}

	subjects := make([]types.Subject, 0, len(doc.Subjects))
	for _, node := range doc.Subjects {
		code := strings.TrimSpace(node.ID)
		if code == "" {
			code = strings.TrimSpace(node.Code)
		}
		if code == "" {
			continue
		}
		name := strings.TrimSpace(node.Name)
		if name == "" {
			name = code
		}
		subjects = append(subjects, types.Subject{Code: code, Name: name})
	}
	return subjects, nil
}

func parseCourses(data []byte, baseURL, year, semester, subject string) ([]types.Course, error) {
	var doc subjectDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse courses for %s: %w", subject, err)
	}

	nodes := doc.Cascading
	if len(nodes) == 0 {
		nodes = doc.Courses
	}

	courses := make([]types.Course, 0, len(nodes))
	for _, node := range nodes {
		number := courseNumber(node, subject)
		url := strings.TrimSpace(node.Href)
		if url == "" {
			url = fmt.Sprintf("%s/catalog/%s/%s/%s/%s.xml", baseURL, year, semester, subject, number)
		}
		courses = append(courses, node.toCourse(subject, number, url))
	}
	return courses, nil
}

func parseCourseDetail(data []byte, subject, number, fallbackURL string) (*types.Course, error) {
	var node courseNode
	if err := xml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse course %s %s: %w", subject, number, err)
	}

	url := strings.TrimSpace(node.Href)
	if url == "" {
		url = fallbackURL
	}
	course := node.toCourse(subject, number, url)
	return &course, nil
}

// courseNumber takes the number from an id like "CS 411", else from the href's last segment
func courseNumber(node courseNode, subject string) string {
	id := strings.TrimSpace(node.ID)
	if strings.HasPrefix(id, subject) {
		if number := strings.TrimSpace(strings.TrimPrefix(id, subject)); number != "" {
			return number
		}
	}
	if id != "" && !strings.Contains(id, " ") && node.Href == "" {
		return id
	}
	if node.Href != "" {
		parts := strings.Split(strings.TrimSpace(node.Href), "/")
		return strings.TrimSuffix(parts[len(parts)-1], ".xml")
	}
	return id
}

func (n courseNode) toCourse(subject, number, url string) types.Course {
	title := firstNonEmpty(n.Label, n.Title, n.Text)
	if title == "" {
		title = subject + " " + number
	}

	course := types.Course{
		Subject: subject,
		Number:  number,
		Title:   title,
		URL:     url,
	}

	if desc := cleanDescription(n.Description); desc != "" {
		course.Description = &desc
	}

	if m := creditPattern.FindStringSubmatch(n.CreditHours); m != nil {
		if credits, err := strconv.ParseFloat(m[1], 64); err == nil {
			course.Credits = &credits
		}
	}

	return course
}

// cleanDescription strips markup the catalog embeds in descriptions and collapses whitespace
func cleanDescription(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	text := raw
	if strings.ContainsAny(raw, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
		if err == nil {
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
