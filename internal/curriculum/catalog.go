package curriculum

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultSearchLimit caps SearchTopics results.
const DefaultSearchLimit = 10

// Catalog maps (subject, grade) to curriculum trees. It is built once by
// Load and never mutated afterwards, so it is safe to share across any
// number of concurrent readers without locking.
type Catalog struct {
	curricula map[Subject]map[int]*SubjectCurriculum
	limit     int
}

// SearchFilter narrows SearchTopics to one subject and/or grade.
// Zero values mean "all".
type SearchFilter struct {
	Subject Subject
	Grade   int
}

// fold normalizes a string for case-insensitive matching. Unicode case
// folding rather than ASCII lowering, so curricula in other scripts keep
// working. A Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// containsFold reports whether needle occurs in haystack, case-insensitively.
func containsFold(haystack, needle string) bool {
	return strings.Contains(fold(haystack), fold(needle))
}

// SubjectCurriculum returns the full chapter/topic tree for a subject and
// grade. The second return is false when the pair has no registered
// curriculum; that is an expected outcome, not a fault.
func (c *Catalog) SubjectCurriculum(subject Subject, grade int) (*SubjectCurriculum, bool) {
	grades, ok := c.curricula[subject]
	if !ok {
		return nil, false
	}
	sc, ok := grades[grade]
	return sc, ok
}

// TopicDetails resolves a free-text topic name within one subject+grade
// tree. Matching is case-insensitive exact-or-substring; the first match in
// chapter order, then topic order within the chapter, wins. Chapter and
// topic sequences are ordered, so the result is deterministic.
func (c *Catalog) TopicDetails(subject Subject, grade int, topicName string) (*TopicDetails, bool) {
	sc, ok := c.SubjectCurriculum(subject, grade)
	if !ok {
		return nil, false
	}

	needle := fold(topicName)
	for _, ch := range sc.Chapters {
		for _, t := range ch.Topics {
			name := fold(t.Name)
			if name == needle || strings.Contains(name, needle) {
				return &TopicDetails{
					Topic:         t,
					Chapter:       ch.Name,
					ChapterNumber: ch.Number,
				}, true
			}
		}
	}
	return nil, false
}

// ChapterTopics returns the topic names of one chapter, in declared order,
// or nil when the chapter is unknown.
func (c *Catalog) ChapterTopics(subject Subject, grade, chapterNumber int) []string {
	sc, ok := c.SubjectCurriculum(subject, grade)
	if !ok {
		return nil
	}
	for _, ch := range sc.Chapters {
		if ch.Number == chapterNumber {
			names := make([]string, 0, len(ch.Topics))
			for _, t := range ch.Topics {
				names = append(names, t.Name)
			}
			return names
		}
	}
	return nil
}

// SearchTopics performs a case-insensitive substring match of query against
// topic names and key concepts. Traversal order is fixed: subjects in
// enumeration order, grades ascending, then chapter and topic order, so
// results for identical inputs are always identical. A query that matches
// nothing returns an empty slice, never an error.
func (c *Catalog) SearchTopics(query string, filter SearchFilter) []TopicSummary {
	results := []TopicSummary{}
	if strings.TrimSpace(query) == "" {
		return results
	}

	subjects := Subjects()
	if filter.Subject != "" {
		subjects = []Subject{filter.Subject}
	}

	for _, subj := range subjects {
		grades, ok := c.curricula[subj]
		if !ok {
			continue
		}
		for grade := GradeMin; grade <= GradeMax; grade++ {
			if filter.Grade != 0 && grade != filter.Grade {
				continue
			}
			sc, ok := grades[grade]
			if !ok {
				continue
			}
			for _, ch := range sc.Chapters {
				for _, t := range ch.Topics {
					if !topicMatches(t, query) {
						continue
					}
					results = append(results, TopicSummary{
						Subject:     subj,
						Grade:       grade,
						Chapter:     ch.Name,
						Topic:       t.Name,
						Code:        t.Code,
						Difficulty:  t.Difficulty,
						KeyConcepts: t.KeyConcepts,
					})
					if len(results) >= c.limit {
						return results
					}
				}
			}
		}
	}
	return results
}

func topicMatches(t Topic, query string) bool {
	if containsFold(t.Name, query) {
		return true
	}
	return containsFold(strings.Join(t.KeyConcepts, " "), query)
}

// CoveragePair identifies one registered (subject, grade) curriculum.
type CoveragePair struct {
	Subject Subject `json:"subject"`
	Grade   int     `json:"grade"`
}

// Coverage returns every registered (subject, grade) pair in traversal
// order, for status/readiness reporting and the export tool.
func (c *Catalog) Coverage() []CoveragePair {
	var pairs []CoveragePair
	for _, subj := range Subjects() {
		grades, ok := c.curricula[subj]
		if !ok {
			continue
		}
		for grade := GradeMin; grade <= GradeMax; grade++ {
			if _, ok := grades[grade]; ok {
				pairs = append(pairs, CoveragePair{Subject: subj, Grade: grade})
			}
		}
	}
	return pairs
}

// TopicCount returns the total number of topics in the catalog.
func (c *Catalog) TopicCount() int {
	n := 0
	for _, pair := range c.Coverage() {
		sc, _ := c.SubjectCurriculum(pair.Subject, pair.Grade)
		for _, ch := range sc.Chapters {
			n += len(ch.Topics)
		}
	}
	return n
}
