package curriculum

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*/*.yaml
var dataFS embed.FS

// Default builds the catalog from the curriculum definitions embedded in the
// binary. It is called once at process start; the result is immutable.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load walks fsys for *.yaml curriculum files and assembles a catalog.
// Tests substitute a smaller fs.FS here. Each file holds one
// SubjectCurriculum document; chapters are sorted by number, and the load
// fails on the invariants callers depend on: duplicate chapter numbers,
// duplicate topic codes within a subject+grade, out-of-range grades and
// unknown difficulty levels.
func Load(fsys fs.FS) (*Catalog, error) {
	cat := &Catalog{
		curricula: make(map[Subject]map[int]*SubjectCurriculum),
		limit:     DefaultSearchLimit,
	}

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		return cat.loadFile(fsys, path)
	})
	if err != nil {
		return nil, fmt.Errorf("loading curriculum: %w", err)
	}

	slog.Info("curriculum catalog loaded",
		"curricula", len(cat.Coverage()),
		"topics", cat.TopicCount(),
	)
	return cat, nil
}

func (c *Catalog) loadFile(fsys fs.FS, path string) error {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return err
	}

	var sc SubjectCurriculum
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if err := validate(&sc); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	sort.Slice(sc.Chapters, func(i, j int) bool {
		return sc.Chapters[i].Number < sc.Chapters[j].Number
	})

	grades, ok := c.curricula[sc.Subject]
	if !ok {
		grades = make(map[int]*SubjectCurriculum)
		c.curricula[sc.Subject] = grades
	}
	if _, exists := grades[sc.Grade]; exists {
		return fmt.Errorf("%s: duplicate curriculum for %s grade %d", path, sc.Subject, sc.Grade)
	}
	grades[sc.Grade] = &sc
	return nil
}

func validate(sc *SubjectCurriculum) error {
	if _, ok := ParseSubject(string(sc.Subject)); !ok {
		return fmt.Errorf("unknown subject %q", sc.Subject)
	}
	if !ValidGrade(sc.Grade) {
		return fmt.Errorf("grade %d outside %d-%d", sc.Grade, GradeMin, GradeMax)
	}

	chapterNums := make(map[int]bool, len(sc.Chapters))
	codes := make(map[string]bool)
	for _, ch := range sc.Chapters {
		if chapterNums[ch.Number] {
			return fmt.Errorf("duplicate chapter number %d", ch.Number)
		}
		chapterNums[ch.Number] = true

		for _, t := range ch.Topics {
			if t.Code == "" || t.Name == "" {
				return fmt.Errorf("chapter %d: topic missing code or name", ch.Number)
			}
			if codes[t.Code] {
				return fmt.Errorf("duplicate topic code %q", t.Code)
			}
			codes[t.Code] = true
			if !t.Difficulty.Valid() {
				return fmt.Errorf("topic %s: unknown difficulty %q", t.Code, t.Difficulty)
			}
			if t.EstimatedHours <= 0 {
				return fmt.Errorf("topic %s: estimated_hours must be positive", t.Code)
			}
		}
	}
	return nil
}
