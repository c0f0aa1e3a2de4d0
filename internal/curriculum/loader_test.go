package curriculum_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/shiksha-ai/shiksha-server/internal/curriculum"
)

const validYAML = `subject: Mathematics
grade: 2
chapters:
  - number: 2
    name: Shapes
    topics:
      - code: T2-1
        name: Circles
        learning_objectives: [Identify circles]
        key_concepts: [circle, round]
        difficulty: beginner
        estimated_hours: 2
  - number: 1
    name: Numbers
    topics:
      - code: T1-1
        name: Counting
        learning_objectives: [Count to 100]
        key_concepts: [counting]
        difficulty: beginner
        estimated_hours: 3
`

func TestLoadSortsChapters(t *testing.T) {
	fsys := fstest.MapFS{
		"math/grade2.yaml": {Data: []byte(validYAML)},
	}

	catalog, err := curriculum.Load(fsys)
	if err != nil {
		t.Fatal(err)
	}

	sc, ok := catalog.SubjectCurriculum(curriculum.SubjectMathematics, 2)
	if !ok {
		t.Fatal("curriculum not registered")
	}
	if sc.Chapters[0].Number != 1 || sc.Chapters[1].Number != 2 {
		t.Errorf("chapters not sorted: %d, %d", sc.Chapters[0].Number, sc.Chapters[1].Number)
	}
}

func TestLoadIgnoresNonYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"math/grade2.yaml": {Data: []byte(validYAML)},
		"math/README.md":   {Data: []byte("# not a curriculum")},
	}

	if _, err := curriculum.Load(fsys); err != nil {
		t.Fatalf("non-yaml file broke the load: %v", err)
	}
}

func TestLoadRejectsBadData(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			"unknown subject",
			func(s string) string { return strings.Replace(s, "Mathematics", "Alchemy", 1) },
			"unknown subject",
		},
		{
			"grade out of range",
			func(s string) string { return strings.Replace(s, "grade: 2", "grade: 13", 1) },
			"outside",
		},
		{
			"duplicate chapter number",
			func(s string) string { return strings.Replace(s, "number: 2", "number: 1", 1) },
			"duplicate chapter",
		},
		{
			"duplicate topic code",
			func(s string) string { return strings.Replace(s, "code: T2-1", "code: T1-1", 1) },
			"duplicate topic code",
		},
		{
			"blank topic name",
			func(s string) string { return strings.Replace(s, "name: Circles", `name: ""`, 1) },
			"missing code or name",
		},
		{
			"bad difficulty",
			func(s string) string { return strings.Replace(s, "difficulty: beginner", "difficulty: brutal", 1) },
			"unknown difficulty",
		},
		{
			"zero hours",
			func(s string) string { return strings.Replace(s, "estimated_hours: 2", "estimated_hours: 0", 1) },
			"estimated_hours",
		},
		{
			"invalid yaml",
			func(s string) string { return s + "\n\t: broken" },
			"",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fsys := fstest.MapFS{
				"math/grade2.yaml": {Data: []byte(tc.mutate(validYAML))},
			}
			_, err := curriculum.Load(fsys)
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if tc.wantErr != "" && !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadRejectsDuplicateSubjectGrade(t *testing.T) {
	fsys := fstest.MapFS{
		"a/grade2.yaml": {Data: []byte(validYAML)},
		"b/grade2.yaml": {Data: []byte(strings.ReplaceAll(validYAML, "T", "X"))},
	}

	_, err := curriculum.Load(fsys)
	if err == nil || !strings.Contains(err.Error(), "duplicate curriculum") {
		t.Fatalf("want duplicate curriculum error, got %v", err)
	}
}

func TestDefaultCatalogLoads(t *testing.T) {
	catalog, err := curriculum.Default()
	if err != nil {
		t.Fatal(err)
	}
	if catalog.TopicCount() == 0 {
		t.Fatal("embedded catalog is empty")
	}
	if len(catalog.Coverage()) < 10 {
		t.Errorf("coverage = %d pairs, embedded data should span all four subjects", len(catalog.Coverage()))
	}
}
