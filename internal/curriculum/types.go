// Package curriculum provides the static, read-only curriculum catalog:
// subject → grade → chapter → topic reference data loaded once at startup
// and shared by every consumer.
package curriculum

// Grade bounds for the supported school range. Coverage inside the range is
// uneven; a missing (subject, grade) pair is an expected lookup outcome.
const (
	GradeMin = 1
	GradeMax = 12
)

// Subject identifies a curriculum subject.
type Subject string

const (
	SubjectMathematics   Subject = "Mathematics"
	SubjectScience       Subject = "Science"
	SubjectEnglish       Subject = "English"
	SubjectSocialStudies Subject = "Social Studies"
)

// Subjects returns all subjects in enumeration order. Search traversal and
// every other multi-subject iteration follows this order.
func Subjects() []Subject {
	return []Subject{
		SubjectMathematics,
		SubjectScience,
		SubjectEnglish,
		SubjectSocialStudies,
	}
}

// ParseSubject matches a free-text subject name case-insensitively.
func ParseSubject(s string) (Subject, bool) {
	for _, subj := range Subjects() {
		if fold(string(subj)) == fold(s) {
			return subj, true
		}
	}
	return "", false
}

// Difficulty is a topic difficulty level.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Difficulties returns all difficulty levels in ascending order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}
}

// Valid reports whether d is one of the enumerated levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Topic is a leaf curriculum unit loaded from YAML.
type Topic struct {
	Code               string     `yaml:"code" json:"code"`
	Name               string     `yaml:"name" json:"name"`
	LearningObjectives []string   `yaml:"learning_objectives" json:"learning_objectives"`
	KeyConcepts        []string   `yaml:"key_concepts" json:"key_concepts"`
	Prerequisites      []string   `yaml:"prerequisites" json:"prerequisites"`
	Difficulty         Difficulty `yaml:"difficulty" json:"difficulty"`
	EstimatedHours     int        `yaml:"estimated_hours" json:"estimated_hours"`
	AssessmentTypes    []string   `yaml:"assessment_types" json:"assessment_types"`
}

// Chapter is an ordered group of topics. Number is unique within a
// subject+grade and defines display and traversal order.
type Chapter struct {
	Number           int      `yaml:"number" json:"number"`
	Name             string   `yaml:"name" json:"name"`
	Topics           []Topic  `yaml:"topics" json:"topics"`
	LearningOutcomes []string `yaml:"learning_outcomes" json:"learning_outcomes"`
	SkillsDeveloped  []string `yaml:"skills_developed" json:"skills_developed"`
}

// SubjectCurriculum is the full chapter/topic tree for one subject and grade.
type SubjectCurriculum struct {
	Subject                Subject           `yaml:"subject" json:"subject"`
	Grade                  int               `yaml:"grade" json:"grade"`
	Chapters               []Chapter         `yaml:"chapters" json:"chapters"`
	YearlyLearningOutcomes []string          `yaml:"yearly_learning_outcomes" json:"yearly_learning_outcomes"`
	AssessmentPattern      map[string]string `yaml:"assessment_pattern" json:"assessment_pattern"`
}

// TopicDetails is a resolved topic together with its owning chapter.
type TopicDetails struct {
	Topic
	Chapter       string `json:"chapter"`
	ChapterNumber int    `json:"chapter_number"`
}

// TopicSummary is a lightweight search result row.
type TopicSummary struct {
	Subject     Subject    `json:"subject"`
	Grade       int        `json:"grade"`
	Chapter     string     `json:"chapter"`
	Topic       string     `json:"topic"`
	Code        string     `json:"code"`
	Difficulty  Difficulty `json:"difficulty"`
	KeyConcepts []string   `json:"key_concepts"`
}

// ValidGrade reports whether g is inside the supported grade range.
func ValidGrade(g int) bool {
	return g >= GradeMin && g <= GradeMax
}
