package skill

// Level is an experience band derived from how many activities carry a category.
type Level string

const (
	LevelNew      Level = "new"
	LevelBeginner Level = "beginner"
	LevelAdvanced Level = "advanced"
	LevelExpert   Level = "expert"
)

var levels = []Level{LevelNew, LevelBeginner, LevelAdvanced, LevelExpert}

var levelLabels = map[Level]string{
	LevelNew:      "Yeni",
	LevelBeginner: "Başlangıç",
	LevelAdvanced: "İleri",
	LevelExpert:   "Uzman",
}

// LevelFor maps an occurrence count to its band. Every integer maps to
// exactly one level and the mapping is monotone in count.
func LevelFor(count int) Level {
	switch {
	case count >= 5:
		return LevelExpert
	case count >= 3:
		return LevelAdvanced
	case count >= 1:
		return LevelBeginner
	default:
		return LevelNew
	}
}

// Levels returns every level from lowest to highest.
func Levels() []Level {
	return append([]Level(nil), levels...)
}

// Rank is the position of l from lowest (0) to highest, or -1.
func (l Level) Rank() int {
	for i, v := range levels {
		if v == l {
			return i
		}
	}
	return -1
}

// Label returns the Turkish display name.
func (l Level) Label() string {
	if s, ok := levelLabels[l]; ok {
		return s
	}
	return string(l)
}

func (l Level) String() string { return string(l) }

// ParseLevel resolves a level key ("expert") or label ("Uzman").
func ParseLevel(s string) (Level, bool) {
	f := fold(s)
	for _, l := range levels {
		if f == string(l) || f == fold(levelLabels[l]) {
			return l, true
		}
	}
	return "", false
}
