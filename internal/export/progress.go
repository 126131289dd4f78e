package export

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

func (l ProgressLevel) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "info"
	}
}

// ProgressEvent represents an export progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Summary counts the outcome of a Run.
type Summary struct {
	Exported int
	Skipped  int
	Failed   int
}

// Total is the number of jobs the Run handled.
func (s Summary) Total() int {
	return s.Exported + s.Skipped + s.Failed
}
