package todo

import (
	"encoding/json"
	"strings"

	"github.com/bekirdag/jobtracker/internal/coltype"
	trackerrors "github.com/bekirdag/jobtracker/internal/errors"
)

// Outcome and stage labels the stage rules react to.
const (
	OutcomeOffer    = "Offer"
	OutcomeRejected = "Rejected"
	StageOffer      = "Offer"
)

// dateRules are the dates that may not precede the application date.
var dateRules = []struct {
	col, message string
}{
	{"interview_datetime", "Interview Date must be on/after Application Date"},
	{"followup_date", "Follow-Up Date must be on/after Application Date"},
}

// SetStages sets the source of the configured stage list used by the
// outcome rules.
func (b *Book) SetStages(fn func() []string) { b.stages = fn }

func (b *Book) stageList() []string {
	if b.stages == nil {
		return nil
	}
	return b.stages()
}

// checkDates rejects an edit of a date column that would put the interview
// or follow-up before the application date.
func (r *ApplicationRow) checkDates(col, raw string) error {
	switch col {
	case "application_date", "interview_datetime", "followup_date":
	default:
		return nil
	}
	value := func(key string) string {
		if key == col {
			return raw
		}
		return r.app.String(key)
	}
	applied, ok := calendarDay(value("application_date"))
	if !ok {
		return nil
	}
	var problems []string
	for _, rule := range dateRules {
		if day, ok := calendarDay(value(rule.col)); ok && day < applied {
			problems = append(problems, rule.message)
		}
	}
	if len(problems) > 0 {
		return trackerrors.NewValidationError(strings.Join(problems, "; "))
	}
	return nil
}

// calendarDay is the sortable date part of a stored date or datetime.
func calendarDay(s string) (string, bool) {
	t, ok := coltype.ParseTime(s)
	if !ok {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// applyStageRules moves the stage to Offer for offers when Offer is a
// configured stage, and keeps the stage from before the edit for
// rejections. It returns the stage change, if any.
func (r *ApplicationRow) applyStageRules(prevStage string) (Change, bool) {
	current := r.app.String("stage")
	next := current
	switch r.app.String("outcome") {
	case OutcomeOffer:
		for _, s := range r.book.stageList() {
			if s == StageOffer {
				next = StageOffer
				break
			}
		}
	case OutcomeRejected:
		next = prevStage
	}
	if next == current {
		return Change{}, false
	}
	encoded := json.RawMessage("null")
	if next != "" {
		encoded, _ = json.Marshal(next)
	}
	r.app.set("stage", encoded)
	return Change{Table: ApplicationsTable, Application: r.app.ID(), Column: "stage", Old: current, New: next}, true
}
