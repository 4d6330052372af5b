package analytics

import "github.com/mfurudate/apodash/internal/store"

// Classify derives a revision's measure category from which of its
// nullable fields are populated. The "both" check runs first so a
// revision carrying all three fields is never reported as plain talk
// improvement.
func Classify(rev store.Revision) string {
	talk := hasValue(rev.PreFixTalkListName) && hasValue(rev.PostFixTalkListName)
	cleanup := hasValue(rev.DeletedListName)

	switch {
	case talk && cleanup:
		return MeasureBoth
	case talk:
		return MeasureTalkImprovement
	case cleanup:
		return MeasureDataCleanup
	default:
		return MeasureOther
	}
}
