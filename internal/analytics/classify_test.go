package analytics

import (
	"testing"

	"github.com/mfurudate/apodash/internal/store"
)

func ptr(s string) *string { return &s }

func TestClassify(t *testing.T) {
	tests := []struct {
		name                string
		pre, post, deleted  *string
		want                string
	}{
		{"all three set", ptr("Old"), ptr("New"), ptr("ListX"), MeasureBoth},
		{"talk fields only", ptr("Old"), ptr("New"), nil, MeasureTalkImprovement},
		{"deleted only", nil, nil, ptr("ListX"), MeasureDataCleanup},
		{"pre and deleted", ptr("Old"), nil, ptr("ListX"), MeasureDataCleanup},
		{"post and deleted", nil, ptr("New"), ptr("ListX"), MeasureDataCleanup},
		{"pre only", ptr("Old"), nil, nil, MeasureOther},
		{"post only", nil, ptr("New"), nil, MeasureOther},
		{"none", nil, nil, nil, MeasureOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rev := store.Revision{
				PreFixTalkListName:  tt.pre,
				PostFixTalkListName: tt.post,
				DeletedListName:     tt.deleted,
			}
			if got := Classify(rev); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClassifyEmptyStringsAsUnset(t *testing.T) {
	rev := store.Revision{
		PreFixTalkListName:  ptr(""),
		PostFixTalkListName: ptr(""),
		DeletedListName:     ptr(""),
	}
	if got := Classify(rev); got != MeasureOther {
		t.Errorf("expected %q for empty-string fields, got %q", MeasureOther, got)
	}
}
