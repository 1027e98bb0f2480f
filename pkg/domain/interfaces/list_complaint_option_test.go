package interfaces_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

func TestWithStatuses(t *testing.T) {
	cfg := interfaces.BuildListComplaintConfig(
		interfaces.WithStatuses(types.ComplaintStatusPending),
		interfaces.WithStatuses(types.ComplaintStatusCompleted, types.ComplaintStatusResolved),
	)
	gt.Array(t, cfg.Statuses()).Length(2)

	gt.Bool(t, cfg.Match(&model.Complaint{Status: types.ComplaintStatusResolved})).True()
	gt.Bool(t, cfg.Match(&model.Complaint{Status: types.ComplaintStatusPending})).False()

	t.Run("combined with exact status", func(t *testing.T) {
		cfg := interfaces.BuildListComplaintConfig(
			interfaces.WithStatus(types.ComplaintStatusAssigned),
			interfaces.WithStatuses(types.TaskStatuses(true)...),
		)
		gt.Bool(t, cfg.Match(&model.Complaint{Status: types.ComplaintStatusAssigned})).False()
	})

	t.Run("unset matches every status", func(t *testing.T) {
		cfg := interfaces.BuildListComplaintConfig()
		for _, s := range types.AllComplaintStatuses() {
			gt.Bool(t, cfg.Match(&model.Complaint{Status: s})).True()
		}
	})
}
